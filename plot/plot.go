// Package plot renders raw and reconstructed time series as echarts HTML pages.
package plot

import (
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"time"

	"github.com/Open-EO/FuseTS/cube"
	"github.com/Open-EO/FuseTS/timedataset"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const (
	dateLayout = "2006-01-02"

	// missing is the echarts marker for an absent value
	missing = "-"
)

var (
	ErrLenMismatch   = errors.New("series times and values have different lengths")
	ErrPixelOutRange = errors.New("pixel index out of range")
)

// Series is a named time series. NaN values are drawn as gaps.
type Series struct {
	Name string
	T    []time.Time
	Y    []float64
}

// Line generates an echart multi-line chart over the union of the series dates. Series without a
// value at a date leave a gap there.
func Line(title string, series ...Series) (*charts.Line, error) {
	var days []int
	for _, s := range series {
		if len(s.T) != len(s.Y) {
			return nil, fmt.Errorf("series %q has %d times and %d values, %w", s.Name, len(s.T), len(s.Y), ErrLenMismatch)
		}
		days = append(days, timedataset.TimeSlice(s.T).DayOrdinals()...)
	}
	slices.Sort(days)
	days = slices.Compact(days)

	xAxis := make([]string, len(days))
	for i, d := range days {
		xAxis[i] = timedataset.FromOrdinal(d).Format(dateLayout)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
	)
	line.SetXAxis(xAxis)

	for _, s := range series {
		values := make(map[int]float64, len(s.T))
		for i, t := range s.T {
			values[timedataset.DayOrdinal(t)] = s.Y[i]
		}
		lineData := make([]opts.LineData, 0, len(days))
		for _, d := range days {
			v, exists := values[d]
			if !exists || math.IsNaN(v) {
				lineData = append(lineData, opts.LineData{Value: missing})
				continue
			}
			lineData = append(lineData, opts.LineData{Value: v})
		}
		line.AddSeries(s.Name, lineData, charts.WithLineChartOpts(opts.LineChart{
			ConnectNulls: opts.Bool(true),
			ShowSymbol:   opts.Bool(len(s.T) < len(days)),
		}))
	}
	return line, nil
}

// Uncertainty returns the mean plus and minus one standard deviation as two series.
func Uncertainty(mean Series, std []float64) (Series, Series, error) {
	if len(std) != len(mean.Y) {
		return Series{}, Series{}, fmt.Errorf("%d values and %d deviations, %w", len(mean.Y), len(std), ErrLenMismatch)
	}
	upper := Series{Name: mean.Name + " +std", T: mean.T, Y: make([]float64, len(std))}
	lower := Series{Name: mean.Name + " -std", T: mean.T, Y: make([]float64, len(std))}
	for i, s := range std {
		upper.Y[i] = mean.Y[i] + s
		lower.Y[i] = mean.Y[i] - s
	}
	return upper, lower, nil
}

// PixelSeries extracts the time series of every variable of ds at a pixel. The pixel maps non
// temporal dimensions to indices, missing dimensions default to 0.
func PixelSeries(ds *cube.Dataset, timeDim string, pixel map[string]int) ([]Series, error) {
	dim, err := ds.TimeDimension(timeDim)
	if err != nil {
		return nil, err
	}
	var series []Series
	for _, name := range ds.Names() {
		c, err := ds.Var(name)
		if err != nil {
			return nil, err
		}
		axis, err := c.Axis(dim)
		if err != nil {
			return nil, err
		}

		idx := make([]int, len(c.Dims))
		for i, d := range c.Dims {
			if pos, exists := pixel[d]; exists && i != axis {
				if pos < 0 || pos >= c.Shape[i] {
					return nil, fmt.Errorf("%s=%d for size %d, %w", d, pos, c.Shape[i], ErrPixelOutRange)
				}
				idx[i] = pos
			}
		}

		y := make([]float64, c.Shape[axis])
		for j := range y {
			idx[axis] = j
			y[j] = c.At(idx...)
		}
		series = append(series, Series{Name: name, T: c.Coords[dim].Times, Y: y})
	}
	return series, nil
}

// Render writes the charts as a single HTML page.
func Render(w io.Writer, title string, lines ...*charts.Line) error {
	page := components.NewPage()
	page.SetPageTitle(title)
	for _, line := range lines {
		page.AddCharts(line)
	}
	return page.Render(w)
}
