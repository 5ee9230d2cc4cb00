// Package peakvalley marks drop and recovery events, such as harvests or mowing, in vegetation
// index time series.
package peakvalley

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/Open-EO/FuseTS/timedataset"
)

var ErrLenMismatch = errors.New("time and values have different lengths")

// Pair is a detected event as positions in the NaN dropped series: the onset of the drop and the
// valley where it recovers from.
type Pair struct {
	Peak   int
	Valley int
}

// Mask values of the detection output
const (
	MarkStart   = 1.0
	MarkBetween = 0.0
	MarkEnd     = -1.0
)

type signal struct {
	f    []float64
	days []int
	t    []time.Time
}

// newSignal keeps the last observation of each day so consecutive samples are at least a day
// apart.
func newSignal(td *timedataset.TimeDataset) *signal {
	days := timedataset.TimeSlice(td.T).DayOrdinals()
	s := &signal{}
	for i := range days {
		if i+1 < len(days) && days[i+1] == days[i] {
			continue
		}
		s.f = append(s.f, td.Y[i])
		s.days = append(s.days, days[i])
		s.t = append(s.t, td.T[i])
	}
	return s
}

func (s *signal) slope(a, b int) float64 {
	return (s.f[a] - s.f[b]) / float64(s.days[a]-s.days[b])
}

// Detect finds peak-valley events. The mask is MarkStart at the onset date, MarkEnd at the valley
// date, MarkBetween strictly between them and NaN elsewhere.
func Detect(t []time.Time, y []float64, opt *Options) ([]float64, []Pair, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, nil, err
	}
	if len(t) != len(y) {
		return nil, nil, fmt.Errorf("%d dates and %d values, %w", len(t), len(y), ErrLenMismatch)
	}

	mask := make([]float64, len(y))
	for i := range mask {
		mask[i] = math.NaN()
	}

	s := newSignal((&timedataset.TimeDataset{T: t, Y: y}).DropNan())

	pairs := s.candidates()
	pairs = mergeFluctuations(s.f, pairs, opt.recoveryThreshold())
	pairs = filterDrops(s.f, pairs, opt.DropThreshold)
	events := s.events(pairs, opt)

	for _, ev := range events {
		start, end := s.t[ev.Peak], s.t[ev.Valley]
		for i, ti := range t {
			switch {
			case ti.Equal(start):
				mask[i] = MarkStart
			case ti.Equal(end):
				mask[i] = MarkEnd
			case ti.After(start) && ti.Before(end):
				mask[i] = MarkBetween
			}
		}
	}
	return mask, events, nil
}

// candidates pairs peaks with the valleys that follow them. A series starting with a valley gets
// a leading peak at 0 and one ending with a peak gets a trailing valley at the last sample.
func (s *signal) candidates() []Pair {
	peaks := findPeaks(s.f)
	valleys := findValleys(s.f)
	if len(peaks) == 0 || len(valleys) == 0 {
		return nil
	}
	if valleys[0] < peaks[0] {
		peaks = append([]int{0}, peaks...)
	}
	if valleys[len(valleys)-1] < peaks[len(peaks)-1] {
		valleys = append(valleys, len(s.f)-1)
	}

	n := min(len(peaks), len(valleys))
	pairs := make([]Pair, n)
	for i := 0; i < n; i++ {
		pairs[i] = Pair{Peak: peaks[i], Valley: valleys[i]}
	}
	return pairs
}

// mergeFluctuations extends a drop over the next pair when the intermediate rise is smaller than
// recThr and the next peak and valley are both lower.
func mergeFluctuations(f []float64, pairs []Pair, recThr float64) []Pair {
	if len(pairs) == 0 {
		return nil
	}
	merged := []Pair{pairs[0]}
	for _, next := range pairs[1:] {
		last := &merged[len(merged)-1]
		y11, y12 := f[last.Peak], f[last.Valley]
		y21, y22 := f[next.Peak], f[next.Valley]
		if y21-y12 < recThr && y22 < y12 && y21 < y11 {
			last.Valley = next.Valley
			continue
		}
		merged = append(merged, next)
	}
	return merged
}

func filterDrops(f []float64, pairs []Pair, dropThr float64) []Pair {
	var kept []Pair
	for _, p := range pairs {
		if f[p.Peak]-f[p.Valley] > dropThr {
			kept = append(kept, p)
		}
	}
	return kept
}

// events locates the onset of each drop by walking back from the valley and keeps the pairs that
// recover before the next peak.
func (s *signal) events(pairs []Pair, opt *Options) []Pair {
	var events []Pair
	for pid, p := range pairs {
		start := s.onset(p, opt)

		end := len(s.f)
		if pid+1 < len(pairs) {
			end = pairs[pid+1].Peak + 1
		}
		valley, recovered := s.recovery(p.Valley, end, opt.recoveryThreshold())
		if !recovered {
			continue
		}
		events = append(events, Pair{Peak: start, Valley: valley})
	}
	return events
}

// onset returns the first sample before the valley that lies more than the drop threshold above it,
// moved further back while the one or two day slope stays below the slope threshold.
func (s *signal) onset(p Pair, opt *Options) int {
	start := p.Peak
	assigned := false
	skip := false
	for idx := p.Valley - 1; idx >= p.Peak; idx-- {
		if skip {
			skip = false
			continue
		}
		if !assigned {
			if s.f[idx]-s.f[p.Valley] > opt.DropThreshold {
				start = idx
				assigned = true
			}
			continue
		}
		if s.slope(idx+1, idx) < opt.SlopeThreshold {
			start = idx
			continue
		}
		if idx-1 >= p.Peak && s.slope(idx+1, idx-1) < opt.SlopeThreshold {
			start = idx - 1
			skip = true
			continue
		}
		break
	}
	return start
}

// recovery scans from the valley up to end for a rise above recThr, following the valley down
// when a lower sample comes first.
func (s *signal) recovery(valley, end int, recThr float64) (int, bool) {
	for idx := valley; idx < end; idx++ {
		if s.f[idx]-s.f[valley] > recThr {
			return valley, true
		}
		if s.f[idx] < s.f[valley] {
			valley = idx
		}
	}
	return valley, false
}
