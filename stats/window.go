package stats

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Open-EO/FuseTS/timedataset"
)

var (
	ErrInvalidWindow  = errors.New("invalid rolling window")
	ErrCalendarWindow = errors.New("rolling window must have a fixed length, years and months are not supported")
)

var offsetRe = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*(W|D|d|H|h|min|T|S|s|ms)$`)

var offsetUnits = map[string]time.Duration{
	"W":   7 * 24 * time.Hour,
	"D":   24 * time.Hour,
	"d":   24 * time.Hour,
	"H":   time.Hour,
	"h":   time.Hour,
	"min": time.Minute,
	"T":   time.Minute,
	"S":   time.Second,
	"s":   time.Second,
	"ms":  time.Millisecond,
}

// Window is either a number of samples or a time span.
type Window struct {
	Samples int
	Span    time.Duration
}

// IsTime reports whether the window is expressed as a time span.
func (w Window) IsTime() bool {
	return w.Span > 0
}

func (w Window) String() string {
	if w.IsTime() {
		return w.Span.String()
	}
	return strconv.Itoa(w.Samples)
}

// SampleWindow returns a window covering n samples.
func SampleWindow(n int) Window {
	return Window{Samples: n}
}

// SpanWindow returns a window covering a time span.
func SpanWindow(span time.Duration) Window {
	return Window{Span: span}
}

// ParseWindow accepts a sample count ("7"), an offset alias ("20D", "12h", "30min"), an ISO-8601
// duration ("P20D", "PT6H") or a Go duration ("36h").
func ParseWindow(s string) (Window, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Window{}, ErrInvalidWindow
	}

	if n, err := strconv.Atoi(s); err == nil {
		if n <= 0 {
			return Window{}, fmt.Errorf("window of %d samples, %w", n, ErrInvalidWindow)
		}
		return SampleWindow(n), nil
	}

	if strings.HasPrefix(s, "P") {
		p, err := timedataset.ParsePeriod(s)
		if err != nil {
			return Window{}, fmt.Errorf("%w, %w", err, ErrInvalidWindow)
		}
		if p.Years != 0 || p.Months != 0 {
			return Window{}, fmt.Errorf("%q, %w", s, ErrCalendarWindow)
		}
		return SpanWindow(time.Duration(p.Days)*24*time.Hour + p.Clock), nil
	}

	if m := offsetRe.FindStringSubmatch(s); m != nil {
		val, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return Window{}, fmt.Errorf("%q, %w", s, ErrInvalidWindow)
		}
		span := time.Duration(val * float64(offsetUnits[m[2]]))
		if span <= 0 {
			return Window{}, fmt.Errorf("%q, %w", s, ErrInvalidWindow)
		}
		return SpanWindow(span), nil
	}

	span, err := time.ParseDuration(s)
	if err != nil || span <= 0 {
		return Window{}, fmt.Errorf("%q, %w", s, ErrInvalidWindow)
	}
	return SpanWindow(span), nil
}
