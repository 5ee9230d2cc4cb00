package timedataset

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var (
	ErrInvalidPeriod = errors.New("invalid ISO-8601 period")
	ErrZeroPeriod    = errors.New("period must be positive")
)

var periodRe = regexp.MustCompile(`^P(?:(\d+)Y)?(?:(\d+)M)?(?:(\d+)W)?(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// Period is a calendar aware ISO-8601 duration such as P5D, P1W, P1M or P1Y.
type Period struct {
	Years  int
	Months int
	Days   int

	// Clock holds the time part (PT...) of the period.
	Clock time.Duration
}

// ParsePeriod parses an ISO-8601 duration string.
func ParsePeriod(s string) (Period, error) {
	m := periodRe.FindStringSubmatch(s)
	if m == nil || s == "P" || s[len(s)-1] == 'T' {
		return Period{}, fmt.Errorf("%q, %w", s, ErrInvalidPeriod)
	}

	vals := make([]int, len(m)-1)
	for i, part := range m[1:] {
		if part == "" {
			continue
		}
		v, err := strconv.Atoi(part)
		if err != nil {
			return Period{}, fmt.Errorf("%q, %w", s, ErrInvalidPeriod)
		}
		vals[i] = v
	}

	p := Period{
		Years:  vals[0],
		Months: vals[1],
		Days:   vals[2]*7 + vals[3],
		Clock: time.Duration(vals[4])*time.Hour +
			time.Duration(vals[5])*time.Minute +
			time.Duration(vals[6])*time.Second,
	}
	if p.IsZero() {
		return Period{}, fmt.Errorf("%q, %w", s, ErrZeroPeriod)
	}
	return p, nil
}

// IsZero reports whether the period has no length.
func (p Period) IsZero() bool {
	return p.Years == 0 && p.Months == 0 && p.Days == 0 && p.Clock == 0
}

// Step returns start advanced by k periods. The offset is always computed from start so month
// arithmetic does not accumulate day clamping.
func (p Period) Step(start time.Time, k int) time.Time {
	return start.AddDate(k*p.Years, k*p.Months, k*p.Days).Add(time.Duration(k) * p.Clock)
}

func (p Period) String() string {
	s := "P"
	if p.Years != 0 {
		s += strconv.Itoa(p.Years) + "Y"
	}
	if p.Months != 0 {
		s += strconv.Itoa(p.Months) + "M"
	}
	if p.Days != 0 {
		s += strconv.Itoa(p.Days) + "D"
	}
	if p.Clock != 0 {
		s += "T" + strconv.FormatFloat(p.Clock.Seconds(), 'f', -1, 64) + "S"
	}
	return s
}

// OutputDates generates the regular grid start, start+period, ... up to and including end.
func OutputDates(period string, start, end time.Time) ([]time.Time, error) {
	p, err := ParsePeriod(period)
	if err != nil {
		return nil, err
	}

	var dates []time.Time
	for k := 0; ; k++ {
		next := p.Step(start, k)
		if next.After(end) {
			break
		}
		dates = append(dates, next)
	}
	return dates, nil
}
