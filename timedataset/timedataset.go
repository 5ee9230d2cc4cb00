// Package timedataset holds the single time series slice used by every kernel along with the day
// arithmetic shared by them.
package timedataset

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	ErrNoTrainingData     = errors.New("no training data")
	ErrNonMontonic        = errors.New("time feature is not monotonic")
	ErrDatasetLenMismatch = errors.New("time feature has a different length than observations")
)

// epochOrdinal is the proleptic Gregorian ordinal of 1970-01-01 where 0001-01-01 is day 1.
const epochOrdinal = 719163

// TimeDataset represents a time series storing a slice of time points and values.
// Both must be of the same length. Missing observations are NaN.
type TimeDataset struct {
	T []time.Time
	Y []float64
}

// NewUnivariateDataset returns an instance of a TimeDataset given a time and value slice.
func NewUnivariateDataset(t []time.Time, y []float64) (*TimeDataset, error) {
	if len(y) == 0 {
		return nil, ErrNoTrainingData
	}
	if len(t) != len(y) {
		return nil, fmt.Errorf(
			"time feature has length of %d, but values has a length of %d, %w",
			len(t), len(y), ErrDatasetLenMismatch,
		)
	}

	var lastT time.Time
	for i := 0; i < len(t); i++ {
		currT := t[i]
		if i > 0 && !currT.After(lastT) {
			return nil, fmt.Errorf("non-monotonic at %d, %w", i, ErrNonMontonic)
		}
		lastT = currT
	}

	tSeries := make([]time.Time, len(t))
	ySeries := make([]float64, len(t))
	copy(tSeries, t)
	copy(ySeries, y)
	td := &TimeDataset{
		T: tSeries,
		Y: ySeries,
	}

	return td, nil
}

func (td *TimeDataset) Copy() *TimeDataset {
	tSeries := make([]time.Time, len(td.T))
	ySeries := make([]float64, len(td.T))
	copy(tSeries, td.T)
	copy(ySeries, td.Y)
	return &TimeDataset{
		T: tSeries,
		Y: ySeries,
	}
}

// DropNan returns a new dataset with all NaN observations removed. This is the weighted sample
// every kernel works from, present values have weight 1 and dropped ones weight 0.
func (td *TimeDataset) DropNan() *TimeDataset {
	if td == nil {
		return nil
	}
	t := make([]time.Time, 0, len(td.T))
	y := make([]float64, 0, len(td.Y))
	for i, val := range td.Y {
		if math.IsNaN(val) {
			continue
		}
		t = append(t, td.T[i])
		y = append(y, val)
	}
	return &TimeDataset{
		T: t,
		Y: y,
	}
}

// Valid returns the number of non NaN observations.
func (td *TimeDataset) Valid() int {
	if td == nil {
		return 0
	}
	var cnt int
	for _, val := range td.Y {
		if !math.IsNaN(val) {
			cnt++
		}
	}
	return cnt
}

// DayOrdinals returns the day ordinal of every time point.
func (td *TimeDataset) DayOrdinals() []int {
	return TimeSlice(td.T).DayOrdinals()
}

// DayOrdinal converts a time to its proleptic Gregorian day number, 0001-01-01 being day 1. The
// time of day is discarded.
func DayOrdinal(t time.Time) int {
	y, m, d := t.Date()
	days := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
	return int(days) + epochOrdinal
}

// FromOrdinal returns midnight UTC of the given day ordinal.
func FromOrdinal(ordinal int) time.Time {
	return time.Unix(int64(ordinal-epochOrdinal)*86400, 0).UTC()
}

// Truncate drops the time of day while keeping the calendar date.
func Truncate(t time.Time) time.Time {
	return FromOrdinal(DayOrdinal(t))
}
