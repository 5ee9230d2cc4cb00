package timedataset

import (
	"time"
)

type TimeSlice []time.Time

func (t TimeSlice) StartTime() time.Time {
	var startTime time.Time
	if len(t) < 1 {
		return startTime
	}
	return t[0]
}

func (t TimeSlice) EndTime() time.Time {
	var lastTime time.Time
	if len(t) < 1 {
		return lastTime
	}

	lastTime = t[len(t)-1]
	return lastTime
}

// DayOrdinals converts every time point to its day ordinal.
func (t TimeSlice) DayOrdinals() []int {
	ordinals := make([]int, len(t))
	for i, tPnt := range t {
		ordinals[i] = DayOrdinal(tPnt)
	}
	return ordinals
}

// DayOffsets returns the number of whole days between each time point and the first one.
func (t TimeSlice) DayOffsets() []int {
	offsets := t.DayOrdinals()
	if len(offsets) == 0 {
		return offsets
	}
	first := offsets[0]
	for i := range offsets {
		offsets[i] -= first
	}
	return offsets
}

// DaySpan returns the number of days covered from the first to the last time point, both inclusive.
func (t TimeSlice) DaySpan() int {
	if len(t) == 0 {
		return 0
	}
	return DayOrdinal(t.EndTime()) - DayOrdinal(t.StartTime()) + 1
}
