package timedataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStartEndTime(t *testing.T) {
	testData := map[string]struct {
		tSlice        TimeSlice
		expectedStart time.Time
		expectedEnd   time.Time
		expectedSpan  int
	}{
		"nil input": {
			tSlice: nil,
		},
		"valid times": {
			tSlice: TimeSlice([]time.Time{
				time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
				time.Date(1970, 1, 2, 0, 0, 0, 0, time.UTC),
				time.Date(1970, 1, 5, 12, 0, 0, 0, time.UTC),
			}),
			expectedStart: time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
			expectedEnd:   time.Date(1970, 1, 5, 12, 0, 0, 0, time.UTC),
			expectedSpan:  5,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, td.expectedStart, td.tSlice.StartTime())
			assert.Equal(t, td.expectedEnd, td.tSlice.EndTime())
			assert.Equal(t, td.expectedSpan, td.tSlice.DaySpan())
		})
	}
}

func TestDayOffsets(t *testing.T) {
	start := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	offsets := []int{0, 1, 2, 4, 5, 6, 8}
	tSlice := TimeSlice(GenerateDailyT(start, offsets))

	assert.Equal(t, offsets, tSlice.DayOffsets())
	assert.Empty(t, TimeSlice(nil).DayOffsets())
}
