package timedataset

import (
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/floats"
)

// DaysPerYear is the mean tropical year length used by the harmonic generators.
const DaysPerYear = 365.25

// GenerateDailyT returns start advanced by each of the day offsets.
func GenerateDailyT(start time.Time, offsets []int) []time.Time {
	t := make([]time.Time, 0, len(offsets))
	for _, offset := range offsets {
		t = append(t, start.AddDate(0, 0, offset))
	}
	return t
}

// GenerateRegularT returns n time points spaced stepDays apart starting at start.
func GenerateRegularT(start time.Time, n, stepDays int) []time.Time {
	offsets := make([]int, n)
	for i := range offsets {
		offsets[i] = i * stepDays
	}
	return GenerateDailyT(start, offsets)
}

type Series []float64

func (s Series) Add(src Series) Series {
	floats.Add(s, src)
	return s
}

// MaskNaN sets every value to NaN where the mask function returns true for its index.
func (s Series) MaskNaN(mask func(i int) bool) Series {
	for i := range s {
		if mask(i) {
			s[i] = math.NaN()
		}
	}
	return s
}

// AddAt adds val to the value at each index. Repeated indices only receive the value once.
func (s Series) AddAt(idx []int, val []float64) Series {
	seen := make(map[int]float64, len(idx))
	for i, pos := range idx {
		seen[pos] = val[i]
	}
	for pos, v := range seen {
		s[pos] += v
	}
	return s
}

func GenerateConstY(n int, val float64) Series {
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, val)
	}
	return Series(y)
}

// GenerateTrendY generates a linear trend in days since the first time point.
func GenerateTrendY(t []time.Time, slope float64) Series {
	offsets := TimeSlice(t).DayOffsets()
	y := make([]float64, 0, len(t))
	for _, offset := range offsets {
		y = append(y, slope*float64(offset))
	}
	return Series(y)
}

// GenerateCosY generates amp*cos(freq*days) with days counted from the first time point. Use
// cosine as the reference fixture for the smoothers.
func GenerateCosY(t []time.Time, amp, freq float64) Series {
	offsets := TimeSlice(t).DayOffsets()
	y := make([]float64, 0, len(t))
	for _, offset := range offsets {
		y = append(y, amp*math.Cos(freq*float64(offset)))
	}
	return Series(y)
}

// GenerateHarmonicY generates an annual harmonic with cosine and sine amplitudes.
func GenerateHarmonicY(t []time.Time, cosAmp, sinAmp, order float64) Series {
	offsets := TimeSlice(t).DayOffsets()
	y := make([]float64, 0, len(t))
	for _, offset := range offsets {
		rad := 2.0 * math.Pi * order * float64(offset) / DaysPerYear
		y = append(y, cosAmp*math.Cos(rad)+sinAmp*math.Sin(rad))
	}
	return Series(y)
}

// GenerateNoise generates uniform noise in [0, scale) from the provided source.
func GenerateNoise(n int, scale float64, rng *rand.Rand) Series {
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, rng.Float64()*scale)
	}
	return Series(y)
}

// GenerateChange generates a step of size bias from chpt onwards, growing by slope per day.
func GenerateChange(t []time.Time, chpt time.Time, bias, slope float64) Series {
	n := len(t)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		if !t[i].Before(chpt) {
			jump := bias + slope*t[i].Sub(chpt).Hours()/24.0
			y[i] = jump
		}
	}
	return Series(y)
}
