package fusets

import (
	"errors"
	"fmt"
	"math"

	"github.com/Open-EO/FuseTS/cube"
)

var (
	ErrResLenMismatch = errors.New("reconstructed and observed have different lengths")
	ErrNoOverlap      = errors.New("no position holds both a reconstructed and an observed value")
)

// Scores compares a reconstruction against the observations it was built from. Positions where
// either value is NaN are skipped.
type Scores struct {
	MSE   float64 // mean squared error
	MAPE  float64 // mean absolute percent error
	Count int     // number of compared positions
}

func NewScores(reconstructed, observed []float64) (*Scores, error) {
	if len(reconstructed) != len(observed) {
		return nil, ErrResLenMismatch
	}

	var s Scores
	var mapeCount int
	for i := 0; i < len(observed); i++ {
		if math.IsNaN(observed[i]) || math.IsNaN(reconstructed[i]) {
			continue
		}
		diff := observed[i] - reconstructed[i]
		s.MSE += diff * diff
		s.Count++
		if observed[i] != 0 {
			s.MAPE += math.Abs(diff / observed[i])
			mapeCount++
		}
	}
	if s.Count == 0 {
		return nil, ErrNoOverlap
	}
	s.MSE /= float64(s.Count)
	if mapeCount > 0 {
		s.MAPE /= float64(mapeCount)
	}
	return &s, nil
}

// ScoreCubes scores two cubes of identical shape value by value.
func ScoreCubes(reconstructed, observed *cube.Cube) (*Scores, error) {
	if len(reconstructed.Data) != len(observed.Data) {
		return nil, fmt.Errorf("%q has %d values, %q has %d, %w",
			reconstructed.Name, len(reconstructed.Data), observed.Name, len(observed.Data), ErrResLenMismatch)
	}
	return NewScores(reconstructed.Data, observed.Data)
}
