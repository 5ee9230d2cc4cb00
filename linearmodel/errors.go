package linearmodel

import "fmt"

func errTargetLen(m, ym int) error {
	return fmt.Errorf("training data has %d rows and target has %d rows, %w", m, ym, ErrTargetLenMismatch)
}

func errFeatureLen(got, expected int) error {
	return fmt.Errorf("got %d features in design matrix, but expected %d, %w", got, expected, ErrFeatureLenMismatch)
}
