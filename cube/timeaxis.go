package cube

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

var (
	ErrNoTimeAxis        = errors.New("no temporal dimension found")
	ErrAmbiguousTimeAxis = errors.New("more than one temporal dimension found, specify one")
)

// TimeDimension resolves the temporal dimension. A non empty name must refer to a time typed
// dimension; otherwise the single time typed dimension is looked up.
func (c *Cube) TimeDimension(name string) (string, error) {
	if name != "" {
		if _, err := c.Axis(name); err != nil {
			return "", fmt.Errorf("%q not in dims %v, %w, %w", name, c.Dims, ErrDimNotFound, ErrNoTimeAxis)
		}
		if !c.Coords[name].IsTime() {
			return "", fmt.Errorf("%q is not temporal, %w", name, ErrNoTimeAxis)
		}
		return name, nil
	}

	var candidates []string
	for _, dim := range c.Dims {
		if c.Coords[dim].IsTime() {
			candidates = append(candidates, dim)
		}
	}
	sort.Strings(candidates)

	switch len(candidates) {
	case 0:
		return "", fmt.Errorf("dims %v, %w", c.Dims, ErrNoTimeAxis)
	case 1:
		return candidates[0], nil
	default:
		return "", fmt.Errorf("candidates %v, %w", candidates, ErrAmbiguousTimeAxis)
	}
}

// Dates returns the timestamps of the resolved temporal dimension.
func (c *Cube) Dates(name string) ([]time.Time, error) {
	dim, err := c.TimeDimension(name)
	if err != nil {
		return nil, err
	}
	return c.Coords[dim].Times, nil
}
