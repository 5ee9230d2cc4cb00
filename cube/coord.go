package cube

import (
	"time"
)

// Coord holds the labels of a single dimension. Exactly one of Times, Labels or Values is set.
type Coord struct {
	Times  []time.Time `json:"times,omitempty"`
	Labels []string    `json:"labels,omitempty"`
	Values []float64   `json:"values,omitempty"`
}

// TimeCoord returns a time typed coordinate.
func TimeCoord(t []time.Time) Coord {
	return Coord{Times: t}
}

// LabelCoord returns a string labeled coordinate such as a band dimension.
func LabelCoord(labels ...string) Coord {
	return Coord{Labels: labels}
}

// ValueCoord returns a numeric coordinate such as x or y positions.
func ValueCoord(vals []float64) Coord {
	return Coord{Values: vals}
}

// RangeCoord returns the numeric coordinate 0, 1, ..., n-1.
func RangeCoord(n int) Coord {
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = float64(i)
	}
	return ValueCoord(vals)
}

func (c Coord) Len() int {
	switch {
	case c.Times != nil:
		return len(c.Times)
	case c.Labels != nil:
		return len(c.Labels)
	default:
		return len(c.Values)
	}
}

// IsTime reports whether the coordinate holds timestamps.
func (c Coord) IsTime() bool {
	return c.Times != nil
}

// LabelIndex returns the position of a label or -1.
func (c Coord) LabelIndex(label string) int {
	for i, l := range c.Labels {
		if l == label {
			return i
		}
	}
	return -1
}

func (c Coord) copy() Coord {
	var out Coord
	if c.Times != nil {
		out.Times = append([]time.Time{}, c.Times...)
	}
	if c.Labels != nil {
		out.Labels = append([]string{}, c.Labels...)
	}
	if c.Values != nil {
		out.Values = append([]float64{}, c.Values...)
	}
	return out
}
