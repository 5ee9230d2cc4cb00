package cube

import (
	"fmt"
	"slices"
	"time"
)

// Dataset is an ordered set of named cubes sharing the same dimensions and coordinates.
type Dataset struct {
	names []string
	vars  map[string]*Cube
}

// NewDataset builds a dataset from cubes keyed by their names.
func NewDataset(cubes ...*Cube) (*Dataset, error) {
	ds := &Dataset{vars: make(map[string]*Cube, len(cubes))}
	for _, c := range cubes {
		if err := ds.Add(c); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

// Add appends a variable. It must match the dimensions and shape of the existing variables.
func (d *Dataset) Add(c *Cube) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if _, exists := d.vars[c.Name]; exists {
		return fmt.Errorf("%q, %w", c.Name, ErrDuplicateVar)
	}
	if len(d.names) > 0 {
		ref := d.vars[d.names[0]]
		if !slices.Equal(ref.Dims, c.Dims) || !slices.Equal(ref.Shape, c.Shape) {
			return fmt.Errorf("%q has dims %v%v, expected %v%v, %w", c.Name, c.Dims, c.Shape, ref.Dims, ref.Shape, ErrDatasetMismatch)
		}
	}
	if d.vars == nil {
		d.vars = make(map[string]*Cube)
	}
	d.names = append(d.names, c.Name)
	d.vars[c.Name] = c
	return nil
}

// Names returns the variable names in insertion order.
func (d *Dataset) Names() []string {
	return append([]string{}, d.names...)
}

// Len returns the number of variables.
func (d *Dataset) Len() int {
	return len(d.names)
}

// Var returns a variable by name.
func (d *Dataset) Var(name string) (*Cube, error) {
	c, exists := d.vars[name]
	if !exists {
		return nil, fmt.Errorf("%q, %w", name, ErrVariableNotFound)
	}
	return c, nil
}

// Template returns the first variable, which carries the shared dimensions and coordinates.
func (d *Dataset) Template() (*Cube, error) {
	if len(d.names) == 0 {
		return nil, ErrEmptyDataset
	}
	return d.vars[d.names[0]], nil
}

// Dates returns the timestamps of the resolved temporal dimension shared by all variables.
func (d *Dataset) Dates(name string) ([]time.Time, error) {
	tmpl, err := d.Template()
	if err != nil {
		return nil, err
	}
	return tmpl.Dates(name)
}

// TimeDimension resolves the temporal dimension shared by all variables.
func (d *Dataset) TimeDimension(name string) (string, error) {
	tmpl, err := d.Template()
	if err != nil {
		return "", err
	}
	return tmpl.TimeDimension(name)
}

// ToArray stacks the selected variables, or all when none are named, along a new leading band
// dimension labeled by variable name.
func (d *Dataset) ToArray(dim string, names ...string) (*Cube, error) {
	if len(names) == 0 {
		names = d.names
	}
	if len(names) == 0 {
		return nil, ErrEmptyDataset
	}

	tmpl, err := d.Var(names[0])
	if err != nil {
		return nil, err
	}
	if slices.Contains(tmpl.Dims, dim) {
		return nil, fmt.Errorf("%q, %w", dim, ErrDuplicateDim)
	}

	coords := make(map[string]Coord, len(tmpl.Coords)+1)
	for k, v := range tmpl.Coords {
		coords[k] = v
	}
	coords[dim] = LabelCoord(append([]string{}, names...)...)

	data := make([]float64, 0, len(names)*tmpl.Size())
	for _, name := range names {
		c, err := d.Var(name)
		if err != nil {
			return nil, err
		}
		data = append(data, c.Data...)
	}
	return New("", append([]string{dim}, tmpl.Dims...), coords, data)
}

// DatasetFromArray splits a cube along a labeled dimension into one variable per label.
func DatasetFromArray(c *Cube, dim string) (*Dataset, error) {
	axis, err := c.Axis(dim)
	if err != nil {
		return nil, err
	}
	labels := c.Coords[dim].Labels
	if len(labels) != c.Shape[axis] {
		return nil, fmt.Errorf("%q has no labels, %w", dim, ErrMissingCoord)
	}

	dims := slices.Delete(append([]string{}, c.Dims...), axis, axis+1)
	coords := make(map[string]Coord, len(c.Coords)-1)
	for k, v := range c.Coords {
		if k != dim {
			coords[k] = v
		}
	}

	ds := &Dataset{vars: make(map[string]*Cube, len(labels))}
	for b, label := range labels {
		v, err := New(label, dims, coords, nil)
		if err != nil {
			return nil, err
		}
		idx := make([]int, len(c.Dims))
		for k := 0; k < v.Size(); k++ {
			// walk v in row major order and map into c with the band index fixed
			rem := k
			for p := len(dims) - 1; p >= 0; p-- {
				ax := p
				if p >= axis {
					ax = p + 1
				}
				idx[ax] = rem % v.Shape[p]
				rem /= v.Shape[p]
			}
			idx[axis] = b
			v.Data[k] = c.At(idx...)
		}
		if err := ds.Add(v); err != nil {
			return nil, err
		}
	}
	return ds, nil
}
