package cube

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/golang/snappy"
)

var ErrDecode = errors.New("unable to decode dataset")

// NaNFloats encodes NaN as JSON null and decodes null back to NaN.
type NaNFloats []float64

func (n NaNFloats) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, val := range n {
		if i > 0 {
			buf.WriteByte(',')
		}
		if math.IsNaN(val) || math.IsInf(val, 0) {
			buf.WriteString("null")
			continue
		}
		b, err := json.Marshal(val)
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func (n *NaNFloats) UnmarshalJSON(data []byte) error {
	var raw []*float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make([]float64, len(raw))
	for i, val := range raw {
		if val == nil {
			out[i] = math.NaN()
			continue
		}
		out[i] = *val
	}
	*n = out
	return nil
}

type cubeJSON struct {
	Name   string           `json:"name"`
	Dims   []string         `json:"dims"`
	Coords map[string]Coord `json:"coords"`
	Data   NaNFloats        `json:"data"`
}

type datasetJSON struct {
	Variables []cubeJSON `json:"variables"`
}

func (c *Cube) MarshalJSON() ([]byte, error) {
	return json.Marshal(cubeJSON{
		Name:   c.Name,
		Dims:   c.Dims,
		Coords: c.Coords,
		Data:   NaNFloats(c.Data),
	})
}

func (c *Cube) UnmarshalJSON(data []byte) error {
	var cj cubeJSON
	if err := json.Unmarshal(data, &cj); err != nil {
		return err
	}
	decoded, err := New(cj.Name, cj.Dims, cj.Coords, []float64(cj.Data))
	if err != nil {
		return fmt.Errorf("cube %q, %w", cj.Name, err)
	}
	*c = *decoded
	return nil
}

func (d *Dataset) MarshalJSON() ([]byte, error) {
	dj := datasetJSON{Variables: make([]cubeJSON, 0, len(d.names))}
	for _, name := range d.names {
		c := d.vars[name]
		dj.Variables = append(dj.Variables, cubeJSON{
			Name:   c.Name,
			Dims:   c.Dims,
			Coords: c.Coords,
			Data:   NaNFloats(c.Data),
		})
	}
	return json.Marshal(dj)
}

func (d *Dataset) UnmarshalJSON(data []byte) error {
	var dj datasetJSON
	if err := json.Unmarshal(data, &dj); err != nil {
		return err
	}
	ds := &Dataset{vars: make(map[string]*Cube, len(dj.Variables))}
	for _, cj := range dj.Variables {
		c, err := New(cj.Name, cj.Dims, cj.Coords, []float64(cj.Data))
		if err != nil {
			return fmt.Errorf("variable %q, %w", cj.Name, err)
		}
		if err := ds.Add(c); err != nil {
			return err
		}
	}
	*d = *ds
	return nil
}

// ReadDataset decodes a JSON dataset.
func ReadDataset(r io.Reader) (*Dataset, error) {
	ds := new(Dataset)
	if err := json.NewDecoder(r).Decode(ds); err != nil {
		return nil, fmt.Errorf("%w, %w", ErrDecode, err)
	}
	return ds, nil
}

// WriteDataset encodes a dataset as JSON.
func WriteDataset(w io.Writer, ds *Dataset) error {
	return json.NewEncoder(w).Encode(ds)
}

// LoadFile reads a dataset from a JSON file. Files ending in .sz are snappy compressed.
func LoadFile(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(path, ".sz") {
		data, err = snappy.Decode(nil, data)
		if err != nil {
			return nil, fmt.Errorf("snappy decompress failed: %w", err)
		}
	}
	return ReadDataset(bytes.NewReader(data))
}

// SaveFile writes a dataset to a JSON file. Files ending in .sz are snappy compressed.
func SaveFile(path string, ds *Dataset) error {
	var buf bytes.Buffer
	if err := WriteDataset(&buf, ds); err != nil {
		return err
	}
	data := buf.Bytes()
	if strings.HasSuffix(path, ".sz") {
		data = snappy.Encode(nil, data)
	}
	return os.WriteFile(path, data, 0o644)
}
