package main

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Open-EO/FuseTS/cube"
	"github.com/Open-EO/FuseTS/timedataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDataset(t *testing.T, path string) *cube.Dataset {
	dates := timedataset.GenerateRegularT(time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC), 37, 10)
	coords := map[string]cube.Coord{
		"t": cube.TimeCoord(dates),
		"x": cube.RangeCoord(2),
	}
	ndvi := make([]float64, 0, 2*len(dates))
	rvi := make([]float64, 0, 2*len(dates))
	for i := range dates {
		phase := 2 * math.Pi * float64(i) / 36
		for x := 0; x < 2; x++ {
			val := 0.5 + 0.3*math.Sin(phase)
			if i%5 == 2 {
				val = math.NaN()
			}
			ndvi = append(ndvi, val)
			rvi = append(rvi, 0.2+0.1*math.Sin(phase)+0.004*math.Cos(2.3*float64(i)))
		}
	}
	ndviCube, err := cube.New("ndvi", []string{"t", "x"}, coords, ndvi)
	require.Nil(t, err)
	rviCube, err := cube.New("rvi", []string{"t", "x"}, coords, rvi)
	require.Nil(t, err)
	ds, err := cube.NewDataset(ndviCube, rviCube)
	require.Nil(t, err)
	require.Nil(t, cube.SaveFile(path, ds))
	return ds
}

func writeConfig(t *testing.T, dir string) string {
	path := filepath.Join(dir, "fusets.yaml")
	content := "logging:\n  format: json\n  output_path: " + filepath.Join(dir, "fusets.log") + "\n"
	require.Nil(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRun(t *testing.T) {
	testData := map[string]struct {
		process       string
		params        string
		expectedNames []string
	}{
		"whittaker": {
			process:       "whittaker",
			params:        `{"smoothing_lambda": [-1, 3], "prediction_period": "P20D"}`,
			expectedNames: []string{"ndvi", "rvi"},
		},
		"peakvalley": {
			process:       "peakvalley",
			expectedNames: []string{"ndvi_peak_valley_mask", "rvi_peak_valley_mask"},
		},
		"temporal outliers": {
			process:       "temporal_outliers",
			params:        `{"window": 5, "variables": ["rvi"]}`,
			expectedNames: []string{"rvi"},
		},
		"fit harmonics": {
			process:       "fit_harmonics",
			params:        `{"num_coefficients": 4}`,
			expectedNames: []string{"ndvi", "rvi"},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			in := filepath.Join(dir, "in.json.sz")
			out := filepath.Join(dir, "out.json")
			html := filepath.Join(dir, "plot.html")
			writeDataset(t, in)

			args := []string{
				"-config", writeConfig(t, dir),
				"-process", td.process,
				"-in", in,
				"-out", out,
				"-plot", html,
				"-pixel", "x=1",
			}
			if td.params != "" {
				args = append(args, "-params", td.params)
			}
			require.Nil(t, run(context.Background(), args, &bytes.Buffer{}))

			res, err := cube.LoadFile(out)
			require.Nil(t, err)
			assert.Equal(t, td.expectedNames, res.Names())

			page, err := os.ReadFile(html)
			require.Nil(t, err)
			assert.Contains(t, string(page), "ndvi observed")
		})
	}
}

func TestRunMOGPRModel(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.json")
	modelPath := filepath.Join(dir, "model.json")
	writeDataset(t, in)
	configPath := writeConfig(t, dir)

	for _, out := range []string{"fit.json", "reuse.json"} {
		args := []string{
			"-config", configPath,
			"-process", "mogpr",
			"-in", in,
			"-out", filepath.Join(dir, out),
			"-model", modelPath,
			"-params", `{"include_uncertainties": true}`,
		}
		require.Nil(t, run(context.Background(), args, &bytes.Buffer{}))
	}

	_, err := os.Stat(modelPath)
	require.Nil(t, err)

	fitted, err := cube.LoadFile(filepath.Join(dir, "fit.json"))
	require.Nil(t, err)
	reused, err := cube.LoadFile(filepath.Join(dir, "reuse.json"))
	require.Nil(t, err)
	assert.Equal(t, []string{"ndvi_FUSED", "rvi_FUSED", "ndvi_STD", "rvi_STD"}, reused.Names())
	assert.Equal(t, fitted.Names(), reused.Names())
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.json")
	writeDataset(t, in)
	configPath := writeConfig(t, dir)

	testData := map[string]struct {
		args []string
		err  error
	}{
		"missing process": {
			args: []string{"-in", in, "-out", "out.json"},
			err:  ErrMissingFlag,
		},
		"bad pixel": {
			args: []string{"-process", "whittaker", "-in", in, "-out", "out.json", "-pixel", "x"},
			err:  ErrInvalidFlag,
		},
		"bad params": {
			args: []string{"-config", configPath, "-process", "whittaker", "-in", in, "-out", "out.json", "-params", "{"},
			err:  ErrInvalidFlag,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			err := run(context.Background(), td.args, &bytes.Buffer{})
			assert.ErrorIs(t, err, td.err)
		})
	}
}

func TestParsePixel(t *testing.T) {
	pixel, err := parsePixel("x=3, y=7")
	require.Nil(t, err)
	assert.Equal(t, map[string]int{"x": 3, "y": 7}, pixel)

	pixel, err = parsePixel("")
	require.Nil(t, err)
	assert.Empty(t, pixel)

	_, err = parsePixel("x=a")
	assert.ErrorIs(t, err, ErrInvalidFlag)
}
