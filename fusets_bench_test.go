package fusets

import (
	"os"
	"testing"

	"github.com/Open-EO/FuseTS/cube"
	"github.com/Open-EO/FuseTS/udf"
	"github.com/goccy/go-json"
	"github.com/pkg/profile"
)

var benchRes *cube.Dataset

func BenchmarkMOGPRFit(b *testing.B) {
	ds, err := generateExampleDataset()
	if err != nil {
		panic(err)
	}

	var tr *MOGPRTransformer
	b.ResetTimer()
	for b.Loop() {
		tr = NewMOGPR(nil)
		if err := tr.Fit(ds, udf.Context{udf.KeyIncludeUncertainties: true}); err != nil {
			panic(err)
		}
	}

	bytes, err := json.MarshalIndent(tr.Model(), "", "  ")
	if err != nil {
		panic(err)
	}
	if err := os.WriteFile("benchmark_model.json", bytes, 0o644); err != nil {
		panic(err)
	}
}

func BenchmarkTransformFromModel(b *testing.B) {
	bytes, err := os.ReadFile("benchmark_model.json")
	if err != nil {
		b.Skip("run BenchmarkMOGPRFit first to generate benchmark_model.json")
	}

	var model Model
	if err := json.Unmarshal(bytes, &model); err != nil {
		panic(err)
	}
	tr, err := NewFromModel(model, nil)
	if err != nil {
		panic(err)
	}
	ds, err := generateExampleDataset()
	if err != nil {
		panic(err)
	}

	b.ResetTimer()
	defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	for b.Loop() {
		benchRes, err = tr.(*MOGPRTransformer).Transform(ds)
		if err != nil {
			panic(err)
		}
	}
}

func BenchmarkWhittaker(b *testing.B) {
	ds, err := generateExampleDataset()
	if err != nil {
		panic(err)
	}
	tr := NewWhittaker(nil)

	b.ResetTimer()
	defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	for b.Loop() {
		benchRes, err = tr.FitTransform(ds, udf.Context{udf.KeySmoothingLambda: []float64{-2, 4}})
		if err != nil {
			panic(err)
		}
	}
}
