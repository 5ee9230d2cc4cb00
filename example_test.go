package fusets

import (
	"fmt"
	"os"

	"github.com/Open-EO/FuseTS/plot"
	"github.com/Open-EO/FuseTS/udf"
)

func ExampleNewWhittaker() {
	ds, err := generateExampleDataset()
	if err != nil {
		panic(err)
	}

	tr := NewWhittaker(nil)
	if err := tr.SetParams(udf.Context{udf.KeySmoothingLambda: []float64{-2, 4}}); err != nil {
		panic(err)
	}
	smoothed, err := tr.FitTransform(ds, udf.Context{udf.KeyPredictionPeriod: "P5D"})
	if err != nil {
		panic(err)
	}

	raw, err := plot.PixelSeries(ds, "", map[string]int{"x": 0})
	if err != nil {
		panic(err)
	}
	fitted, err := plot.PixelSeries(smoothed, "", map[string]int{"x": 0})
	if err != nil {
		panic(err)
	}
	line, err := plot.Line("Whittaker example", raw[0], fitted[0])
	if err != nil {
		panic(err)
	}

	f, err := os.Create("whittaker_example.html")
	if err != nil {
		panic(err)
	}
	defer f.Close()
	if err := plot.Render(f, "fusets", line); err != nil {
		panic(err)
	}
	fmt.Println(smoothed.Names())
}

func ExampleNewMOGPR() {
	ds, err := generateExampleDataset()
	if err != nil {
		panic(err)
	}

	tr := NewMOGPR(&Options{Parallelism: 2})
	fused, err := tr.FitTransform(ds, udf.Context{
		udf.KeyIncludeUncertainties: true,
		udf.KeyPredictionPeriod:     "P5D",
	})
	if err != nil {
		panic(err)
	}

	if err := SaveModel("mogpr_example_model.json", tr.Model()); err != nil {
		panic(err)
	}
	fmt.Println(fused.Names())
}
