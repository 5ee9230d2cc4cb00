package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"
	"syscall"

	fusets "github.com/Open-EO/FuseTS"
	"github.com/Open-EO/FuseTS/cube"
	"github.com/Open-EO/FuseTS/internal/config"
	"github.com/Open-EO/FuseTS/internal/logging"
	"github.com/Open-EO/FuseTS/mogpr"
	"github.com/Open-EO/FuseTS/plot"
	"github.com/Open-EO/FuseTS/udf"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/goccy/go-json"
)

var (
	Version   = "dev"     // Injected via ldflags during build
	GitCommit = "unknown" // Injected via ldflags during build
)

var (
	ErrMissingFlag = errors.New("missing required flag")
	ErrInvalidFlag = errors.New("invalid flag value")
)

type flags struct {
	configPath string
	process    string
	in         string
	out        string
	params     string
	plotPath   string
	pixel      string
	modelPath  string
}

func parseFlags(args []string, output io.Writer) (*flags, error) {
	fs := flag.NewFlagSet("fusets", flag.ContinueOnError)
	fs.SetOutput(output)

	var f flags
	fs.StringVar(&f.configPath, "config", "", "Path to configuration file")
	fs.StringVar(&f.process, "process", "", "Process to run: "+strings.Join(udf.Processes(), ", "))
	fs.StringVar(&f.in, "in", "", "Input dataset, JSON or snappy compressed .sz")
	fs.StringVar(&f.out, "out", "", "Output dataset, JSON or snappy compressed .sz")
	fs.StringVar(&f.params, "params", "", "JSON object overriding the configured process context")
	fs.StringVar(&f.plotPath, "plot", "", "Write an HTML plot of one pixel to this path")
	fs.StringVar(&f.pixel, "pixel", "", "Pixel to plot as dim=index pairs, e.g. x=3,y=7")
	fs.StringVar(&f.modelPath, "model", "", "mogpr only: load the fusion model from this path if it exists, else save the fitted model there")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	for name, val := range map[string]string{"process": f.process, "in": f.in, "out": f.out} {
		if val == "" {
			return nil, fmt.Errorf("-%s, %w", name, ErrMissingFlag)
		}
	}
	return &f, nil
}

func parsePixel(s string) (map[string]int, error) {
	pixel := make(map[string]int)
	if s == "" {
		return pixel, nil
	}
	for _, part := range strings.Split(s, ",") {
		dim, idx, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			return nil, fmt.Errorf("pixel %q, %w", s, ErrInvalidFlag)
		}
		pos, err := strconv.Atoi(idx)
		if err != nil {
			return nil, fmt.Errorf("pixel %q, %w", s, ErrInvalidFlag)
		}
		pixel[dim] = pos
	}
	return pixel, nil
}

func processParams(cfg *config.Config, f *flags) (udf.Context, error) {
	params, err := cfg.Params(f.process)
	if err != nil {
		return nil, err
	}
	if f.params == "" {
		return params, nil
	}
	var override udf.Context
	if err := json.Unmarshal([]byte(f.params), &override); err != nil {
		return nil, fmt.Errorf("params %w, %w", err, ErrInvalidFlag)
	}
	for k, v := range override {
		params[k] = v
	}
	return params, params.Validate()
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	f, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	pixel, err := parsePixel(f.pixel)
	if err != nil {
		return err
	}

	cfg, err := config.Load(f.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := logging.NewFromConfig(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Close() }()
	logging.InstallSlog(logger)
	logger = logger.With("process", f.process)
	logger.Info("fusets starting", "version", Version, "commit", GitCommit)

	params, err := processParams(cfg, f)
	if err != nil {
		return err
	}

	ds, err := cube.LoadFile(f.in)
	if err != nil {
		return fmt.Errorf("unable to load %s, %w", f.in, err)
	}
	logger.Info("loaded dataset", "path", f.in, "variables", ds.Names())

	var res *cube.Dataset
	if f.process == udf.ProcessMOGPR && f.modelPath != "" {
		res, err = runMOGPRModel(ds, params, cfg, f.modelPath, logger)
	} else {
		res, err = runBackend(ctx, ds, params, cfg, f.process)
	}
	if err != nil {
		return err
	}

	if err := cube.SaveFile(f.out, res); err != nil {
		return fmt.Errorf("unable to save %s, %w", f.out, err)
	}
	logger.Info("saved dataset", "path", f.out, "variables", res.Names())

	logScores(logger, ds, res)

	if f.plotPath != "" {
		if err := writePlot(f.plotPath, f.process, ds, res, cfg.Processing.TimeDimension, pixel); err != nil {
			return err
		}
		logger.Info("saved plot", "path", f.plotPath)
	}
	return nil
}

func runBackend(ctx context.Context, ds *cube.Dataset, params udf.Context, cfg *config.Config, process string) (*cube.Dataset, error) {
	backend, err := udf.NewBackend(udf.Kind(cfg.Processing.Backend), cfg.Settings(), nil)
	if err != nil {
		return nil, err
	}
	return backend.Run(ctx, process, ds, params)
}

// runMOGPRModel reuses a saved fusion model when modelPath exists and otherwise fits one and saves it.
func runMOGPRModel(ds *cube.Dataset, params udf.Context, cfg *config.Config, modelPath string, logger *logging.Logger) (*cube.Dataset, error) {
	opt := &fusets.Options{Parallelism: cfg.Processing.Parallelism, Strict: cfg.Processing.Strict}

	if _, err := os.Stat(modelPath); err == nil {
		model, err := fusets.LoadModel(modelPath)
		if err != nil {
			return nil, fmt.Errorf("unable to load model %s, %w", modelPath, err)
		}
		model.Params = params
		tr, err := fusets.NewFromModel(model, opt)
		if err != nil {
			return nil, err
		}
		logger.Info("loaded fusion model", "path", modelPath)
		return tr.(*fusets.MOGPRTransformer).Transform(ds)
	}

	tr := fusets.NewMOGPR(opt)
	res, err := tr.FitTransform(ds, params)
	if err != nil {
		return nil, err
	}
	if err := fusets.SaveModel(modelPath, tr.Model()); err != nil {
		return nil, fmt.Errorf("unable to save model %s, %w", modelPath, err)
	}
	logger.Info("saved fusion model", "path", modelPath, "lengthscale", tr.FusionModel().Lengthscale)
	return res, nil
}

// logScores compares every output variable that replaces an input variable of the same name.
func logScores(logger *logging.Logger, ds, res *cube.Dataset) {
	for _, name := range res.Names() {
		if !slices.Contains(ds.Names(), name) {
			continue
		}
		observed, err := ds.Var(name)
		if err != nil {
			continue
		}
		reconstructed, err := res.Var(name)
		if err != nil || !slices.Equal(observed.Shape, reconstructed.Shape) {
			continue
		}
		scores, err := fusets.ScoreCubes(reconstructed, observed)
		if err != nil {
			logger.Debug("unable to score variable", "variable", name, "error", err)
			continue
		}
		logger.Info("reconstruction score", "variable", name, "mse", scores.MSE, "mape", scores.MAPE, "count", scores.Count)
	}
}

func writePlot(path, process string, ds, res *cube.Dataset, timeDim string, pixel map[string]int) error {
	inputs, err := plot.PixelSeries(ds, timeDim, pixel)
	if err != nil {
		return err
	}
	outputs, err := plot.PixelSeries(res, timeDim, pixel)
	if errors.Is(err, cube.ErrNoTimeAxis) {
		outputs = nil
	} else if err != nil {
		return err
	}

	var lines []*charts.Line
	for _, in := range inputs {
		series := []plot.Series{{Name: in.Name + " observed", T: in.T, Y: in.Y}}
		for _, out := range outputs {
			switch {
			case out.Name == in.Name:
				out.Name = in.Name + " " + process
				series = append(series, out)
			case out.Name == in.Name+mogpr.FusedSuffix:
				series = append(series, out)
				std := findSeries(outputs, in.Name+mogpr.StdSuffix)
				if std == nil {
					continue
				}
				upper, lower, err := plot.Uncertainty(out, std.Y)
				if err != nil {
					return err
				}
				series = append(series, upper, lower)
			case strings.HasSuffix(out.Name, mogpr.StdSuffix):
			case strings.HasPrefix(out.Name, in.Name+"_") || len(inputs) == 1:
				series = append(series, out)
			}
		}
		line, err := plot.Line(in.Name, series...)
		if err != nil {
			return err
		}
		lines = append(lines, line)
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := plot.Render(file, "fusets "+process, lines...); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func findSeries(series []plot.Series, name string) *plot.Series {
	for i := range series {
		if series[i].Name == name {
			return &series[i]
		}
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "fusets: %v\n", err)
		stop()
		os.Exit(1)
	}
}
