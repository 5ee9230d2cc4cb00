package config

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Open-EO/FuseTS/udf"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config represents the complete command configuration
type Config struct {
	Logging    LoggingConfig    `mapstructure:"logging"`
	Processing ProcessingConfig `mapstructure:"processing"`
	Whittaker  WhittakerConfig  `mapstructure:"whittaker"`
	MOGPR      MOGPRConfig      `mapstructure:"mogpr"`
	PeakValley PeakValleyConfig `mapstructure:"peakvalley"`
	Outliers   OutliersConfig   `mapstructure:"outliers"`
	Harmonics  HarmonicsConfig  `mapstructure:"harmonics"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, file path
	TimeFormat string `mapstructure:"time_format"` // RFC3339, Unix, Kitchen
}

// ProcessingConfig applies to every process
type ProcessingConfig struct {
	Backend       string `mapstructure:"backend"`        // local, remote
	Parallelism   int    `mapstructure:"parallelism"`    // concurrent slices
	Strict        bool   `mapstructure:"strict"`         // fail on slices without enough observations
	TimeDimension string `mapstructure:"time_dimension"` // only needed when ambiguous
}

type WhittakerConfig struct {
	SmoothingLambda  float64   `mapstructure:"smoothing_lambda"`
	LogLambdaBounds  []float64 `mapstructure:"log_lambda_bounds"` // enables the automatic lambda search
	PredictionPeriod string    `mapstructure:"prediction_period"`
}

type MOGPRConfig struct {
	Variables            []string `mapstructure:"variables"`
	PredictionPeriod     string   `mapstructure:"prediction_period"`
	IncludeUncertainties bool     `mapstructure:"include_uncertainties"`
	IncludeRawInputs     bool     `mapstructure:"include_raw_inputs"`
}

type PeakValleyConfig struct {
	DropThreshold  float64 `mapstructure:"drop_thr"`
	RecoveryRatio  float64 `mapstructure:"rec_r"`
	SlopeThreshold float64 `mapstructure:"slope_thr"`
}

type OutliersConfig struct {
	Variables []string `mapstructure:"variables"`
	Window    string   `mapstructure:"window"`
	Threshold float64  `mapstructure:"threshold"`
}

type HarmonicsConfig struct {
	NumCoefficients int `mapstructure:"num_coefficients"`
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}
	if err := c.Processing.Validate(); err != nil {
		return fmt.Errorf("processing config: %w", err)
	}
	if err := c.Whittaker.Validate(); err != nil {
		return fmt.Errorf("whittaker config: %w", err)
	}
	if c.Outliers.Threshold <= 0 {
		return fmt.Errorf("outliers config: threshold %g, %w", c.Outliers.Threshold, ErrInvalidConfig)
	}
	if c.Harmonics.NumCoefficients < 2 {
		return fmt.Errorf("harmonics config: num_coefficients %d, %w", c.Harmonics.NumCoefficients, ErrInvalidConfig)
	}
	return nil
}

func (c *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Level)] {
		return fmt.Errorf("level %q, %w", c.Level, ErrInvalidConfig)
	}
	validFormats := map[string]bool{
		"json":    true,
		"console": true,
		"pretty":  true,
	}
	if !validFormats[strings.ToLower(c.Format)] {
		return fmt.Errorf("format %q, %w", c.Format, ErrInvalidConfig)
	}
	return nil
}

func (c *ProcessingConfig) Validate() error {
	switch udf.Kind(strings.ToLower(c.Backend)) {
	case "", udf.KindLocal, udf.KindRemote:
	default:
		return fmt.Errorf("backend %q, %w", c.Backend, ErrInvalidConfig)
	}
	if c.Parallelism < 1 {
		return fmt.Errorf("parallelism %d, %w", c.Parallelism, ErrInvalidConfig)
	}
	return nil
}

func (c *WhittakerConfig) Validate() error {
	if len(c.LogLambdaBounds) == 0 {
		if !(c.SmoothingLambda > 0) || math.IsInf(c.SmoothingLambda, 0) {
			return fmt.Errorf("smoothing_lambda %g, %w", c.SmoothingLambda, ErrInvalidConfig)
		}
		return nil
	}
	if len(c.LogLambdaBounds) != 2 || c.LogLambdaBounds[0] >= c.LogLambdaBounds[1] {
		return fmt.Errorf("log_lambda_bounds %v, %w", c.LogLambdaBounds, ErrInvalidConfig)
	}
	return nil
}

// Settings returns the execution settings of the local backend.
func (c *Config) Settings() udf.Settings {
	return udf.Settings{Parallelism: c.Processing.Parallelism, Strict: c.Processing.Strict}
}

// Params returns the configured context of a process. Keys left at their zero value are omitted so
// the process defaults apply.
func (c *Config) Params(process string) (udf.Context, error) {
	params := make(udf.Context)
	set := func(key string, val any, isSet bool) {
		if isSet {
			params[key] = val
		}
	}
	set(udf.KeyTimeDimension, c.Processing.TimeDimension, c.Processing.TimeDimension != "")

	switch process {
	case udf.ProcessWhittaker:
		if len(c.Whittaker.LogLambdaBounds) > 0 {
			params[udf.KeySmoothingLambda] = c.Whittaker.LogLambdaBounds
		} else {
			params[udf.KeySmoothingLambda] = c.Whittaker.SmoothingLambda
		}
		set(udf.KeyPredictionPeriod, c.Whittaker.PredictionPeriod, c.Whittaker.PredictionPeriod != "")
	case udf.ProcessMOGPR:
		set(udf.KeyVariables, c.MOGPR.Variables, len(c.MOGPR.Variables) > 0)
		set(udf.KeyPredictionPeriod, c.MOGPR.PredictionPeriod, c.MOGPR.PredictionPeriod != "")
		params[udf.KeyIncludeUncertainties] = c.MOGPR.IncludeUncertainties
		params[udf.KeyIncludeRawInputs] = c.MOGPR.IncludeRawInputs
	case udf.ProcessPeakValley:
		params[udf.KeyDropThreshold] = c.PeakValley.DropThreshold
		params[udf.KeyRecoveryRatio] = c.PeakValley.RecoveryRatio
		params[udf.KeySlopeThreshold] = c.PeakValley.SlopeThreshold
	case udf.ProcessTemporalOutliers:
		set(udf.KeyVariables, c.Outliers.Variables, len(c.Outliers.Variables) > 0)
		set(udf.KeyWindow, c.Outliers.Window, c.Outliers.Window != "")
		params[udf.KeyThreshold] = c.Outliers.Threshold
	case udf.ProcessFitHarmonics:
		params[udf.KeyNumCoefficients] = c.Harmonics.NumCoefficients
	default:
		return nil, fmt.Errorf("%q, %w", process, udf.ErrUnknownProcess)
	}
	return params, nil
}
