package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Open-EO/FuseTS/harmonics"
	"github.com/Open-EO/FuseTS/outliers"
	"github.com/Open-EO/FuseTS/peakvalley"
	"github.com/Open-EO/FuseTS/udf"
	"github.com/Open-EO/FuseTS/whittaker"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes the environment overrides, e.g. FUSETS_PROCESSING_PARALLELISM
const EnvPrefix = "FUSETS"

// Load loads configuration from file. Without a path the default locations are searched and a
// missing file falls back to the defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("fusets")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/fusets")
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return parseConfig(v)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return parseConfig(v)
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output_path", "stderr")
	v.SetDefault("logging.time_format", "RFC3339")

	v.SetDefault("processing.backend", string(udf.KindLocal))
	v.SetDefault("processing.parallelism", 1)
	v.SetDefault("processing.strict", false)
	v.SetDefault("processing.time_dimension", "")

	v.SetDefault("whittaker.smoothing_lambda", whittaker.DefaultLambda)
	v.SetDefault("whittaker.log_lambda_bounds", []float64{})
	v.SetDefault("whittaker.prediction_period", "")

	v.SetDefault("mogpr.variables", []string{})
	v.SetDefault("mogpr.prediction_period", "")
	v.SetDefault("mogpr.include_uncertainties", false)
	v.SetDefault("mogpr.include_raw_inputs", false)

	v.SetDefault("peakvalley.drop_thr", peakvalley.DefaultDropThreshold)
	v.SetDefault("peakvalley.rec_r", peakvalley.DefaultRecoveryRatio)
	v.SetDefault("peakvalley.slope_thr", peakvalley.DefaultSlopeThreshold)

	v.SetDefault("outliers.variables", []string{})
	v.SetDefault("outliers.window", udf.DefaultWindow)
	v.SetDefault("outliers.threshold", outliers.DefaultThreshold)

	v.SetDefault("harmonics.num_coefficients", harmonics.DefaultNumCoefficients)
}

// parseConfig parses viper config into Config struct
func parseConfig(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			OutputPath: "stderr",
			TimeFormat: "RFC3339",
		},
		Processing: ProcessingConfig{
			Backend:     string(udf.KindLocal),
			Parallelism: 1,
		},
		Whittaker: WhittakerConfig{
			SmoothingLambda: whittaker.DefaultLambda,
		},
		PeakValley: PeakValleyConfig{
			DropThreshold:  peakvalley.DefaultDropThreshold,
			RecoveryRatio:  peakvalley.DefaultRecoveryRatio,
			SlopeThreshold: peakvalley.DefaultSlopeThreshold,
		},
		Outliers: OutliersConfig{
			Window:    udf.DefaultWindow,
			Threshold: outliers.DefaultThreshold,
		},
		Harmonics: HarmonicsConfig{
			NumCoefficients: harmonics.DefaultNumCoefficients,
		},
	}
}
