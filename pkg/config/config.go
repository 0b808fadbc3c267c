// Package config resolves run settings from flags, environment and an
// optional config file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/quidome/photo-dater/pkg/agedate"
	"github.com/quidome/photo-dater/pkg/estimate"
)

// EnvPrefix prefixes environment overrides, e.g. PHOTO_DATER_YEAR_OF_BIRTH.
const EnvPrefix = "PHOTO_DATER"

// Keys shared by flags, environment variables and config files.
const (
	KeyFolderPath    = "folder_path"
	KeyYearOfBirth   = "year_of_birth"
	KeyThresholdDays = "threshold_days"
	KeyDryRun        = "dry_run"
	KeyVerbose       = "verbose"
	KeyJSON          = "json"
	KeyEstimator     = "estimator"
	KeyDeepFaceURL   = "deepface_url"
	KeyDeepFaceTO    = "deepface_timeout"
	KeyAWSRegion     = "aws_region"
	KeyLogFormat     = "log_format"
)

// Estimator backends.
const (
	EstimatorDeepFace    = "deepface"
	EstimatorRekognition = "rekognition"
)

const DefaultFolderPath = "images/"

// Config is the resolved configuration of one run.
type Config struct {
	FolderPath    string
	YearOfBirth   int
	ThresholdDays int
	DryRun        bool
	Verbose       bool
	JSON          bool

	Estimator EstimatorConfig
	Log       LogConfig
}

type EstimatorConfig struct {
	Backend         string
	DeepFaceURL     string
	DeepFaceTimeout time.Duration
	AWSRegion       string
}

type LogConfig struct {
	Level  string
	Format string
}

// BirthDate returns January 1st of the configured year.
func (c *Config) BirthDate() time.Time {
	return agedate.BirthDate(c.YearOfBirth)
}

// RegisterFlags declares every setting on fs. Flag names match the keys;
// folder_path and year_of_birth keep their underscores.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(KeyFolderPath, DefaultFolderPath, "the path to the folder containing image files")
	fs.Int(KeyYearOfBirth, 0, "the year of birth of the person in the photos")
	fs.Int("threshold-days", agedate.DefaultThresholdDays, "rewrite when estimated and recorded dates are further apart than this")
	fs.BoolP("dry-run", "n", false, "report what would change without prompting or writing")
	fs.BoolP(KeyVerbose, "v", false, "enable debug logging")
	fs.Bool(KeyJSON, false, "print outcomes as JSON")
	fs.String(KeyEstimator, EstimatorDeepFace, "age estimation backend: deepface or rekognition")
	fs.String("deepface-url", estimate.DefaultDeepFaceURL, "base URL of the DeepFace API")
	fs.Duration("deepface-timeout", 2*time.Minute, "timeout for one DeepFace request")
	fs.String("aws-region", "", "AWS region for Rekognition (defaults to the AWS config chain)")
	fs.String("log-format", "console", "log format: console or json")
}

// flagKeys maps hyphenated flag names to their keys.
var flagKeys = map[string]string{
	"threshold-days":   KeyThresholdDays,
	"dry-run":          KeyDryRun,
	"deepface-url":     KeyDeepFaceURL,
	"deepface-timeout": KeyDeepFaceTO,
	"aws-region":       KeyAWSRegion,
	"log-format":       KeyLogFormat,
}

// Bind wires flags and environment into v. Precedence is flag, environment,
// config file, then flag default.
func Bind(v *viper.Viper, fs *pflag.FlagSet) error {
	var bindErr error
	fs.VisitAll(func(f *pflag.Flag) {
		key := f.Name
		if k, ok := flagKeys[f.Name]; ok {
			key = k
		}
		if err := v.BindPFlag(key, f); err != nil && bindErr == nil {
			bindErr = fmt.Errorf("bind flag %s: %w", f.Name, err)
		}
	})

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return bindErr
}

// ReadFile merges a config file (YAML, TOML, JSON, ...) into v.
func ReadFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

// IsSet reports whether key was supplied explicitly (flag, env or file)
// rather than left at its default.
func IsSet(v *viper.Viper, fs *pflag.FlagSet, key string) bool {
	if f := fs.Lookup(key); f != nil && f.Changed {
		return true
	}
	// viper.IsSet is always true for bound flags, so consult the sources.
	if v.InConfig(key) {
		return true
	}
	val, ok := os.LookupEnv(EnvPrefix + "_" + strings.ToUpper(key))
	return ok && val != ""
}

// Load resolves and validates the configuration. YearOfBirth may still be
// zero when the caller intends to prompt for it.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		FolderPath:    v.GetString(KeyFolderPath),
		YearOfBirth:   v.GetInt(KeyYearOfBirth),
		ThresholdDays: v.GetInt(KeyThresholdDays),
		DryRun:        v.GetBool(KeyDryRun),
		Verbose:       v.GetBool(KeyVerbose),
		JSON:          v.GetBool(KeyJSON),
		Estimator: EstimatorConfig{
			Backend:         strings.ToLower(v.GetString(KeyEstimator)),
			DeepFaceURL:     v.GetString(KeyDeepFaceURL),
			DeepFaceTimeout: v.GetDuration(KeyDeepFaceTO),
			AWSRegion:       v.GetString(KeyAWSRegion),
		},
		Log: LogConfig{
			Level:  "info",
			Format: v.GetString(KeyLogFormat),
		},
	}
	if cfg.Verbose {
		cfg.Log.Level = "debug"
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error

	switch c.Estimator.Backend {
	case EstimatorDeepFace, EstimatorRekognition:
	default:
		errs = append(errs, fmt.Errorf("unknown estimator %q", c.Estimator.Backend))
	}
	if c.ThresholdDays < 0 {
		errs = append(errs, fmt.Errorf("threshold_days must not be negative, got %d", c.ThresholdDays))
	}
	if c.YearOfBirth != 0 {
		if err := ValidateYear(c.YearOfBirth); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// ValidateYear rejects years time.Time and the EXIF date format cannot carry.
func ValidateYear(year int) error {
	if year < 1 || year > 9999 {
		return fmt.Errorf("year_of_birth %d out of range 1-9999", year)
	}
	return nil
}
