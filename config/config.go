package config

import (
	stderrors "errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/asset-overlay/errors"
)

// EnvPrefix prefixes every environment override.
//
//	ASSET_OVERLAY_ASSETS=/data/assets
//	ASSET_OVERLAY_PACKS=packs/hud,packs/base.mcpack
//	ASSET_OVERLAY_LOG_LEVEL=debug
//	ASSET_OVERLAY_NO_FOG=true
const EnvPrefix = "ASSET_OVERLAY_"

// Config is the overlay's configuration file.
type Config struct {
	// Assets is the root of the host asset archive.
	Assets string `yaml:"assets"`

	// Packs are resource packs, highest priority first.
	Packs []string `yaml:"packs"`

	// LogLevel is a zap level name. Default: info
	LogLevel string `yaml:"log_level"`

	// Features turns individual replacements on or off. Unlisted features
	// are off.
	Features map[Feature]bool `yaml:"features"`

	// ReferencePaths overrides the materials read to detect the host version.
	ReferencePaths []string `yaml:"reference_paths"`
}

// Default returns a config with every feature off.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Features: make(map[Feature]bool),
	}
}

// Load reads and validates a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.PhaseConfig, errors.KindNotFound).
			Asset(path).
			Cause(err).
			Build()
	}
	cfg, err := Parse(data)
	if err != nil {
		var e *errors.Error
		if stderrors.As(err, &e) && e.Asset == "" {
			e.Asset = path
		}
		return nil, err
	}
	return cfg, nil
}

// Parse decodes and validates YAML config data over Default.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "parse config")
	}
	if cfg.Features == nil {
		cfg.Features = make(map[Feature]bool)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnv loads .env files into the process environment and then applies
// EnvPrefix overrides to c. With no files it tries ./.env and ignores its
// absence; named files must exist. Variables already set in the environment
// win over .env values.
func (c *Config) LoadEnv(files ...string) error {
	if len(files) == 0 {
		if err := godotenv.Load(); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
			return errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, ".env")
		}
	} else if err := godotenv.Load(files...); err != nil {
		return errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, strings.Join(files, ","))
	}
	return c.ApplyEnv()
}

// ApplyEnv applies EnvPrefix overrides from the current environment.
func (c *Config) ApplyEnv() error {
	if v, ok := os.LookupEnv(EnvPrefix + "ASSETS"); ok {
		c.Assets = v
	}
	if v, ok := os.LookupEnv(EnvPrefix + "PACKS"); ok {
		c.Packs = splitList(v)
	}
	if v, ok := os.LookupEnv(EnvPrefix + "LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if c.Features == nil {
		c.Features = make(map[Feature]bool)
	}
	for _, f := range AllFeatures {
		key := EnvPrefix + strings.ToUpper(string(f))
		v, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		on, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
				Path(key).
				Value(v).
				Cause(err).
				Build()
		}
		c.Features[f] = on
	}
	return c.Validate()
}

// Validate rejects unknown features and log levels.
func (c *Config) Validate() error {
	for f := range c.Features {
		if !f.Valid() {
			return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
				Path("features", string(f)).
				Detail("unknown feature %q", f).
				Build()
		}
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel. An empty level is info.
func (c *Config) Level() (zapcore.Level, error) {
	if c.LogLevel == "" {
		return zapcore.InfoLevel, nil
	}
	lvl, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.InfoLevel, errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Path("log_level").
			Value(c.LogLevel).
			Cause(err).
			Build()
	}
	return lvl, nil
}

// Toggles returns a live feature set seeded from c.
func (c *Config) Toggles() *Toggles {
	t := NewToggles()
	for f, on := range c.Features {
		t.Set(f, on)
	}
	return t
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
