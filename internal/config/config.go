// Package config is for app wide settings that are unmarshalled
// from Viper (see: internal/app). Sources are layered as defaults, then the
// YAML config file, then AMPLISCREEN_* environment variables, then flags.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"ampliscreen/internal/amplicon"
	"ampliscreen/internal/diagnostic"
	"ampliscreen/internal/rank"
	"ampliscreen/internal/screening"
	"ampliscreen/internal/spacing"
	"ampliscreen/internal/variant"
)

// EnvPrefix prefixes environment overrides, e.g. AMPLISCREEN_SCREEN_TARGET.
const EnvPrefix = "AMPLISCREEN"

// AmpliconConfig is window geometry and the displacement search
type AmpliconConfig struct {
	// bases covered by each primer region
	PrimerSize int `mapstructure:"primer-size"`

	// total amplicon length, centred on the variant
	AmpliconSize int `mapstructure:"amplicon-size"`

	// maximum shift tried in each direction
	DisplacementSteps int `mapstructure:"displacement-steps"`

	// exclude only the variant's own row, not every row at its position
	ExcludeByIdentity bool `mapstructure:"exclude-by-identity"`
}

// ScreenConfig is settings for the full screening pipeline
type ScreenConfig struct {
	Target         string `mapstructure:"target"`
	MinReliability string `mapstructure:"min-reliability"`
	MinSpacing     int    `mapstructure:"min-spacing"`
	MaxMarkers     int    `mapstructure:"max-markers"`
}

// SpaceConfig is settings for the standalone spacing filter
type SpaceConfig struct {
	MinSpacing int `mapstructure:"min-spacing"`
}

// OutputConfig is where and how results are written
type OutputConfig struct {
	Format          string `mapstructure:"format"`
	NoHeader        bool   `mapstructure:"no-header"`
	DB              string `mapstructure:"db"`
	MetricsOut      string `mapstructure:"metrics-out"`
	NoMatchExitCode int    `mapstructure:"no-match-exit-code"`
}

// Config is the root-level settings struct
type Config struct {
	Input    string `mapstructure:"input"`
	Workers  int    `mapstructure:"workers"` // 0 = min(CPUs-1, 4)
	Quiet    bool   `mapstructure:"quiet"`
	Verbose  bool   `mapstructure:"verbose"`
	Progress bool   `mapstructure:"progress"`

	Amplicon AmpliconConfig `mapstructure:"amplicon"`
	Screen   ScreenConfig   `mapstructure:"screen"`
	Space    SpaceConfig    `mapstructure:"space"`
	Output   OutputConfig   `mapstructure:"output"`
}

// SetDefaults installs the documented defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("input", "-")
	v.SetDefault("workers", 0)

	v.SetDefault("amplicon.primer-size", amplicon.DefaultParams.PrimerSize)
	v.SetDefault("amplicon.amplicon-size", amplicon.DefaultParams.AmpliconSize)
	v.SetDefault("amplicon.displacement-steps", amplicon.DefaultParams.DisplacementSteps)
	v.SetDefault("amplicon.exclude-by-identity", false)

	v.SetDefault("screen.target", "664c")
	v.SetDefault("screen.min-reliability", "medium")
	v.SetDefault("screen.min-spacing", spacing.DefaultPipelineSpacing)
	v.SetDefault("screen.max-markers", rank.DefaultMaxMarkers)

	v.SetDefault("space.min-spacing", spacing.DefaultStandaloneSpacing)

	v.SetDefault("output.format", "text")
	v.SetDefault("output.no-match-exit-code", 0)
}

// UseEnv turns on AMPLISCREEN_* overrides; "." and "-" in keys become "_".
func UseEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

// ReadFile merges a YAML/TOML/JSON config file into v.
func ReadFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("%w: read config %s: %v", diagnostic.ErrConfiguration, path, err)
	}
	return nil
}

// Load decodes v and validates the result.
func Load(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("%w: decode config: %v", diagnostic.ErrConfiguration, err)
	}
	return c, c.Validate()
}

// Validate checks the ranges that do not depend on a subcommand.
func (c Config) Validate() error {
	var errs []error
	if c.Workers < 0 {
		errs = append(errs, errors.New("workers must be >= 0"))
	}
	if err := c.AmpliconParams().Validate(); err != nil {
		errs = append(errs, err)
	}
	if variant.ParseReliability(c.Screen.MinReliability) == variant.ReliabilityUnknown {
		errs = append(errs, fmt.Errorf("min-reliability must be low, medium or high (got %q)", c.Screen.MinReliability))
	}
	if c.Screen.MinSpacing < 0 || c.Space.MinSpacing < 0 {
		errs = append(errs, errors.New("min-spacing must be >= 0"))
	}
	if c.Screen.MaxMarkers < 0 {
		errs = append(errs, errors.New("max-markers must be >= 0"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %v", diagnostic.ErrConfiguration, errors.Join(errs...))
	}
	return nil
}

// AmpliconParams converts the amplicon section.
func (c Config) AmpliconParams() amplicon.Params {
	p := amplicon.Params{
		PrimerSize:        c.Amplicon.PrimerSize,
		AmpliconSize:      c.Amplicon.AmpliconSize,
		DisplacementSteps: c.Amplicon.DisplacementSteps,
	}
	if c.Amplicon.ExcludeByIdentity {
		p.Exclusion = amplicon.ExcludeByIdentity
	}
	return p
}

// ScreeningOptions converts the screen section for screening.New.
func (c Config) ScreeningOptions() screening.Options {
	return screening.Options{
		TargetSample:   c.Screen.Target,
		MinReliability: variant.ParseReliability(c.Screen.MinReliability),
		MinSpacing:     c.Screen.MinSpacing,
		MaxMarkers:     c.Screen.MaxMarkers,
		Amplicon:       c.AmpliconParams(),
		Workers:        c.Workers,
	}
}
