package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the refdoc configuration
type Config struct {
	SchemaDir string `mapstructure:"schema_dir"`
	Output    string `mapstructure:"output"`

	Profile       ProfileConfig `mapstructure:"profile"`
	Normative     bool          `mapstructure:"normative"`
	CombineArrays bool          `mapstructure:"combine_multiple_types"`

	OmitVersionInHeaders bool `mapstructure:"omit_version_in_headers"`

	// CommonObjects extracts shared objects into their own sections
	// instead of inlining them at every reference site.
	CommonObjects bool `mapstructure:"common_objects"`

	Excludes   ExcludeConfig `mapstructure:"excludes"`
	Supplement string        `mapstructure:"supplement"`

	UnitsTranslation map[string]string `mapstructure:"units_translation"`
}

// ProfileConfig represents profile filtering configuration
type ProfileConfig struct {
	Path string `mapstructure:"path"`
	Mode string `mapstructure:"mode"`
}

// ExcludeConfig represents content exclusion configuration
type ExcludeConfig struct {
	Properties         []string `mapstructure:"properties"`
	PropertiesByMatch  []string `mapstructure:"properties_by_match"`
	Annotations        []string `mapstructure:"annotations"`
	AnnotationsByMatch []string `mapstructure:"annotations_by_match"`
	Schemas            []string `mapstructure:"schemas"`
	SchemasByMatch     []string `mapstructure:"schemas_by_match"`
}

// Modes a profile can run in. ModeOff ignores the profile, ModeNormal
// annotates every property, ModeTerse drops properties the profile
// does not name.
const (
	ModeOff    = "off"
	ModeNormal = "normal"
	ModeTerse  = "terse"
)

// Load loads the configuration from refdoc.yml or refdoc.yaml
func Load(path string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("schema_dir", "schemas")
	v.SetDefault("output", "output.md")
	v.SetDefault("profile.mode", ModeOff)
	v.SetDefault("combine_multiple_types", true)
	v.SetDefault("common_objects", true)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("refdoc")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Enable environment variable support
	v.SetEnvPrefix("REFDOC")
	v.AutomaticEnv()

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if path != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Paths in the file are relative to the file itself
	if file := v.ConfigFileUsed(); file != "" {
		base := filepath.Dir(file)
		config.SchemaDir = resolvePath(base, config.SchemaDir)
		config.Profile.Path = resolvePath(base, config.Profile.Path)
		config.Supplement = resolvePath(base, config.Supplement)
	}

	// Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func resolvePath(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	switch cfg.Profile.Mode {
	case ModeOff, ModeNormal, ModeTerse:
	default:
		return fmt.Errorf("profile.mode must be one of off, normal, terse, got: %s", cfg.Profile.Mode)
	}
	if cfg.Profile.Mode != ModeOff && cfg.Profile.Path == "" {
		return fmt.Errorf("profile.mode %q requires profile.path", cfg.Profile.Mode)
	}
	if cfg.SchemaDir == "" {
		return fmt.Errorf("schema_dir must not be empty")
	}
	if info, err := os.Stat(cfg.SchemaDir); err == nil && !info.IsDir() {
		return fmt.Errorf("schema_dir is not a directory: %s", cfg.SchemaDir)
	}
	return nil
}
