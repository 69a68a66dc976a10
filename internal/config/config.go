// Package config loads busgen settings from an optional YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"go/token"
	"strings"

	"github.com/spf13/viper"

	"github.com/roach88/busgen/internal/logging"
)

// EnvPrefix namespaces environment overrides, e.g. BUSGEN_GENERATE_PACKAGE.
const EnvPrefix = "BUSGEN"

// DefaultFile is looked up in the working directory when no file is given.
const DefaultFile = "busgen.yaml"

// Config holds the complete CLI configuration
type Config struct {
	Generate GenerateConfig `mapstructure:"generate" yaml:"generate"`
	Log      LogConfig      `mapstructure:"log"      yaml:"log"`
	Output   OutputConfig   `mapstructure:"output"   yaml:"output"`
}

// GenerateConfig controls proxy emission
type GenerateConfig struct {
	Package       string `mapstructure:"package"        yaml:"package"`
	Output        string `mapstructure:"output"         yaml:"output"`
	RuntimeImport string `mapstructure:"runtime_import" yaml:"runtime_import"`
	FileSuffix    string `mapstructure:"file_suffix"    yaml:"file_suffix"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Pretty bool   `mapstructure:"pretty" yaml:"pretty"`
}

// OutputConfig holds command output configuration
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format"`
}

// Load reads configPath, or DefaultFile if configPath is empty and it exists,
// then applies BUSGEN_* environment overrides and validates the result.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
	} else {
		v.SetConfigName(strings.TrimSuffix(DefaultFile, ".yaml"))
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file %s: %w", DefaultFile, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("generate.package", d.Generate.Package)
	v.SetDefault("generate.output", d.Generate.Output)
	v.SetDefault("generate.runtime_import", d.Generate.RuntimeImport)
	v.SetDefault("generate.file_suffix", d.Generate.FileSuffix)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.pretty", d.Log.Pretty)

	v.SetDefault("output.format", d.Output.Format)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.validateGenerate(); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Output.Format != "text" && c.Output.Format != "json" {
		return fmt.Errorf("output.format must be text or json, got %q", c.Output.Format)
	}
	return nil
}

func (c *Config) validateGenerate() error {
	pkg := c.Generate.Package
	if !token.IsIdentifier(pkg) || token.IsKeyword(pkg) {
		return fmt.Errorf("generate.package must be a Go package name, got %q", pkg)
	}
	if strings.TrimSpace(c.Generate.Output) == "" {
		return fmt.Errorf("generate.output must not be empty")
	}
	if !strings.HasSuffix(c.Generate.FileSuffix, ".go") {
		return fmt.Errorf("generate.file_suffix must end in .go, got %q", c.Generate.FileSuffix)
	}
	return nil
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Generate: GenerateConfig{
			Package:       "busproxy",
			Output:        ".",
			RuntimeImport: "github.com/roach88/busgen/proxy",
			FileSuffix:    "_proxy.go",
		},
		Log: LogConfig{
			Level:  "warn",
			Pretty: false,
		},
		Output: OutputConfig{
			Format: "text",
		},
	}
}
