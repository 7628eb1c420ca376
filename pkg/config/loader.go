package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "PLANWEAVE"

// Loader reads configuration from defaults, an optional file and the
// environment, in increasing precedence. CLI flags bound into the viper
// instance win over all of them.
type Loader struct {
	v          *viper.Viper
	configFile string
}

// NewLoader creates a loader with its own viper instance.
func NewLoader() *Loader {
	return &Loader{v: viper.New()}
}

// NewLoaderWithViper creates a loader over v, so flag bindings apply.
func NewLoaderWithViper(v *viper.Viper) *Loader {
	return &Loader{v: v}
}

// WithConfigFile sets an explicit config file path (YAML or JSON).
func (l *Loader) WithConfigFile(path string) *Loader {
	l.configFile = path
	return l
}

// Viper returns the underlying viper instance for flag binding.
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

// Load resolves the configuration. A missing config file is not an error
// unless it was named explicitly.
func (l *Loader) Load() (*Config, error) {
	l.setDefaults()

	l.v.SetEnvPrefix(envPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()

	if l.configFile != "" {
		l.v.SetConfigFile(l.configFile)
	} else {
		l.v.SetConfigName("planweave")
		l.v.SetConfigType("yaml")
		l.v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			l.v.AddConfigPath(filepath.Join(home, ".config", "planweave"))
		}
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.applyProviderDefaults()
	return &cfg, nil
}

// ConfigFile returns the config file path if one was used.
func (l *Loader) ConfigFile() string {
	return l.v.ConfigFileUsed()
}

func (l *Loader) setDefaults() {
	l.v.SetDefault("app.name", "planweave")

	l.v.SetDefault("execution.call_timeout", "60s")
	l.v.SetDefault("execution.max_steps", 100)

	l.v.SetDefault("log.level", "info")
	l.v.SetDefault("log.format", "auto")
	l.v.SetDefault("log.transcript_path", filepath.Join("logs", "llm.jsonl"))

	l.v.SetDefault("prompts.dir", "")

	l.v.SetDefault("policy.deny_types", []string{})
	l.v.SetDefault("policy.deny_params", []string{})

	l.v.SetDefault("memory.path", "planweave.db")
	l.v.SetDefault("server.addr", ":8080")
}

// Sampling defaults applied to providers that leave them unset.
const (
	DefaultTemperature = 0.65
	DefaultTopP        = 0.75
)

func (c *Config) applyProviderDefaults() {
	for name, p := range c.Providers {
		if p.Temperature == 0 {
			p.Temperature = DefaultTemperature
		}
		if p.TopP == 0 {
			p.TopP = DefaultTopP
		}
		c.Providers[name] = p
	}
}
