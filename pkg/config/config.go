package config

import (
	"sort"
	"time"
)

type Config struct {
	App       AppConfig                 `mapstructure:"app" json:"app"`
	Gateways  map[string]GatewayConfig  `mapstructure:"gateways" json:"gateways"`
	Providers map[string]ProviderConfig `mapstructure:"providers" json:"providers"`
	Execution ExecutionConfig           `mapstructure:"execution" json:"execution"`
	Log       LogConfig                 `mapstructure:"log" json:"log"`
	Prompts   PromptsConfig             `mapstructure:"prompts" json:"prompts"`
	Policy    PolicyConfig              `mapstructure:"policy" json:"policy"`
	Memory    MemoryConfig              `mapstructure:"memory" json:"memory"`
	Server    ServerConfig              `mapstructure:"server" json:"server"`
}

type AppConfig struct {
	Name string `mapstructure:"name" json:"name"`
}

type GatewayConfig struct {
	Token   string `mapstructure:"token" json:"token"`
	Enabled bool   `mapstructure:"enabled" json:"enabled"`
}

type ProviderConfig struct {
	APIKey      string  `mapstructure:"api_key" json:"api_key"`
	Model       string  `mapstructure:"model" json:"model"`
	BaseURL     string  `mapstructure:"base_url" json:"base_url,omitempty"`
	Enabled     bool    `mapstructure:"enabled" json:"enabled"`
	Temperature float64 `mapstructure:"temperature" json:"temperature,omitempty"`
	TopP        float64 `mapstructure:"top_p" json:"top_p,omitempty"`
}

// ExecutionConfig bounds a single run.
type ExecutionConfig struct {
	// CallTimeout bounds each completion call.
	CallTimeout time.Duration `mapstructure:"call_timeout" json:"call_timeout"`
	// MaxSteps caps the steps executed in one graph walk.
	MaxSteps int `mapstructure:"max_steps" json:"max_steps"`
}

type LogConfig struct {
	Level          string `mapstructure:"level" json:"level"`
	Format         string `mapstructure:"format" json:"format"` // auto, text, json
	TranscriptPath string `mapstructure:"transcript_path" json:"transcript_path"`
}

type PromptsConfig struct {
	// Dir holds <name>.tmpl overrides of the built-in prompts. Optional.
	Dir string `mapstructure:"dir" json:"dir"`
}

type PolicyConfig struct {
	DenyTypes  []string `mapstructure:"deny_types" json:"deny_types"`
	DenyParams []string `mapstructure:"deny_params" json:"deny_params"` // regexes
}

type MemoryConfig struct {
	Path string `mapstructure:"path" json:"path"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr" json:"addr"`
}

// GetDefaultProvider returns the first enabled provider in name order.
func (c *Config) GetDefaultProvider() (string, ProviderConfig) {
	names := make([]string, 0, len(c.Providers))
	for name := range c.Providers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if p := c.Providers[name]; p.Enabled {
			return name, p
		}
	}
	return "", ProviderConfig{}
}

// GetGatewayConfig returns the named gateway config if it is enabled and
// has a token.
func (c *Config) GetGatewayConfig(name string) (GatewayConfig, bool) {
	gw, ok := c.Gateways[name]
	if ok && gw.Enabled && gw.Token != "" {
		return gw, true
	}
	return GatewayConfig{}, false
}

// GetTelegramConfig returns telegram config if enabled
func (c *Config) GetTelegramConfig() (GatewayConfig, bool) {
	return c.GetGatewayConfig("telegram")
}

// GetDiscordConfig returns discord config if enabled
func (c *Config) GetDiscordConfig() (GatewayConfig, bool) {
	return c.GetGatewayConfig("discord")
}
