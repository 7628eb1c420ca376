package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, "planweave", cfg.App.Name)
	assert.Equal(t, 60*time.Second, cfg.Execution.CallTimeout)
	assert.Equal(t, 100, cfg.Execution.MaxSteps)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "auto", cfg.Log.Format)
	assert.Equal(t, filepath.Join("logs", "llm.jsonl"), cfg.Log.TranscriptPath)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Empty(t, cfg.Providers)
}

func TestLoader_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "planweave.yaml")
	content := `
providers:
  openai:
    api_key: sk-test
    model: gpt-4o-mini
    enabled: true
  gemini:
    api_key: g-test
    model: gemini-1.5-flash
    enabled: false
    temperature: 0.2
execution:
  call_timeout: 5s
  max_steps: 7
gateways:
  telegram:
    token: tg
    enabled: true
  discord:
    token: ""
    enabled: true
policy:
  deny_types: [api_call]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := NewLoader().WithConfigFile(path).Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.Execution.CallTimeout)
	assert.Equal(t, 7, cfg.Execution.MaxSteps)
	assert.Equal(t, []string{"api_call"}, cfg.Policy.DenyTypes)

	openai := cfg.Providers["openai"]
	assert.Equal(t, "sk-test", openai.APIKey)
	assert.Equal(t, DefaultTemperature, openai.Temperature)
	assert.Equal(t, DefaultTopP, openai.TopP)
	assert.Equal(t, 0.2, cfg.Providers["gemini"].Temperature)

	_, ok := cfg.GetTelegramConfig()
	assert.True(t, ok)
	_, ok = cfg.GetDiscordConfig()
	assert.False(t, ok, "discord has no token")
}

func TestLoader_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PLANWEAVE_EXECUTION_MAX_STEPS", "3")
	t.Setenv("PLANWEAVE_SERVER_ADDR", "127.0.0.1:9999")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Execution.MaxSteps)
	assert.Equal(t, "127.0.0.1:9999", cfg.Server.Addr)
}

func TestLoader_MissingExplicitFile(t *testing.T) {
	_, err := NewLoader().WithConfigFile(filepath.Join(t.TempDir(), "nope.yaml")).Load()
	assert.Error(t, err)
}

func TestGetDefaultProvider_NameOrder(t *testing.T) {
	cfg := &Config{Providers: map[string]ProviderConfig{
		"openai":   {Model: "a", Enabled: true},
		"gemini":   {Model: "b", Enabled: true},
		"disabled": {Model: "c"},
	}}

	for i := 0; i < 20; i++ {
		name, p := cfg.GetDefaultProvider()
		assert.Equal(t, "gemini", name)
		assert.Equal(t, "b", p.Model)
	}

	name, _ := (&Config{}).GetDefaultProvider()
	assert.Empty(t, name)
}
