package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/viper"

	"github.com/rahul/planweave/internal/agent"
	"github.com/rahul/planweave/internal/governance"
	"github.com/rahul/planweave/internal/llm"
	"github.com/rahul/planweave/internal/observability"
	"github.com/rahul/planweave/pkg/config"
)

func loadConfig() (*config.Config, error) {
	return config.NewLoaderWithViper(viper.GetViper()).WithConfigFile(cfgFile).Load()
}

// newLogger writes to out; commands that use stdout as a protocol channel
// pass stderr.
func newLogger(cfg *config.Config, out io.Writer) *observability.Logger {
	return observability.NewLogger(observability.Config{
		Level:          cfg.Log.Level,
		Format:         cfg.Log.Format,
		Output:         out,
		TranscriptPath: cfg.Log.TranscriptPath,
	})
}

// newOrchestrator wires the pipeline for the default provider of cfg.
func newOrchestrator(ctx context.Context, cfg *config.Config, logger *observability.Logger) (*agent.Orchestrator, error) {
	model, provider, err := llm.FromConfig(ctx, cfg, llm.WithRecorder(logger))
	if err != nil {
		return nil, err
	}

	prompts, err := agent.NewPromptManager(cfg.Prompts.Dir)
	if err != nil {
		return nil, fmt.Errorf("loading prompts: %w", err)
	}
	if len(prompts.Overridden) > 0 {
		logger.Slog().Info("prompt overrides loaded", "dir", cfg.Prompts.Dir, "templates", prompts.Overridden)
	}

	policy, err := governance.FromRules(cfg.Policy.DenyTypes, cfg.Policy.DenyParams)
	if err != nil {
		return nil, fmt.Errorf("loading policy: %w", err)
	}

	logger.Slog().Debug("pipeline ready", "provider", provider, "max_steps", cfg.Execution.MaxSteps)

	return agent.NewOrchestrator(agent.Options{
		Completer: model,
		Prompts:   prompts,
		Policy:    policy,
		Logger:    logger,
		MaxSteps:  cfg.Execution.MaxSteps,
	}), nil
}
