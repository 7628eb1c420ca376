package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rahul/planweave/internal/agent"
	"github.com/rahul/planweave/internal/api"
	"github.com/rahul/planweave/internal/gateway"
	"github.com/rahul/planweave/internal/observability"
	"github.com/rahul/planweave/internal/store"
	"github.com/rahul/planweave/pkg/config"
)

var (
	serveAddr     string
	serveNoStatus bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API, chat gateways and the task scheduler",
	Long: `Serve runs until SIGINT or SIGTERM:

  - the HTTP API (POST /api/v1/runs, POST /api/v1/graphs, GET /health)
  - every enabled chat gateway (telegram, discord)
  - the scheduler for requests saved with /schedule

On a terminal a live status line is drawn under the banner.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
	serveCmd.Flags().BoolVar(&serveNoStatus, "no-status", false, "disable the live status line")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	dashboard := !serveNoStatus && observability.IsInteractive()
	var out io.Writer = os.Stderr
	if dashboard {
		observability.PrintBanner()
		observability.InitializeTerminal()
		defer observability.CleanupTerminal()
		// Route all log output through the terminal mutex so it never
		// interrupts the status line's cursor save/restore sequence.
		out = observability.NewTermWriter()
		log.SetOutput(out)
	}
	logger := newLogger(cfg, out)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orch, err := newOrchestrator(ctx, cfg, logger)
	if err != nil {
		return err
	}

	tasks, err := store.NewTaskStore(cfg.Memory.Path)
	if err != nil {
		return fmt.Errorf("opening task store: %w", err)
	}
	defer tasks.Close()

	handler := gateway.NewHandler(orch, tasks, logger)
	messengers, err := startGateways(cfg, handler, logger)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	srv := api.NewServer(orch, api.WithLogger(logger))
	g.Go(func() error {
		return srv.ListenAndServe(ctx, cfg.Server.Addr)
	})

	for name, m := range messengers {
		g.Go(func() error {
			if err := m.Start(ctx); err != nil {
				return fmt.Errorf("%s gateway: %w", name, err)
			}
			return nil
		})
	}

	if len(messengers) > 0 {
		scheduler := agent.NewScheduler(orch, tasks, messengers, logger)
		g.Go(func() error {
			return scheduler.Start(ctx)
		})
	} else {
		logger.Slog().Info("no chat gateway enabled, scheduler not started")
	}

	g.Go(func() error {
		tick(ctx, 30*time.Second, func() {
			observability.Heartbeat()
			logger.LogHeartbeat(ctx)
		})
		return nil
	})
	if dashboard {
		g.Go(func() error {
			tick(ctx, time.Second, observability.PrintLiveStatus)
			return nil
		})
	}

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	logger.Slog().Info("shut down")
	return err
}

// startGateways connects every enabled gateway, keyed by platform name.
func startGateways(cfg *config.Config, handler *gateway.Handler, logger *observability.Logger) (gateway.Multi, error) {
	messengers := gateway.Multi{}

	if tg, ok := cfg.GetTelegramConfig(); ok {
		m, err := gateway.NewTelegramGateway(tg.Token, handler, logger)
		if err != nil {
			return nil, fmt.Errorf("telegram gateway: %w", err)
		}
		messengers[gateway.PlatformTelegram] = m
	}
	if dc, ok := cfg.GetDiscordConfig(); ok {
		m, err := gateway.NewDiscordGateway(dc.Token, handler, logger)
		if err != nil {
			return nil, fmt.Errorf("discord gateway: %w", err)
		}
		messengers[gateway.PlatformDiscord] = m
	}
	return messengers, nil
}

func tick(ctx context.Context, every time.Duration, fn func()) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}
