package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/rahul/planweave/internal/agent"
	"github.com/rahul/planweave/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve run_task and build_graph as MCP tools over stdio",
	Long: `MCP serves the Model Context Protocol on stdin and stdout. Without an
enabled provider only build_graph is offered. Logs go to stderr.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg, os.Stderr)

	var runner agent.Runner
	orch, err := newOrchestrator(cmd.Context(), cfg, logger)
	if err != nil {
		logger.Slog().Warn("run_task disabled", "error", err)
	} else {
		runner = orch
	}

	return mcpserver.NewServer(runner, appVersion).ServeStdio()
}
