package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rahul/planweave/internal/agent"
)

var runOutput string

var runCmd = &cobra.Command{
	Use:   "run <task>",
	Short: "Analyze, plan and execute one task",
	Long: `Run sends the task through analysis, planning and graph execution and
prints the aggregated result. When a completion call fails the partial
result is still printed and the command exits with an error.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTask,
}

func init() {
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "text", "output format (text, json, yaml)")
	rootCmd.AddCommand(runCmd)
}

func runTask(cmd *cobra.Command, args []string) error {
	switch runOutput {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("unknown output format %q", runOutput)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg, os.Stderr)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orch, err := newOrchestrator(ctx, cfg, logger)
	if err != nil {
		return err
	}

	res, runErr := orch.Run(ctx, strings.Join(args, " "))
	if res != nil {
		if err := writeResult(cmd.OutOrStdout(), res, runOutput); err != nil {
			return err
		}
	}
	return runErr
}

func writeResult(w io.Writer, res *agent.Result, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return err
		}
		return enc.Close()
	default:
		_, err := fmt.Fprintln(w, agent.Summarize(res))
		return err
	}
}
