package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rahul/planweave/internal/graph"
	"github.com/rahul/planweave/internal/plan"
)

var (
	graphStrict bool
	graphOutput string
)

var graphCmd = &cobra.Command{
	Use:   "graph <plan.json|plan.yaml>",
	Short: "Compile a workflow plan and print its execution graph",
	Long: `Graph builds the execution graph of a saved plan without calling any
model. Dropped references are listed as warnings; with --strict any
structural problem of the plan fails the command.`,
	Args: cobra.ExactArgs(1),
	RunE: runGraph,
}

func init() {
	graphCmd.Flags().BoolVar(&graphStrict, "strict", false, "fail when the plan has structural problems")
	graphCmd.Flags().StringVarP(&graphOutput, "output", "o", "text", "output format (text, json, yaml)")
	rootCmd.AddCommand(graphCmd)
}

func runGraph(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	p, err := plan.DecodePlanFile(args[0], data)
	if err != nil {
		return err
	}

	report := graph.Inspect(p)
	if err := writeReport(cmd.OutOrStdout(), report, graphOutput); err != nil {
		return err
	}

	if graphStrict {
		return p.Validate()
	}
	return nil
}

func writeReport(w io.Writer, r graph.Report, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "yaml":
		return yaml.NewEncoder(w).Encode(r)
	case "text":
		return r.WriteText(w)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
