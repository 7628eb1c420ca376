package agent

import (
	"fmt"
	"strings"
)

const maxSummaryStepOutput = 400

// Summarize renders a run result as plain text for chat replies and the
// text CLI output. Step outputs are listed in execution order.
func Summarize(res *Result) string {
	if res == nil {
		return "No result."
	}

	var b strings.Builder
	name := "workflow"
	if res.WorkflowPlan != nil && res.WorkflowPlan.WorkflowName != "" {
		name = res.WorkflowPlan.WorkflowName
	}
	fmt.Fprintf(&b, "%s: %d step(s) executed, halt=%s\n", name, len(res.StepOrder), res.Halt)

	if a := res.TaskAnalysis; a != nil {
		fmt.Fprintf(&b, "Task: %s (%s)\n", a.TaskType, a.Complexity)
	}

	for i, id := range res.StepOrder {
		fmt.Fprintf(&b, "\n%d. [%s] %s", i+1, id, truncate(res.StepResults[id], maxSummaryStepOutput))
	}
	if len(res.StepOrder) > 0 {
		b.WriteString("\n")
	}

	for _, w := range res.Warnings {
		fmt.Fprintf(&b, "\nwarning: %s", w)
	}
	if len(res.Warnings) > 0 {
		b.WriteString("\n")
	}

	if res.FinalResult != "" {
		fmt.Fprintf(&b, "\nResult:\n%s", res.FinalResult)
	}
	return strings.TrimSpace(b.String())
}

func truncate(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n]) + "..."
}
