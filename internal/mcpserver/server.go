// Package mcpserver exposes task runs and graph inspection as MCP tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rahul/planweave/internal/agent"
	"github.com/rahul/planweave/internal/graph"
	"github.com/rahul/planweave/internal/plan"
)

type Server struct {
	mcpServer *server.MCPServer
	runner    agent.Runner
}

// NewServer registers the tools. runner may be nil, in which case only
// build_graph is offered.
func NewServer(runner agent.Runner, version string) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"planweave",
			version,
			server.WithToolCapabilities(true),
		),
		runner: runner,
	}

	s.registerTools()
	return s
}

func (s *Server) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio serves MCP over stdin and stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	if s.runner != nil {
		s.mcpServer.AddTool(
			mcp.NewTool(
				"run_task",
				mcp.WithDescription("Analyze a task, plan a workflow for it and execute the workflow. Returns the aggregated run result as JSON."),
				mcp.WithString("task", mcp.Required(), mcp.Description("The task in natural language")),
			),
			s.handleRunTask,
		)
	}

	s.mcpServer.AddTool(
		mcp.NewTool(
			"build_graph",
			mcp.WithDescription("Compile a workflow plan into its execution graph without running it."),
			mcp.WithString("plan", mcp.Required(), mcp.Description("The workflow plan as JSON")),
			mcp.WithBoolean("strict", mcp.Description("Fail when the plan has structural problems")),
		),
		s.handleBuildGraph,
	)
}

func (s *Server) handleRunTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	task, err := request.RequireString("task")
	if err != nil || task == "" {
		return mcp.NewToolResultError("Missing required parameter: task"), nil
	}

	res, err := s.runner.Run(ctx, task)
	if err != nil {
		msg := fmt.Sprintf("Run failed: %v", err)
		if res != nil {
			partial, _ := json.Marshal(res)
			msg += "\npartial result: " + string(partial)
		}
		return mcp.NewToolResultError(msg), nil
	}

	jsonBytes, _ := json.Marshal(res)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleBuildGraph(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := request.RequireString("plan")
	if err != nil || raw == "" {
		return mcp.NewToolResultError("Missing required parameter: plan"), nil
	}

	p, err := plan.DecodePlanFile("plan.json", []byte(raw))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid plan: %v", err)), nil
	}
	if request.GetBool("strict", false) {
		if err := p.Validate(); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Plan has problems: %v", err)), nil
		}
	}

	jsonBytes, _ := json.Marshal(graph.Inspect(p))
	return mcp.NewToolResultText(string(jsonBytes)), nil
}
