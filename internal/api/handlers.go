package api

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/rahul/planweave/internal/agent"
	"github.com/rahul/planweave/internal/core"
	"github.com/rahul/planweave/internal/graph"
	"github.com/rahul/planweave/internal/plan"
)

// RunRequest is the body of POST /api/v1/runs.
type RunRequest struct {
	Input string `json:"input"`
}

// RunErrorResponse carries the partial result of a failed run.
type RunErrorResponse struct {
	Error  string        `json:"error"`
	Code   string        `json:"code,omitempty"`
	Result *agent.Result `json:"result,omitempty"`
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if s.runner == nil {
		respondError(w, http.StatusServiceUnavailable, "no completion provider configured")
		return
	}

	var req RunRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Input) == "" {
		respondJSON(w, http.StatusUnprocessableEntity, RunErrorResponse{
			Error: "input is empty",
			Code:  core.CodeEmptyInput,
		})
		return
	}

	res, err := s.runner.Run(r.Context(), req.Input)
	if err != nil {
		s.logger.Error("run failed", "error", err)
		respondJSON(w, statusFor(err), RunErrorResponse{
			Error:  errorMessage(err),
			Code:   codeOf(err),
			Result: res,
		})
		return
	}

	respondJSON(w, http.StatusOK, res)
}

// handleGraph compiles a plan posted as JSON, or YAML with a yaml content
// type, and reports the graph. With ?strict=true a plan with problems is
// rejected.
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	name := "plan.json"
	if mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mt == "application/yaml" || mt == "application/x-yaml" || mt == "text/yaml" {
		name = "plan.yaml"
	}

	p, err := plan.DecodePlanFile(name, body)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	strict, _ := strconv.ParseBool(r.URL.Query().Get("strict"))
	if strict {
		if err := p.Validate(); err != nil {
			respondJSON(w, statusFor(err), map[string]any{
				"error":    "plan has problems",
				"problems": p.Problems(),
			})
			return
		}
	}

	respondJSON(w, http.StatusOK, graph.Inspect(p))
}
