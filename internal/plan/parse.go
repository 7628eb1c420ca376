package plan

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrMalformed marks a completion response that could not be decoded into
// the requested structure.
var ErrMalformed = errors.New("malformed response")

var fencedObject = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*\\n?(\\{.*?\\})\\s*\\n?```")

// StripFences removes a leading code-fence line (```json or ```) and a
// trailing ``` marker, then trims surrounding whitespace.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			s = s[i+1:]
		} else {
			s = strings.TrimPrefix(s, "```json")
			s = strings.TrimPrefix(s, "```")
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// candidates returns the decodable spans of a response, most literal first.
func candidates(raw string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		out = append(out, s)
	}

	add(StripFences(raw))
	if m := fencedObject.FindStringSubmatch(raw); len(m) >= 2 {
		add(m[1])
	}
	if start, end := strings.IndexByte(raw, '{'), strings.LastIndexByte(raw, '}'); start >= 0 && end > start {
		add(raw[start : end+1])
	}
	return out
}

func decode[T any](raw string) (*T, error) {
	var lastErr error
	for _, c := range candidates(raw) {
		v := new(T)
		if err := json.Unmarshal([]byte(c), v); err != nil {
			lastErr = err
			continue
		}
		return v, nil
	}
	if lastErr == nil {
		lastErr = errors.New("no JSON object found")
	}
	return nil, fmt.Errorf("%w: %v", ErrMalformed, lastErr)
}

// DecodeAnalysis parses a completion response into a TaskAnalysis. It
// returns an error wrapping ErrMalformed when nothing usable is found.
func DecodeAnalysis(raw string) (*TaskAnalysis, error) {
	a, err := decode[TaskAnalysis](raw)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(a.TaskType) == "" && len(a.RequiredSteps) == 0 {
		return nil, fmt.Errorf("%w: analysis has neither task_type nor required_steps", ErrMalformed)
	}
	if a.Complexity == "" {
		a.Complexity = ComplexityMedium
	}
	if a.RequiredSteps == nil {
		a.RequiredSteps = []string{}
	}
	if a.Dependencies == nil {
		a.Dependencies = []string{}
	}
	return a, nil
}

// DecodePlan parses a completion response into a WorkflowPlan. It returns
// an error wrapping ErrMalformed when the response has no steps.
func DecodePlan(raw string) (*WorkflowPlan, error) {
	p, err := decode[WorkflowPlan](raw)
	if err != nil {
		return nil, err
	}
	if len(p.Steps) == 0 {
		return nil, fmt.Errorf("%w: plan has no steps", ErrMalformed)
	}
	p.normalize()
	return p, nil
}

func (p *WorkflowPlan) normalize() {
	for i := range p.Steps {
		s := &p.Steps[i]
		if s.Type == "" {
			s.Type = KindDataProcessing
		}
		if s.Params == nil {
			s.Params = map[string]any{}
		}
		if s.NextSteps == nil {
			s.NextSteps = []string{}
		}
	}
}
