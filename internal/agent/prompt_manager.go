package agent

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

//go:embed prompts/*.tmpl
var defaultPrompts embed.FS

// Prompt names. Each has a built-in template prompts/<name>.tmpl.
const (
	PromptAnalysis       = "analysis"
	PromptPlanning       = "planning"
	PromptDataProcessing = "data_processing"
	PromptTextAnalysis   = "text_analysis"
	PromptGeneric        = "generic"
)

var promptNames = []string{PromptAnalysis, PromptPlanning, PromptDataProcessing, PromptTextAnalysis, PromptGeneric}

// PromptManager renders the stage and step prompts. Built-in templates can
// be overridden by <name>.tmpl files in Directory.
type PromptManager struct {
	Directory string
	templates map[string]*template.Template
	// Overridden lists the prompt names loaded from Directory.
	Overridden []string
}

// NewPromptManager loads the built-in prompts, then any overrides from dir.
// An empty dir means built-ins only.
func NewPromptManager(dir string) (*PromptManager, error) {
	pm := &PromptManager{Directory: dir, templates: make(map[string]*template.Template)}

	for _, name := range promptNames {
		data, err := defaultPrompts.ReadFile("prompts/" + name + ".tmpl")
		if err != nil {
			return nil, fmt.Errorf("reading built-in prompt %s: %w", name, err)
		}
		if err := pm.parse(name, string(data)); err != nil {
			return nil, err
		}
	}

	if dir == "" {
		return pm, nil
	}
	for _, name := range promptNames {
		path := filepath.Join(dir, name+".tmpl")
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read prompt file %s: %w", path, err)
		}
		if err := pm.parse(name, string(data)); err != nil {
			return nil, err
		}
		pm.Overridden = append(pm.Overridden, name)
	}
	return pm, nil
}

// DefaultPromptManager returns the built-in prompts. The embedded templates
// are fixed at build time, so a failure here is a programming error.
func DefaultPromptManager() *PromptManager {
	pm, err := NewPromptManager("")
	if err != nil {
		panic(err)
	}
	return pm
}

func (pm *PromptManager) parse(name, text string) error {
	tmpl, err := template.New(name).Option("missingkey=zero").Parse(text)
	if err != nil {
		return fmt.Errorf("parsing prompt %s: %w", name, err)
	}
	pm.templates[name] = tmpl
	return nil
}

// Render executes the named prompt with data.
func (pm *PromptManager) Render(name string, data any) (string, error) {
	tmpl, ok := pm.templates[name]
	if !ok {
		return "", fmt.Errorf("unknown prompt %q", name)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("rendering prompt %s: %w", name, err)
	}
	return strings.TrimSpace(b.String()), nil
}

// AnalysisPrompt is the data of the analysis prompt.
type AnalysisPrompt struct {
	UserInput string
}

// PlanningPrompt is the data of the planning prompt.
type PlanningPrompt struct {
	// Analysis is the indented JSON of the task analysis.
	Analysis string
	Kinds    string
}

// StepPrompt is the data of the step prompts.
type StepPrompt struct {
	StepID      string
	Name        string
	Description string
	UserInput   string
	// Params is the JSON of the step params.
	Params string
}
