package plan

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DecodePlanFile decodes a plan stored as JSON or YAML, picked by file
// extension. Unlike DecodePlan it does not search prose for an object.
func DecodePlanFile(name string, data []byte) (*WorkflowPlan, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		converted, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("convert %s: %w", name, err)
		}
		data = converted
	}

	var p WorkflowPlan
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	p.normalize()
	return &p, nil
}
