package plan

import (
	"encoding/json"
	"strings"
)

// StepKind is the closed set of step types a plan may use.
type StepKind string

const (
	KindDataProcessing StepKind = "data_processing"
	KindAPICall        StepKind = "api_call"
	KindFileOperation  StepKind = "file_operation"
	KindTextAnalysis   StepKind = "text_analysis"
	KindGeneric        StepKind = "generic"
)

// Kinds lists every StepKind in declaration order.
var Kinds = []StepKind{KindDataProcessing, KindAPICall, KindFileOperation, KindTextAnalysis, KindGeneric}

var kindAliases = map[string]StepKind{
	"data_processing": KindDataProcessing,
	"dataprocessing":  KindDataProcessing,
	"data":            KindDataProcessing,
	"数据处理":            KindDataProcessing,
	"api_call":        KindAPICall,
	"apicall":         KindAPICall,
	"api":             KindAPICall,
	"api调用":           KindAPICall,
	"file_operation":  KindFileOperation,
	"fileoperation":   KindFileOperation,
	"file":            KindFileOperation,
	"文件操作":            KindFileOperation,
	"text_analysis":   KindTextAnalysis,
	"textanalysis":    KindTextAnalysis,
	"文本分析":            KindTextAnalysis,
	"generic":         KindGeneric,
}

// ParseStepKind maps a textual type onto a StepKind. Unrecognized text maps
// to KindGeneric; empty text maps to KindDataProcessing.
func ParseStepKind(s string) StepKind {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return KindDataProcessing
	}
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	if k, ok := kindAliases[key]; ok {
		return k
	}
	if k, ok := kindAliases[strings.ReplaceAll(key, "_", "")]; ok {
		return k
	}
	return KindGeneric
}

// UnmarshalJSON accepts any JSON value. Strings and null go through
// ParseStepKind; numbers, objects and arrays become generic.
func (k *StepKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*k = KindGeneric
		return nil
	}
	*k = ParseStepKind(s)
	return nil
}

// IsStub reports whether the kind is a placeholder with no side effects.
func (k StepKind) IsStub() bool {
	return k == KindAPICall || k == KindFileOperation
}
