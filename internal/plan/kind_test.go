package plan

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStepKind(t *testing.T) {
	tests := map[string]StepKind{
		"data_processing": KindDataProcessing,
		"Data Processing": KindDataProcessing,
		"数据处理":            KindDataProcessing,
		"":                KindDataProcessing,
		"api_call":        KindAPICall,
		"API Call":        KindAPICall,
		"API调用":           KindAPICall,
		"file_operation":  KindFileOperation,
		"file-operation":  KindFileOperation,
		"文件操作":            KindFileOperation,
		"text_analysis":   KindTextAnalysis,
		"TextAnalysis":    KindTextAnalysis,
		"文本分析":            KindTextAnalysis,
		"generic":         KindGeneric,
		"image_rendering": KindGeneric,
		"图像处理":            KindGeneric,
	}

	for in, want := range tests {
		assert.Equal(t, want, ParseStepKind(in), "ParseStepKind(%q)", in)
	}
}

func TestStepKind_UnmarshalJSON(t *testing.T) {
	var s struct {
		A StepKind `json:"a"`
		B StepKind `json:"b"`
		C StepKind `json:"c"`
		D StepKind `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"api_call","b":42,"c":null,"d":"weird"}`), &s))

	assert.Equal(t, KindAPICall, s.A)
	assert.Equal(t, KindGeneric, s.B)
	assert.Equal(t, KindDataProcessing, s.C)
	assert.Equal(t, KindGeneric, s.D)
}

func TestStepKind_IsStub(t *testing.T) {
	for _, k := range Kinds {
		want := k == KindAPICall || k == KindFileOperation
		assert.Equal(t, want, k.IsStub(), string(k))
	}
}
