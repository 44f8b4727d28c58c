package contract

import (
	statex "github.com/medflow-ai/appointment-agent/agent/state"
)

// Classification is the classifier's verdict for one user utterance.
type Classification struct {
	Intent            statex.Intent     `json:"intent"`
	Confidence        float64           `json:"confidence"`
	Reasoning         string            `json:"reasoning"`
	ExtractedEntities map[string]string `json:"extracted_entities,omitempty"`
}

type ToolRequest struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

type ToolResult struct {
	Tool   string `json:"tool"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}
