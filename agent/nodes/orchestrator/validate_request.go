package orchestratornode

import (
	statex "github.com/medflow-ai/appointment-agent/agent/state"
)

// ValidateRequest is the graph entry node. Malformed states are the only
// thing that fails a turn; everything past this node degrades instead of
// erroring.
func ValidateRequest(st *statex.ConversationState) (*GraphState, error) {
	if err := st.Validate(); err != nil {
		return nil, err
	}
	return &GraphState{State: st}, nil
}
