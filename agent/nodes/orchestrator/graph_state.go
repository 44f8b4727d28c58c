// Package orchestratornode holds the pure node functions of the
// conversation graph: validate, classify, route, dispatch, finalize.
// Keeping them free of graph plumbing makes each one independently
// testable.
package orchestratornode

import (
	contractx "github.com/medflow-ai/appointment-agent/agent/contract"
	statex "github.com/medflow-ai/appointment-agent/agent/state"
)

// GraphState threads one conversation turn through the node chain. State
// points at the caller's ConversationState and is mutated in place;
// Route and Classification are per-turn scratch.
type GraphState struct {
	State *statex.ConversationState

	Classification contractx.Classification
	Route          statex.AgentName

	Response string
}
