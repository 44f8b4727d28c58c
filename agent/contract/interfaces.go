package contract

import (
	"context"

	statex "github.com/medflow-ai/appointment-agent/agent/state"
)

// Classifier maps a user utterance (plus recent context) to an intent.
// Implementations must not return an error: any internal failure degrades
// to a deterministic fallback so classification never blocks a turn.
type Classifier interface {
	Classify(ctx context.Context, query string, history []statex.Message) Classification
}

// Handler is a task-specific agent invoked by the orchestrator.
type Handler interface {
	Name() statex.AgentName
	Process(ctx context.Context, st *statex.ConversationState) (string, error)
}

// Registry exposes the classifier and the three task handlers.
type Registry interface {
	Classifier() Classifier
	Availability() Handler
	Booking() Handler
	General() Handler
}
