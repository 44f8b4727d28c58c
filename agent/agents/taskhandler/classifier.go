package taskhandler

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"

	contractx "github.com/medflow-ai/appointment-agent/agent/contract"
	statex "github.com/medflow-ai/appointment-agent/agent/state"
)

// contextWindowClassifier bounds how much history rides along with the
// classification request.
const contextWindowClassifier = 5

type classifierImpl struct {
	runner compose.Runnable[map[string]any, classifierLLMOutput]
}

type classifierLLMOutput struct {
	Intent            string            `json:"intent"`
	Confidence        float64           `json:"confidence"`
	Reasoning         string            `json:"reasoning"`
	ExtractedEntities map[string]string `json:"extracted_entities,omitempty"`
}

func newClassifier(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string) (*classifierImpl, error) {
	runner, err := compileStructuredLLMGraph[classifierLLMOutput](ctx, chatModel, systemPrompt, "classifier.model_graph")
	if err != nil {
		return nil, fmt.Errorf("%w: compile classifier graph: %v", contractx.ErrModelInvoke, err)
	}
	return &classifierImpl{runner: runner}, nil
}

// Classify never returns an error: any model or parse failure degrades
// to the deterministic keyword fallback, because classification failure
// must never block the conversation.
func (c *classifierImpl) Classify(ctx context.Context, query string, history []statex.Message) contractx.Classification {
	payload := map[string]any{
		"query":   query,
		"context": summarizeHistory(history, contextWindowClassifier),
	}
	input, err := json.Marshal(payload)
	if err != nil {
		return FallbackClassify(query)
	}

	out, err := c.runner.Invoke(ctx, map[string]any{
		"input": string(input),
	})
	if err != nil {
		log.Debug().Err(err).Msg("classifier model call failed, using keyword fallback")
		return FallbackClassify(query)
	}

	intent := statex.Intent(strings.TrimSpace(out.Intent))
	if !knownIntent(intent) {
		log.Debug().Str("intent", out.Intent).Msg("classifier returned unknown intent, using keyword fallback")
		return FallbackClassify(query)
	}

	confidence := out.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return contractx.Classification{
		Intent:            intent,
		Confidence:        confidence,
		Reasoning:         strings.TrimSpace(out.Reasoning),
		ExtractedEntities: out.ExtractedEntities,
	}
}

func knownIntent(intent statex.Intent) bool {
	switch intent {
	case statex.IntentCheckAvailability,
		statex.IntentBookAppointment,
		statex.IntentCancelAppointment,
		statex.IntentReschedule,
		statex.IntentGeneralInquiry,
		statex.IntentGreeting:
		return true
	}
	return false
}

func summarizeHistory(history []statex.Message, window int) []map[string]string {
	if len(history) > window {
		history = history[len(history)-window:]
	}
	out := make([]map[string]string, 0, len(history))
	for _, m := range history {
		out = append(out, map[string]string{
			"role":    string(m.Role),
			"content": m.Content,
		})
	}
	return out
}
