package orchestratornode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/medflow-ai/appointment-agent/agent/contract"
	statex "github.com/medflow-ai/appointment-agent/agent/state"
)

// contextWindow bounds the history handed to the classifier.
const contextWindow = 5

// ClassifyIntent determines what the latest user message asks for and
// advances the step counter. A turn with no user message at all is
// treated as a greeting-style general inquiry rather than an error.
func ClassifyIntent(ctx context.Context, in *GraphState, classifier contractx.Classifier) (*GraphState, error) {
	if in == nil || in.State == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrMalformedState)
	}
	st := in.State

	query, ok := st.LatestUserQuery()
	if !ok {
		in.Classification = contractx.Classification{
			Intent:     statex.IntentGeneralInquiry,
			Confidence: 1.0,
			Reasoning:  "no user message in history",
		}
		query = "Hello"
	} else {
		in.Classification = classifier.Classify(ctx, query, st.LastMessages(contextWindow))
	}

	st.CurrentIntent = in.Classification.Intent
	st.CurrentQuery = query
	st.StepCount++

	log.Debug().
		Str("intent", string(st.CurrentIntent)).
		Float64("confidence", in.Classification.Confidence).
		Int("step_count", st.StepCount).
		Msg("intent classified")

	return in, nil
}
