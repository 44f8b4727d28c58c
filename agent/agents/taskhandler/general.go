package taskhandler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	contractx "github.com/medflow-ai/appointment-agent/agent/contract"
	statex "github.com/medflow-ai/appointment-agent/agent/state"
)

// contextWindowGeneral is tighter than the task handlers: greetings and
// open questions rarely need more than the immediate exchange.
const contextWindowGeneral = 3

const generalFallbackReply = "Hello! I'm here to help you with doctor appointments. How can I assist you today?"

type generalHandler struct {
	runner compose.Runnable[map[string]any, *schema.Message]
}

func newGeneralHandler(ctx context.Context, chatModel model.BaseChatModel, systemPrompt string) (*generalHandler, error) {
	runner, err := compileChatGraph(ctx, chatModel, systemPrompt, "general.model_graph")
	if err != nil {
		return nil, fmt.Errorf("%w: compile general graph: %v", contractx.ErrModelInvoke, err)
	}
	return &generalHandler{runner: runner}, nil
}

func (h *generalHandler) Name() statex.AgentName { return statex.AgentGeneral }

// Process answers greetings and general questions. No tools; model
// failures degrade to a canned greeting so the turn always completes.
func (h *generalHandler) Process(ctx context.Context, st *statex.ConversationState) (string, error) {
	history := historyToSchema(st.LastMessages(contextWindowGeneral))

	msg, err := h.runner.Invoke(ctx, map[string]any{
		"current_date": time.Now().Format(clinicDateFormat),
		"patient_id":   st.PatientID,
		"history":      history,
	})
	if err != nil {
		log.Warn().Err(err).Int64("patient_id", st.PatientID).Msg("general handler degraded to canned reply")
		return generalFallbackReply, nil
	}

	reply := strings.TrimSpace(msg.Content)
	if reply == "" {
		return generalFallbackReply, nil
	}
	return reply, nil
}
