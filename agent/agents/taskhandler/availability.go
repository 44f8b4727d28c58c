package taskhandler

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	contractx "github.com/medflow-ai/appointment-agent/agent/contract"
	schedulex "github.com/medflow-ai/appointment-agent/agent/schedule"
	statex "github.com/medflow-ai/appointment-agent/agent/state"
	toolx "github.com/medflow-ai/appointment-agent/agent/tool"
)

// contextWindowHandler is how many trailing messages a task handler sees.
const contextWindowHandler = 5

const availabilityApology = "I'm sorry, I encountered an error checking availability: "

type availabilityHandler struct {
	runner  compose.Runnable[map[string]any, *schema.Message]
	exec    toolx.Executor
	allowed map[string]struct{}
}

func newAvailabilityHandler(
	ctx context.Context,
	chatModel model.ToolCallingChatModel,
	systemPrompt string,
	store schedulex.Store,
) (*availabilityHandler, error) {
	infos, exec := toolx.BuildForAgent(statex.AgentAvailability, store)
	bound, err := chatModel.WithTools(infos)
	if err != nil {
		return nil, fmt.Errorf("%w: bind availability tools: %v", contractx.ErrModelInvoke, err)
	}

	runner, err := compileChatGraph(ctx, bound, systemPrompt, "availability.model_graph")
	if err != nil {
		return nil, fmt.Errorf("%w: compile availability graph: %v", contractx.ErrModelInvoke, err)
	}

	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name)
	}

	return &availabilityHandler{
		runner:  runner,
		exec:    exec,
		allowed: allowedSet(names),
	}, nil
}

func (h *availabilityHandler) Name() statex.AgentName { return statex.AgentAvailability }

// Process answers an availability question via the tool loop. On model
// failure it returns an apology response alongside the error so the turn
// still terminates with something the caller can show.
func (h *availabilityHandler) Process(ctx context.Context, st *statex.ConversationState) (string, error) {
	history := historyToSchema(st.LastMessages(contextWindowHandler))

	reply, err := runToolLoop(ctx, h.runner, h.exec, h.allowed, st.PatientID, history)
	if err != nil {
		log.Error().Err(err).Int64("patient_id", st.PatientID).Msg("availability handler failed")
		return availabilityApology + err.Error(), err
	}
	return reply, nil
}
