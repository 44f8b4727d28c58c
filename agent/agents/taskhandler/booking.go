package taskhandler

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	contractx "github.com/medflow-ai/appointment-agent/agent/contract"
	promptx "github.com/medflow-ai/appointment-agent/agent/prompt"
	schedulex "github.com/medflow-ai/appointment-agent/agent/schedule"
	statex "github.com/medflow-ai/appointment-agent/agent/state"
	toolx "github.com/medflow-ai/appointment-agent/agent/tool"
)

const bookingApology = "I'm sorry, I encountered an error with your booking request: "

// bookingHandler covers book, cancel, and reschedule. One tool set, but
// the system prompt is selected per intent so each flow gets focused
// instructions.
type bookingHandler struct {
	runners map[statex.Intent]compose.Runnable[map[string]any, *schema.Message]
	book    compose.Runnable[map[string]any, *schema.Message]
	exec    toolx.Executor
	allowed map[string]struct{}
}

func newBookingHandler(
	ctx context.Context,
	chatModel model.ToolCallingChatModel,
	prompts promptx.PromptSet,
	store schedulex.Store,
) (*bookingHandler, error) {
	infos, exec := toolx.BuildForAgent(statex.AgentBooking, store)
	bound, err := chatModel.WithTools(infos)
	if err != nil {
		return nil, fmt.Errorf("%w: bind booking tools: %v", contractx.ErrModelInvoke, err)
	}

	bookingIntents := []statex.Intent{
		statex.IntentBookAppointment,
		statex.IntentCancelAppointment,
		statex.IntentReschedule,
	}

	runners := make(map[statex.Intent]compose.Runnable[map[string]any, *schema.Message], len(bookingIntents))
	for _, intent := range bookingIntents {
		runner, err := compileChatGraph(ctx, bound, prompts.BookingVariant(intent), "booking.model_graph."+string(intent))
		if err != nil {
			return nil, fmt.Errorf("%w: compile booking graph for %s: %v", contractx.ErrModelInvoke, intent, err)
		}
		runners[intent] = runner
	}

	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name)
	}

	return &bookingHandler{
		runners: runners,
		book:    runners[statex.IntentBookAppointment],
		exec:    exec,
		allowed: allowedSet(names),
	}, nil
}

func (h *bookingHandler) Name() statex.AgentName { return statex.AgentBooking }

func (h *bookingHandler) Process(ctx context.Context, st *statex.ConversationState) (string, error) {
	runner, ok := h.runners[st.CurrentIntent]
	if !ok {
		// Intents routed here that are not in the booking family still
		// get the plain booking prompt.
		runner = h.book
	}

	history := historyToSchema(st.LastMessages(contextWindowHandler))

	reply, err := runToolLoop(ctx, runner, h.exec, h.allowed, st.PatientID, history)
	if err != nil {
		log.Error().Err(err).
			Int64("patient_id", st.PatientID).
			Str("intent", string(st.CurrentIntent)).
			Msg("booking handler failed")
		return bookingApology + err.Error(), err
	}
	return reply, nil
}
