package orchestratornode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/medflow-ai/appointment-agent/agent/contract"
	statex "github.com/medflow-ai/appointment-agent/agent/state"
)

const handlerPanicReply = "I'm sorry, something went wrong while handling your request. Please try again."

// RunHandler dispatches to the routed task handler. Handler failures are
// recorded on the state, never propagated: the turn always ends with a
// response the caller can show.
func RunHandler(ctx context.Context, in *GraphState, handler contractx.Handler) (out *GraphState, err error) {
	if in == nil || in.State == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrMalformedState)
	}
	if handler == nil {
		return nil, fmt.Errorf("%w: no handler for route %s", contractx.ErrMalformedState, in.Route)
	}
	st := in.State
	st.ActiveAgent = handler.Name()

	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Str("agent", string(st.ActiveAgent)).
				Msg("handler panicked")
			st.RecordError(fmt.Errorf("handler %s panicked: %v", st.ActiveAgent, r))
			in.Response = handlerPanicReply
			st.AgentResponse = in.Response
			out, err = in, nil
		}
	}()

	reply, handlerErr := handler.Process(ctx, st)
	if handlerErr != nil {
		st.RecordError(handlerErr)
	}
	in.Response = reply
	st.AgentResponse = reply
	return in, nil
}

// PickHandler resolves the routed branch against the registry.
func PickHandler(route statex.AgentName, models contractx.Registry) contractx.Handler {
	switch route {
	case statex.AgentAvailability:
		return models.Availability()
	case statex.AgentBooking:
		return models.Booking()
	default:
		return models.General()
	}
}
