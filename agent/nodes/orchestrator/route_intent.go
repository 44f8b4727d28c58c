package orchestratornode

import (
	"fmt"

	contractx "github.com/medflow-ai/appointment-agent/agent/contract"
	statex "github.com/medflow-ai/appointment-agent/agent/state"
)

// RouteIntent maps an intent to the handler branch. Total: any value
// outside the booking and availability families lands on the general
// handler, so an unknown intent can never strand a turn.
func RouteIntent(intent statex.Intent) statex.AgentName {
	switch intent {
	case statex.IntentCheckAvailability:
		return statex.AgentAvailability
	case statex.IntentBookAppointment, statex.IntentCancelAppointment, statex.IntentReschedule:
		return statex.AgentBooking
	default:
		return statex.AgentGeneral
	}
}

// Route records the branch decision on the graph state.
func Route(in *GraphState) (*GraphState, error) {
	if in == nil || in.State == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrMalformedState)
	}
	in.Route = RouteIntent(in.State.CurrentIntent)
	return in, nil
}
