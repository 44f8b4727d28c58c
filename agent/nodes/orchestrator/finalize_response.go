package orchestratornode

import (
	"fmt"
	"strings"

	contractx "github.com/medflow-ai/appointment-agent/agent/contract"
	statex "github.com/medflow-ai/appointment-agent/agent/state"
)

const emptyResponseReply = "I'm sorry, I wasn't able to put together a response. Could you rephrase your request?"

// FinalizeResponse appends the handler reply to the history and marks
// the turn complete. After this node the state must not re-enter the
// graph until the caller clears IsComplete for the next turn.
func FinalizeResponse(in *GraphState) (*statex.ConversationState, error) {
	if in == nil || in.State == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrMalformedState)
	}
	st := in.State

	reply := strings.TrimSpace(in.Response)
	if reply == "" {
		reply = emptyResponseReply
	}

	st.AppendAssistant(reply, st.ActiveAgent)
	st.AgentResponse = reply
	st.IsComplete = true
	return st, nil
}
