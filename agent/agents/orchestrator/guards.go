package orchestrator

import (
	"strings"

	statex "github.com/medflow-ai/appointment-agent/agent/state"
)

// TerminationReason names which safety net fired at the start of a turn.
type TerminationReason string

const (
	ReasonNone            TerminationReason = ""
	ReasonStepCeiling     TerminationReason = "step_ceiling"
	ReasonRepeatedRouting TerminationReason = "repeated_routing"
	ReasonDeadEnd         TerminationReason = "dead_end"
)

// deadEndPhrases are unresolvable outcomes: once a handler has said one
// of these, re-routing cannot produce progress. Matched case-insensitively
// against the latest message.
var deadEndPhrases = []string{
	"no available appointments",
	"no availability",
	"unable to proceed",
	"cannot continue",
}

// checkGuards evaluates the three deterministic termination checks in
// priority order and returns the first that fires. Pure: no state
// mutation, no model involvement. The model routes; these decide whether
// routing is allowed to happen at all.
func checkGuards(st *statex.ConversationState) TerminationReason {
	if stepCeilingReached(st) {
		return ReasonStepCeiling
	}
	if repeatedRouting(st) {
		return ReasonRepeatedRouting
	}
	if deadEndDetected(st) {
		return ReasonDeadEnd
	}
	return ReasonNone
}

// stepCeilingReached reports whether another classify/dispatch cycle
// would push StepCount past MaxSteps.
func stepCeilingReached(st *statex.ConversationState) bool {
	return st.StepCount >= statex.MaxSteps
}

// repeatedRouting reports whether the two most recent messages are
// assistant replies from the same named handler back-to-back, the
// signature of the model oscillating on one branch.
func repeatedRouting(st *statex.ConversationState) bool {
	n := len(st.Messages)
	if n < 2 {
		return false
	}
	last, prev := st.Messages[n-1], st.Messages[n-2]
	if last.Role != statex.RoleAssistant || prev.Role != statex.RoleAssistant {
		return false
	}
	return last.Handler != "" && last.Handler == prev.Handler
}

// deadEndDetected reports whether the latest message contains one of the
// unresolvable phrases.
func deadEndDetected(st *statex.ConversationState) bool {
	n := len(st.Messages)
	if n == 0 {
		return false
	}
	content := strings.ToLower(st.Messages[n-1].Content)
	for _, phrase := range deadEndPhrases {
		if strings.Contains(content, phrase) {
			return true
		}
	}
	return false
}
