package orchestrator

import (
	"testing"

	statex "github.com/medflow-ai/appointment-agent/agent/state"
)

func TestCheckGuardsStepCeiling(t *testing.T) {
	t.Parallel()

	st := statex.NewConversationState(12345678, nil)
	st.StepCount = statex.MaxSteps

	if got := checkGuards(st); got != ReasonStepCeiling {
		t.Fatalf("checkGuards() = %q, want step ceiling", got)
	}

	st.StepCount = statex.MaxSteps - 1
	if got := checkGuards(st); got != ReasonNone {
		t.Fatalf("checkGuards() below ceiling = %q", got)
	}
}

func TestCheckGuardsRepeatedRouting(t *testing.T) {
	t.Parallel()

	st := statex.NewConversationState(12345678, []statex.Message{
		{Role: statex.RoleUser, Content: "book me in"},
		{Role: statex.RoleAssistant, Content: "which date?", Handler: "booking"},
		{Role: statex.RoleAssistant, Content: "which doctor?", Handler: "booking"},
	})

	if got := checkGuards(st); got != ReasonRepeatedRouting {
		t.Fatalf("checkGuards() = %q, want repeated routing", got)
	}
}

func TestCheckGuardsRepeatedRoutingNeedsSameHandler(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		messages []statex.Message
	}{
		{
			name: "different handlers",
			messages: []statex.Message{
				{Role: statex.RoleAssistant, Content: "a", Handler: "availability"},
				{Role: statex.RoleAssistant, Content: "b", Handler: "booking"},
			},
		},
		{
			name: "user message between",
			messages: []statex.Message{
				{Role: statex.RoleAssistant, Content: "a", Handler: "booking"},
				{Role: statex.RoleUser, Content: "ok"},
			},
		},
		{
			name: "unnamed assistant messages",
			messages: []statex.Message{
				{Role: statex.RoleAssistant, Content: "a"},
				{Role: statex.RoleAssistant, Content: "b"},
			},
		},
		{
			name: "single message",
			messages: []statex.Message{
				{Role: statex.RoleAssistant, Content: "a", Handler: "booking"},
			},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			st := statex.NewConversationState(12345678, tc.messages)
			if got := checkGuards(st); got != ReasonNone {
				t.Fatalf("checkGuards() = %q, want none", got)
			}
		})
	}
}

func TestCheckGuardsDeadEndPhrases(t *testing.T) {
	t.Parallel()

	phrases := []string{
		"There are NO AVAILABLE APPOINTMENTS for that day.",
		"Sorry, no availability this week.",
		"I am unable to proceed with this request.",
		"We cannot continue without a patient id.",
	}

	for _, phrase := range phrases {
		st := statex.NewConversationState(12345678, []statex.Message{
			{Role: statex.RoleAssistant, Content: phrase, Handler: "availability"},
		})
		if got := checkGuards(st); got != ReasonDeadEnd {
			t.Errorf("checkGuards(%q) = %q, want dead end", phrase, got)
		}
	}

	st := statex.NewConversationState(12345678, []statex.Message{
		{Role: statex.RoleAssistant, Content: "jane smith is available at 08:00", Handler: "availability"},
	})
	if got := checkGuards(st); got != ReasonNone {
		t.Fatalf("checkGuards() on normal reply = %q", got)
	}
}

func TestCheckGuardsPriorityOrder(t *testing.T) {
	t.Parallel()

	// All three conditions hold at once; the ceiling must win, and with
	// the ceiling out of the way, repeated routing outranks dead end.
	st := statex.NewConversationState(12345678, []statex.Message{
		{Role: statex.RoleAssistant, Content: "no availability", Handler: "availability"},
		{Role: statex.RoleAssistant, Content: "no availability", Handler: "availability"},
	})
	st.StepCount = statex.MaxSteps

	if got := checkGuards(st); got != ReasonStepCeiling {
		t.Fatalf("checkGuards() = %q, want step ceiling first", got)
	}

	st.StepCount = 1
	if got := checkGuards(st); got != ReasonRepeatedRouting {
		t.Fatalf("checkGuards() = %q, want repeated routing before dead end", got)
	}
}
