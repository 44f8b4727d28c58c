package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ConversationState is the single mutable record threaded through every
// orchestration node. Invariants:
//   - Messages is append-only within a turn, never reordered.
//   - StepCount is monotone and stays <= MaxSteps while IsComplete is false.
//   - Once IsComplete is set the state must not re-enter the orchestrator.
//   - ActiveAgent is set iff a handler has run at least once this turn.
type ConversationState struct {
	Messages  []Message `json:"messages"`
	PatientID int64     `json:"patient_id"`

	CurrentIntent Intent `json:"current_intent,omitempty"`
	CurrentQuery  string `json:"current_query,omitempty"`

	ActiveAgent   AgentName `json:"active_agent,omitempty"`
	AgentResponse string    `json:"agent_response,omitempty"`

	StepCount  int  `json:"step_count"`
	IsComplete bool `json:"is_complete"`

	LastError  string `json:"last_error,omitempty"`
	RetryCount int    `json:"retry_count"`
}

// Intent is the closed set of request categories. Unknown values still
// route (to the general branch); they just never originate here.
type Intent string

const (
	IntentCheckAvailability Intent = "check_availability"
	IntentBookAppointment   Intent = "book_appointment"
	IntentCancelAppointment Intent = "cancel_appointment"
	IntentReschedule        Intent = "reschedule_appointment"
	IntentGeneralInquiry    Intent = "general_inquiry"
	IntentGreeting          Intent = "greeting"
)

// AgentName identifies a task handler branch.
type AgentName string

const (
	AgentAvailability AgentName = "availability"
	AgentBooking      AgentName = "booking"
	AgentGeneral      AgentName = "general"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is one role-tagged utterance. Handler records which task handler
// produced an assistant message; it is empty for user and system entries.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
	Handler string `json:"handler,omitempty"`
}

const (
	// MaxSteps is the hard ceiling on orchestration steps per session.
	MaxSteps = 10
	// MaxRetries bounds failure bookkeeping in RetryCount.
	MaxRetries = 3
)

// MalformedStateError reports a state that must be rejected before
// orchestration begins.
type MalformedStateError struct {
	Reason string
}

func (e *MalformedStateError) Error() string {
	return fmt.Sprintf("malformed conversation state: %s", e.Reason)
}

var ErrPatientIDOutOfRange = errors.New("patient id must be 7 or 8 digits")

// NewConversationState creates the per-request state from the caller's
// accumulated message history.
func NewConversationState(patientID int64, messages []Message) *ConversationState {
	return &ConversationState{
		Messages:  append([]Message(nil), messages...),
		PatientID: patientID,
	}
}

// ValidPatientID reports whether id is a 7 or 8 digit number.
func ValidPatientID(id int64) bool {
	return id >= 1_000_000 && id <= 99_999_999
}

// Validate checks the entry-point invariants. It does not check
// completion; resuming a completed state is the orchestrator's concern.
func (s *ConversationState) Validate() error {
	if s == nil {
		return &MalformedStateError{Reason: "state is nil"}
	}
	if s.PatientID == 0 {
		return &MalformedStateError{Reason: "patient id is missing"}
	}
	if !ValidPatientID(s.PatientID) {
		return &MalformedStateError{Reason: ErrPatientIDOutOfRange.Error()}
	}
	if s.StepCount < 0 || s.StepCount > MaxSteps {
		return &MalformedStateError{Reason: fmt.Sprintf("step_count=%d outside [0,%d]", s.StepCount, MaxSteps)}
	}
	return nil
}

// LatestUserQuery returns the content of the most recent user message.
func (s *ConversationState) LatestUserQuery() (string, bool) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleUser {
			return s.Messages[i].Content, true
		}
	}
	return "", false
}

// LastMessages returns up to n trailing messages (the bounded context
// window handed to model calls).
func (s *ConversationState) LastMessages(n int) []Message {
	if n <= 0 || len(s.Messages) == 0 {
		return nil
	}
	if len(s.Messages) <= n {
		return s.Messages
	}
	return s.Messages[len(s.Messages)-n:]
}

// AppendAssistant appends the handler reply to the history. Append-only:
// existing entries are never touched.
func (s *ConversationState) AppendAssistant(content string, handler AgentName) {
	s.Messages = append(s.Messages, Message{
		Role:    RoleAssistant,
		Content: content,
		Handler: string(handler),
	})
}

// RecordError captures a handler failure without failing the turn.
func (s *ConversationState) RecordError(err error) {
	if err == nil {
		return
	}
	s.LastError = err.Error()
	if s.RetryCount < MaxRetries {
		s.RetryCount++
	}
}

/* ------------------------- boundary serialization ------------------------ */

// ToMap serializes the state into a transport-neutral mapping. The
// contract is structural: callers on the far side of any boundary only
// see plain maps, slices, and scalars.
func (s *ConversationState) ToMap() map[string]any {
	msgs := make([]map[string]any, 0, len(s.Messages))
	for _, m := range s.Messages {
		entry := map[string]any{
			"role":    string(m.Role),
			"content": m.Content,
		}
		if m.Handler != "" {
			entry["handler"] = m.Handler
		}
		msgs = append(msgs, entry)
	}

	return map[string]any{
		"messages":       msgs,
		"patient_id":     s.PatientID,
		"current_intent": string(s.CurrentIntent),
		"current_query":  s.CurrentQuery,
		"active_agent":   string(s.ActiveAgent),
		"agent_response": s.AgentResponse,
		"step_count":     s.StepCount,
		"is_complete":    s.IsComplete,
		"last_error":     s.LastError,
		"retry_count":    s.RetryCount,
	}
}

// FromMap rebuilds a ConversationState from a transport-neutral mapping.
// It fails with MalformedStateError when patient_id is absent or
// step_count falls outside [0, MaxSteps].
func FromMap(data map[string]any) (*ConversationState, error) {
	if data == nil {
		return nil, &MalformedStateError{Reason: "payload is nil"}
	}

	patientID, ok := asInt64(data["patient_id"])
	if !ok || patientID == 0 {
		return nil, &MalformedStateError{Reason: "patient id is missing"}
	}

	stepCount, ok := asInt64(data["step_count"])
	if !ok {
		stepCount = 0
	}
	if stepCount < 0 || stepCount > MaxSteps {
		return nil, &MalformedStateError{Reason: fmt.Sprintf("step_count=%d outside [0,%d]", stepCount, MaxSteps)}
	}

	st := &ConversationState{
		PatientID:     patientID,
		CurrentIntent: Intent(asString(data["current_intent"])),
		CurrentQuery:  asString(data["current_query"]),
		ActiveAgent:   AgentName(asString(data["active_agent"])),
		AgentResponse: asString(data["agent_response"]),
		StepCount:     int(stepCount),
		LastError:     asString(data["last_error"]),
	}
	if v, ok := data["is_complete"].(bool); ok {
		st.IsComplete = v
	}
	if v, ok := asInt64(data["retry_count"]); ok {
		st.RetryCount = int(v)
	}

	rawMsgs, _ := data["messages"].([]any)
	for _, raw := range rawMsgs {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		role := Role(strings.TrimSpace(asString(entry["role"])))
		if role == "" {
			continue
		}
		st.Messages = append(st.Messages, Message{
			Role:    role,
			Content: asString(entry["content"]),
			Handler: asString(entry["handler"]),
		})
	}

	return st, nil
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	case json.Number:
		parsed, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
