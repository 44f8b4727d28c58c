package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	contractx "github.com/medflow-ai/appointment-agent/agent/contract"
	statex "github.com/medflow-ai/appointment-agent/agent/state"
)

// Runner is the orchestrator surface the transport needs.
type Runner interface {
	ProcessTurn(ctx context.Context, st *statex.ConversationState) error
}

// AgentHandler exposes the conversation endpoint.
type AgentHandler struct {
	runner   Runner
	sessions statex.Store
}

func NewAgentHandler(runner Runner, sessions statex.Store) *AgentHandler {
	return &AgentHandler{runner: runner, sessions: sessions}
}

type executeRequest struct {
	SessionID string `json:"session_id,omitempty"`
	PatientID int64  `json:"patient_id"`
	Message   string `json:"message"`
}

type executeResponse struct {
	SessionID   string           `json:"session_id"`
	Intent      string           `json:"intent"`
	Messages    []statex.Message `json:"messages"`
	ActiveAgent string           `json:"active_agent"`
	IsComplete  bool             `json:"is_complete"`
	StepCount   int              `json:"step_count"`
	LastError   string           `json:"last_error,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// errForeignSession marks a session id presented with the wrong patient
// id. The only resume failure that is the caller's fault.
var errForeignSession = errors.New("session belongs to a different patient")

// Execute runs one conversation turn. A missing session id starts a new
// session; a known one resumes its accumulated history and step count.
func (h *AgentHandler) Execute(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "request body is not valid JSON")
		return
	}

	if !statex.ValidPatientID(req.PatientID) {
		writeError(w, http.StatusBadRequest, "patient_id must be a 7 or 8 digit number")
		return
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	ctx := r.Context()

	sessionID, st, err := h.resumeOrCreate(ctx, req)
	if err != nil {
		if errors.Is(err, errForeignSession) {
			writeError(w, http.StatusBadRequest, errForeignSession.Error())
			return
		}
		log.Error().Err(err).Str("session_id", strings.TrimSpace(req.SessionID)).Msg("session load failed")
		writeError(w, http.StatusInternalServerError, "session lookup failed")
		return
	}

	st.Messages = append(st.Messages, statex.Message{Role: statex.RoleUser, Content: message})

	if err := h.runner.ProcessTurn(ctx, st); err != nil {
		var malformed *statex.MalformedStateError
		switch {
		case errors.As(err, &malformed):
			writeError(w, http.StatusBadRequest, malformed.Error())
		case errors.Is(err, contractx.ErrStateComplete):
			writeError(w, http.StatusConflict, err.Error())
		default:
			log.Error().Err(err).Str("session_id", sessionID).Msg("turn processing failed")
			writeError(w, http.StatusInternalServerError, "turn processing failed")
		}
		return
	}

	if err := h.sessions.Save(ctx, sessionID, st); err != nil {
		// The turn already completed; losing persistence degrades the
		// next turn, not this one.
		log.Error().Err(err).Str("session_id", sessionID).Msg("session save failed")
	}

	writeJSON(w, http.StatusOK, executeResponse{
		SessionID:   sessionID,
		Intent:      string(st.CurrentIntent),
		Messages:    st.Messages,
		ActiveAgent: string(st.ActiveAgent),
		IsComplete:  st.IsComplete,
		StepCount:   st.StepCount,
		LastError:   st.LastError,
	})
}

// resumeOrCreate loads the session when an id is supplied and it still
// exists, otherwise starts a fresh state. A resumed state gets its
// completion flag cleared: each HTTP call is a new turn.
func (h *AgentHandler) resumeOrCreate(ctx context.Context, req executeRequest) (string, *statex.ConversationState, error) {
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		return uuid.NewString(), statex.NewConversationState(req.PatientID, nil), nil
	}

	st, err := h.sessions.Load(ctx, sessionID)
	if errors.Is(err, statex.ErrSessionNotFound) {
		return sessionID, statex.NewConversationState(req.PatientID, nil), nil
	}
	if err != nil {
		return "", nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	if st.PatientID != req.PatientID {
		return "", nil, errForeignSession
	}

	st.IsComplete = false
	st.AgentResponse = ""
	return sessionID, st, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("encode response failed")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
