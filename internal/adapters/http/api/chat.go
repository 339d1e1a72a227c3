package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	service "github.com/okian/ringlens/internal/app"
	"github.com/okian/ringlens/internal/domain/digest"
	"github.com/okian/ringlens/internal/domain/table"
)

// chatRequest mirrors the OpenAPI schema for POST /chat.
type chatRequest struct {
	Message   string                 `json:"message" validate:"required"`
	Data      map[string][]table.Row `json:"data"`
	SessionID string                 `json:"session_id" validate:"omitempty,max=64"`
}

type chatResponse struct {
	Response string `json:"response"`
}

// HandleChat handles POST /chat requests.
func (s *Server) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid JSON body")
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "no_message", "No message provided")
		return
	}
	if req.SessionID == "" {
		req.SessionID = sessionID(r)
	}

	reply, err := s.deps.Chat(r.Context(), service.ChatRequest{Message: req.Message, Data: req.Data, SessionID: req.SessionID})
	if err != nil {
		if errors.Is(err, service.ErrEmptyMessage) {
			writeError(w, http.StatusBadRequest, "no_message", "No message provided")
			return
		}
		writeError(w, http.StatusInternalServerError, "chat_failed", digest.ChatFailure)
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Response: reply})
}
