package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ccastromar/meetbot/internal/logx"
	"github.com/ccastromar/meetbot/internal/session"
)

const (
	msgUploaded        = "Transcript uploaded successfully"
	msgSessionNotFound = "Session not found. Please upload a transcript first."
)

// Processor turns a user message into the bot's reply.
type Processor interface {
	Process(ctx context.Context, message string, sess *session.Session) string
}

type handlers struct {
	store  session.Store
	engine Processor
}

func (h *handlers) register(mux *http.ServeMux) {
	mux.HandleFunc("POST /upload", h.handleUpload)
	mux.HandleFunc("POST /chat", h.handleChat)
	mux.HandleFunc("GET /sessions/{id}/history", h.handleHistory)
}

type uploadRequest struct {
	Transcript string `json:"transcript"`
	SessionID  string `json:"session_id"`
}

type uploadResponse struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type chatResponse struct {
	Response string `json:"response"`
}

type historyResponse struct {
	SessionID   string         `json:"session_id"`
	ChatHistory []session.Turn `json:"chat_history"`
}

func (h *handlers) handleUpload(w http.ResponseWriter, r *http.Request) {
	var req uploadRequest
	if !decode(w, r, &req) {
		return
	}

	sess := session.New(strings.TrimSpace(req.SessionID), req.Transcript)
	if err := h.store.Create(r.Context(), sess); err != nil {
		logx.Error("Store", "create session %s: %v", sess.ID, err)
		writeError(w, http.StatusInternalServerError, "could not save session")
		return
	}

	logx.L(sess.ID, "HTTP", "transcript uploaded (%d bytes)", len(req.Transcript))
	writeJSON(w, http.StatusOK, uploadResponse{Message: msgUploaded, SessionID: sess.ID})
}

// handleChat appends the user turn before processing so the classifier
// sees the message in its history, then appends the reply and saves.
func (h *handlers) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	sess, err := h.store.Get(r.Context(), req.SessionID)
	if err != nil {
		logx.Error("Store", "get session %s: %v", req.SessionID, err)
		writeError(w, http.StatusInternalServerError, "could not load session")
		return
	}
	if sess == nil {
		writeError(w, http.StatusNotFound, msgSessionNotFound)
		return
	}

	sess.Append(session.SenderUser, req.Message)
	reply := h.engine.Process(r.Context(), req.Message, sess)
	sess.Append(session.SenderBot, reply)

	if err := h.store.Update(r.Context(), sess); err != nil {
		switch {
		case errors.Is(err, session.ErrVersionConflict):
			writeError(w, http.StatusConflict, "session was modified concurrently, please retry")
		case errors.Is(err, session.ErrNotFound):
			writeError(w, http.StatusNotFound, msgSessionNotFound)
		default:
			logx.Error("Store", "update session %s: %v", sess.ID, err)
			writeError(w, http.StatusInternalServerError, "could not save session")
		}
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Response: reply})
}

func (h *handlers) handleHistory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	sess, err := h.store.Get(r.Context(), id)
	if err != nil {
		logx.Error("Store", "get session %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "could not load session")
		return
	}
	if sess == nil {
		writeError(w, http.StatusNotFound, msgSessionNotFound)
		return
	}
	writeJSON(w, http.StatusOK, historyResponse{SessionID: sess.ID, ChatHistory: sess.ChatHistory})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// Errors use {"detail": ...}, the shape existing clients of this API read.
func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
