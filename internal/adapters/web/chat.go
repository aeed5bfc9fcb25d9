package web

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// sendSSE writes one SSE event and flushes. data is JSON-marshalled.
func sendSSE(w http.ResponseWriter, f http.Flusher, event string, data any) {
	b, _ := json.Marshal(data)
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, string(b))
	f.Flush()
}

type chatRequest struct {
	Question       string `json:"question"`
	ConversationID string `json:"conversation_id"` // optional, continues a prior exchange
}

// chat accepts a question and streams the assistant's answer via SSE.
//
// SSE event types:
//
//	status {"status":"..."}  progress notes while tools run
//	answer {"text":"...","conversation_id":"..."}
//	error  {"message":"...","code":"..."}
//	done   {}
//
// Clients echo conversation_id back on the next request to keep context.
func (h *Handler) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Question == "" {
		writeError(w, r, "question is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, r, "streaming not supported", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // disable nginx buffering if present

	sendSSE(w, flusher, "status", map[string]any{"status": "thinking"})

	onStatus := func(note string) {
		sendSSE(w, flusher, "status", map[string]any{"status": note})
	}

	reply, err := h.svc.Ask(r.Context(), req.Question, req.ConversationID, onStatus)
	if err != nil {
		sendSSE(w, flusher, "error", map[string]any{"message": err.Error(), "code": "AI_ERROR"})
		sendSSE(w, flusher, "done", map[string]any{})
		return
	}

	sendSSE(w, flusher, "answer", map[string]any{"text": reply.Text, "conversation_id": reply.ConversationID})
	sendSSE(w, flusher, "done", map[string]any{})
}
