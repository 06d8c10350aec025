package handlers

import (
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/hairizuanbinnoorazman/project-viewer-sync/dispatcher"
	"github.com/hairizuanbinnoorazman/project-viewer-sync/logger"
)

const maxMessageBytes = 32 << 20

// MessageHandler feeds HTTP requests to a dispatcher one at a time.
type MessageHandler struct {
	mu         sync.Mutex
	dispatcher *dispatcher.Dispatcher
	logger     logger.Logger
}

// NewMessageHandler creates a new message handler.
func NewMessageHandler(d *dispatcher.Dispatcher, log logger.Logger) *MessageHandler {
	return &MessageHandler{
		dispatcher: d,
		logger:     log,
	}
}

// Handle answers 200 with the agent response, or 204 when the message
// produces none.
func (h *MessageHandler) Handle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxMessageBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "message too large")
			return
		}
		h.logger.Error(r.Context(), "failed to read message", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusBadRequest, "failed to read message")
		return
	}

	h.mu.Lock()
	resp, ok := h.dispatcher.Handle(r.Context(), body)
	h.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}
