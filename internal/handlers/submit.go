package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dodobird181/sambot2/internal/bot"
	"github.com/dodobird181/sambot2/internal/models"
)

const (
	submitLimit  = 20
	submitWindow = time.Minute

	// Streamed back instead of a bare 429 so the page keeps its
	// conversational tone even when the caller is throttled.
	throttleMessage = "Whoa, slow down! You're sending messages faster " +
		"than I can think. Give me a moment to catch my breath and " +
		"then ask me again."
)

// Submit handles a user turn. The reply streams back as server-sent
// events, one conversation snapshot per record, terminated by a
// single STOP record.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	userContent := strings.TrimSpace(r.URL.Query().Get("user_content"))
	if userContent == "" {
		h.Error(w, http.StatusBadRequest, "user_content is required")
		return
	}

	convo, err := h.conversation(w, r)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to resolve conversation")
		h.Error(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.Error(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	var events <-chan bot.Event
	if h.limiter.Allow(r.Context(), r, "submit", submitLimit, submitWindow) {
		events, err = h.bot.Turn(r.Context(), userContent, convo)
	} else {
		events, err = h.bot.Scripted(r.Context(), userContent, throttleMessage, convo)
	}
	if err != nil {
		h.logger.Warn().
			Err(err).
			Str("conversation_id", convo.ID.String()).
			Msg("rejected user turn")
		h.Error(w, http.StatusBadRequest, "it's not your turn to speak")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	for ev := range events {
		if ev.Stop {
			fmt.Fprint(w, "data: STOP\n\n")
			flusher.Flush()
			continue
		}
		h.writeFrame(w, flusher, ev.Convo)
	}
}

func (h *Handler) writeFrame(w http.ResponseWriter, flusher http.Flusher, convo *models.Conversation) {
	html, err := h.renderer.Conversation(convo)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to render conversation frame")
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", html)
	flusher.Flush()
}
