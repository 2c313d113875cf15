package handlers

import (
	"errors"
	"net/http"

	"github.com/dodobird181/sambot2/internal/metrics"
	"github.com/dodobird181/sambot2/internal/models"
	"github.com/dodobird181/sambot2/internal/store"
)

const pillCount = 4

// Index serves the chat page. Returning visitors get their existing
// conversation back; everyone else gets a fresh one and a session
// cookie pointing at it.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	convo, err := h.conversation(w, r)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to resolve conversation")
		h.Error(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	page, err := h.renderer.Index(convo, h.pills.Suggest(convo, pillCount))
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to render index page")
		h.Error(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(page))
}

// conversation resolves the caller's conversation through the session
// cookie. A missing, invalid, or dangling cookie gets a fresh
// conversation, persisted and bound to a new cookie. Corrupt records
// are treated the same as missing ones.
func (h *Handler) conversation(w http.ResponseWriter, r *http.Request) (*models.Conversation, error) {
	if id, ok := h.sessions.Get(r); ok {
		convo, err := h.store.Load(r.Context(), id)
		if err != nil && !errors.Is(err, store.ErrDecode) {
			return nil, err
		}
		if convo != nil {
			return convo, nil
		}
	}

	convo := models.NewConversation()
	if err := h.store.Save(r.Context(), convo); err != nil {
		return nil, err
	}
	h.sessions.Set(w, convo.ID)
	metrics.ConversationsCreated.Inc()
	h.logger.Info().Str("conversation_id", convo.ID.String()).Msg("conversation created")
	return convo, nil
}
