package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dodobird181/sambot2/internal/api/middleware"
	"github.com/dodobird181/sambot2/internal/bot"
	"github.com/dodobird181/sambot2/internal/render"
	"github.com/dodobird181/sambot2/internal/session"
	"github.com/dodobird181/sambot2/internal/store"
)

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	store    store.ConversationStore
	redis    *store.RedisStore
	bot      *bot.Bot
	pills    *bot.Pills
	renderer *render.Renderer
	sessions *session.Manager
	limiter  *middleware.RateLimiter
	logger   zerolog.Logger
}

// NewHandler creates a new Handler with the given dependencies.
// redis may be nil when not configured.
func NewHandler(
	convos store.ConversationStore,
	redis *store.RedisStore,
	b *bot.Bot,
	pills *bot.Pills,
	renderer *render.Renderer,
	sessions *session.Manager,
	limiter *middleware.RateLimiter,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		store:    convos,
		redis:    redis,
		bot:      b,
		pills:    pills,
		renderer: renderer,
		sessions: sessions,
		limiter:  limiter,
		logger:   logger,
	}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}
