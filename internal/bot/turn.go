// Package bot drives a conversation turn end to end: append the user
// message, compose the system prompt, stream assistant tokens, and
// persist the final state.
package bot

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dodobird181/sambot2/internal/gpt"
	"github.com/dodobird181/sambot2/internal/metrics"
	"github.com/dodobird181/sambot2/internal/models"
	"github.com/dodobird181/sambot2/internal/store"
)

// streamApology is appended to a partial answer when the token stream
// dies mid-response, so the client still reaches a clean stop.
const streamApology = " ...sorry, I lost my train of thought. Ask me again?"

// Event is one emission of the turn: either a conversation snapshot to
// render, or the terminal stop.
type Event struct {
	Convo *models.Conversation
	Stop  bool
}

// Bot orchestrates turns against a completer, a composer, and the
// conversation store.
type Bot struct {
	completer gpt.Completer
	fallback  *gpt.Scripted
	composer  *Composer
	store     store.ConversationStore
	model     string
	tick      time.Duration // ellipsis animation interval
	logger    zerolog.Logger
}

// New creates a Bot. tick controls how often the thinking ellipsis
// re-renders while the system prompt is being composed.
func New(completer gpt.Completer, composer *Composer, st store.ConversationStore, model string, tick time.Duration, logger zerolog.Logger) *Bot {
	return &Bot{
		completer: completer,
		fallback:  gpt.NewScripted("", 150*time.Millisecond),
		composer:  composer,
		store:     st,
		model:     model,
		tick:      tick,
		logger:    logger,
	}
}

// WithFallback overrides the scripted fallback stream (tests use a
// zero-delay script).
func (b *Bot) WithFallback(s *gpt.Scripted) *Bot {
	b.fallback = s
	return b
}

// Turn runs one full cycle on convo. The returned channel carries a
// conversation snapshot after every mutation and exactly one final
// stop event; it closes when the turn is over. The channel is
// unbuffered, so emission is the unit of backpressure.
//
// Appending the user message happens before the goroutine starts: a
// turn-order violation is a programming-contract error and fails the
// request instead of producing a stream.
func (b *Bot) Turn(ctx context.Context, userContent string, convo *models.Conversation) (<-chan Event, error) {
	if err := convo.Append(models.UserMessage(userContent)); err != nil {
		return nil, err
	}

	events := make(chan Event)
	go func() {
		defer close(events)
		b.run(ctx, userContent, convo, events)
	}()
	return events, nil
}

// Scripted runs a pre-scripted turn: the user message is appended and
// the given text is streamed as the assistant's answer without any
// model calls. Rate-limited requests use this so the client sees the
// same SSE contract as a normal turn.
func (b *Bot) Scripted(ctx context.Context, userContent, response string, convo *models.Conversation) (<-chan Event, error) {
	if err := convo.Append(models.UserMessage(userContent)); err != nil {
		return nil, err
	}

	events := make(chan Event)
	go func() {
		defer close(events)
		if !b.emit(ctx, events, convo) {
			return
		}
		if err := convo.Append(models.AssistantMessage("")); err != nil {
			b.logger.Error().Err(err).Msg("scripted turn broke the conversation invariant")
			return
		}
		stream, _ := gpt.NewScripted(response, b.fallback.Delay).Stream(ctx, nil, "")
		b.streamInto(ctx, events, convo, stream, "scripted")
	}()
	return events, nil
}

func (b *Bot) run(ctx context.Context, userContent string, convo *models.Conversation, events chan<- Event) {
	// Echo the user's own message with no delay.
	if !b.emit(ctx, events, convo) {
		return
	}

	// Placeholder the composer animates while it thinks.
	if err := convo.Append(models.AssistantMessage("")); err != nil {
		b.logger.Error().Err(err).Msg("turn broke the conversation invariant")
		return
	}
	if !b.emit(ctx, events, convo) {
		return
	}

	composed := make(chan Result, 1)
	go func() {
		start := time.Now()
		result := b.composer.Compose(ctx, userContent)
		metrics.ComposeDuration.Observe(time.Since(start).Seconds())
		composed <- result
	}()

	result, ok := b.animateEllipsis(ctx, events, convo, composed)
	if !ok {
		return
	}

	convo.SetSystem(models.SystemMessage(result.SystemPrompt))

	outcome := "ok"
	source := b.completer
	if result.Dummy {
		outcome = "fallback"
		source = b.fallback
	}

	stream, err := source.Stream(ctx, convo.Messages, b.model)
	if err != nil {
		// Same recovery as a failed composition: apologize and play
		// the script.
		b.logger.Error().Err(err).Msg("completion stream failed to open, using fallback")
		convo.SetSystem(models.SystemMessage(Apology))
		outcome = "fallback"
		stream, _ = b.fallback.Stream(ctx, nil, "")
	}

	b.streamInto(ctx, events, convo, stream, outcome)
}

// animateEllipsis re-renders the assistant placeholder with a cycling
// ellipsis until the composer resolves. Returns ok=false if the
// client went away first.
func (b *Bot) animateEllipsis(ctx context.Context, events chan<- Event, convo *models.Conversation, composed <-chan Result) (Result, bool) {
	ticker := time.NewTicker(b.tick)
	defer ticker.Stop()

	dots := 0
	for {
		select {
		case result := <-composed:
			return result, true
		case <-ticker.C:
			dots = dots%3 + 1
			if err := convo.Update(models.AssistantMessage(strings.Repeat(".", dots))); err != nil {
				b.logger.Error().Err(err).Msg("ellipsis update failed")
				return Result{}, false
			}
			if !b.emit(ctx, events, convo) {
				return Result{}, false
			}
		case <-ctx.Done():
			metrics.TurnsTotal.WithLabelValues("cancelled").Inc()
			return Result{}, false
		}
	}
}

// streamInto folds token fragments into the assistant message,
// re-emitting the conversation after each one, then persists and
// stops. Exactly one store write happens per completed turn.
func (b *Bot) streamInto(ctx context.Context, events chan<- Event, convo *models.Conversation, stream gpt.TokenStream, outcome string) {
	defer stream.Close()

	// Clear any leftover ellipsis before real content arrives.
	partial := ""
	if err := convo.Update(models.AssistantMessage(partial)); err != nil {
		b.logger.Error().Err(err).Msg("placeholder reset failed")
		return
	}

	for {
		frag, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if ctx.Err() != nil {
				metrics.TurnsTotal.WithLabelValues("cancelled").Inc()
				return
			}
			// One more rendered message, then the normal stop; the
			// SSE connection never aborts abruptly.
			b.logger.Error().Err(err).Msg("token stream died mid-response")
			partial += streamApology
			if err := convo.Update(models.AssistantMessage(partial)); err != nil {
				b.logger.Error().Err(err).Msg("apology update failed")
				return
			}
			b.emit(ctx, events, convo)
			outcome = "fallback"
			break
		}
		partial += frag
		metrics.TokensStreamed.Inc()
		if err := convo.Update(models.AssistantMessage(partial)); err != nil {
			b.logger.Error().Err(err).Msg("assistant update failed")
			return
		}
		if !b.emit(ctx, events, convo) {
			return
		}
	}

	if err := b.store.Save(ctx, convo); err != nil {
		b.logger.Error().Err(err).Stringer("convo", convo.ID).Msg("failed to persist conversation")
	}
	metrics.TurnsTotal.WithLabelValues(outcome).Inc()

	select {
	case events <- Event{Stop: true}:
	case <-ctx.Done():
	}
}

// emit sends a snapshot of the conversation, returning false if the
// context was cancelled instead.
func (b *Bot) emit(ctx context.Context, events chan<- Event, convo *models.Conversation) bool {
	select {
	case events <- Event{Convo: convo.Clone()}:
		return true
	case <-ctx.Done():
		return false
	}
}
