package gpt

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/dodobird181/sambot2/internal/models"
)

// DefaultScript is played by the scripted responder in dummy mode.
const DefaultScript = "Lorem ipsum dolor sit amet, consectetur adipiscing elit. " +
	"Sed non risus. Suspendisse lectus tortor, dignissim sit amet, adipiscing nec, " +
	"ultricies sed, dolor. Cras elementum ultrices diam."

// Scripted is a Completer that plays a fixed sentence instead of
// calling the provider. It backs dummy mode and the fallback path when
// the real provider is unreachable.
type Scripted struct {
	Text  string
	Delay time.Duration // pause between fragments, zero in tests
}

// NewScripted returns a scripted responder playing text.
func NewScripted(text string, delay time.Duration) *Scripted {
	if text == "" {
		text = DefaultScript
	}
	return &Scripted{Text: text, Delay: delay}
}

// Complete returns the whole script at once.
func (s *Scripted) Complete(ctx context.Context, _ []models.Message, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.Text, nil
}

// Stream yields the script one word at a time.
func (s *Scripted) Stream(ctx context.Context, _ []models.Message, _ string) (TokenStream, error) {
	return &scriptedStream{
		ctx:   ctx,
		words: strings.Fields(s.Text),
		delay: s.Delay,
	}, nil
}

type scriptedStream struct {
	ctx   context.Context
	words []string
	pos   int
	delay time.Duration
}

func (s *scriptedStream) Recv() (string, error) {
	if err := s.ctx.Err(); err != nil {
		return "", err
	}
	if s.pos >= len(s.words) {
		return "", io.EOF
	}
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-s.ctx.Done():
			return "", s.ctx.Err()
		}
	}
	word := s.words[s.pos]
	s.pos++
	if s.pos < len(s.words) {
		word += " "
	}
	return word, nil
}

func (s *scriptedStream) Close() error {
	s.pos = len(s.words)
	return nil
}
