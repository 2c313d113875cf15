package bot

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dodobird181/sambot2/internal/gpt"
	"github.com/dodobird181/sambot2/internal/knowledge"
	"github.com/dodobird181/sambot2/internal/models"
)

// fakeCompleter scripts the completer boundary for tests.
type fakeCompleter struct {
	completeText  string
	completeErr   error
	completeDelay time.Duration // holds Complete open, for animation tests
	streamText    string
	streamErr     error
}

func (f *fakeCompleter) Complete(ctx context.Context, _ []models.Message, _ string) (string, error) {
	if f.completeDelay > 0 {
		select {
		case <-time.After(f.completeDelay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.completeErr != nil {
		return "", f.completeErr
	}
	return f.completeText, nil
}

func (f *fakeCompleter) Stream(ctx context.Context, _ []models.Message, _ string) (gpt.TokenStream, error) {
	if f.streamErr != nil {
		return nil, f.streamErr
	}
	return mustStream(ctx, f.streamText), nil
}

// fakeEmbedder scripts the embedding boundary.
type fakeEmbedder struct {
	vector []float64
	err    error
}

func (f *fakeEmbedder) Embed(ctx context.Context, _ string) ([]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}

func mustStream(ctx context.Context, text string) gpt.TokenStream {
	s, _ := gpt.NewScripted(text, 0).Stream(ctx, nil, "")
	return s
}

// memStore counts writes and keeps the last saved conversation.
type memStore struct {
	mu    sync.Mutex
	saves int
	last  *models.Conversation
}

func (m *memStore) Save(ctx context.Context, c *models.Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	m.last = c.Clone()
	return nil
}

func (m *memStore) Load(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.last == nil || m.last.ID != id {
		return nil, nil
	}
	return m.last.Clone(), nil
}

func (m *memStore) Delete(ctx context.Context, id uuid.UUID) error { return nil }
func (m *memStore) Ping(ctx context.Context) error                 { return nil }
func (m *memStore) Close()                                         {}

func (m *memStore) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func testBase() *knowledge.Base {
	return &knowledge.Base{
		Memories:    "Likes coffee. Plays chess. Works as a software developer.",
		Personality: "You are a friendly portfolio bot.",
	}
}
