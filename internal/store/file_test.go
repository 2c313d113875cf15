package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/dodobird181/sambot2/internal/models"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c := models.NewConversation()
	c.SetSystem(models.SystemMessage("you are a portfolio bot"))
	if err := c.Append(models.UserMessage("Bonjour! Ça va? 日本語もOK 🌍")); err != nil {
		t.Fatal(err)
	}
	if err := c.Append(models.AssistantMessage("Ça va très bien — merci!")); err != nil {
		t.Fatal(err)
	}

	if err := s.Save(ctx, c); err != nil {
		t.Fatal(err)
	}

	loaded, err := s.Load(ctx, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if loaded == nil {
		t.Fatal("expected conversation, got nil")
	}
	if loaded.ID != c.ID {
		t.Fatalf("id changed: %s != %s", loaded.ID, c.ID)
	}
	if len(loaded.Messages) != len(c.Messages) {
		t.Fatalf("message count changed: %d != %d", len(loaded.Messages), len(c.Messages))
	}
	for i := range c.Messages {
		want, got := c.Messages[i], loaded.Messages[i]
		if got.Role != want.Role {
			t.Fatalf("message %d role: %s != %s", i, got.Role, want.Role)
		}
		if got.Content != want.Content {
			t.Fatalf("message %d content: %q != %q", i, got.Content, want.Content)
		}
		if !got.CreatedAt.Equal(want.CreatedAt) {
			t.Fatalf("message %d created_at: %s != %s", i, got.CreatedAt, want.CreatedAt)
		}
	}
}

func TestSaveOverwrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c := models.NewConversation()
	if err := s.Save(ctx, c); err != nil {
		t.Fatal(err)
	}
	if err := c.Append(models.UserMessage("hi")); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, c); err != nil {
		t.Fatal(err)
	}

	loaded, err := s.Load(ctx, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Messages) != 2 {
		t.Fatalf("expected 2 messages after overwrite, got %d", len(loaded.Messages))
	}
}

func TestLoadNotFound(t *testing.T) {
	s := newTestStore(t)

	loaded, err := s.Load(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("not-found should not be an error, got %v", err)
	}
	if loaded != nil {
		t.Fatal("expected nil conversation for missing id")
	}
}

func TestLoadCorruptRecord(t *testing.T) {
	s := newTestStore(t)
	id := uuid.New()

	path := filepath.Join(s.dir, id.String()+".json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := s.Load(context.Background(), id)
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestLoadRecordWithoutSystemMessage(t *testing.T) {
	s := newTestStore(t)
	id := uuid.New()

	path := filepath.Join(s.dir, id.String()+".json")
	record := `{"id":"` + id.String() + `","messages":[{"role":"user","content":"hi","created_at":"2024-01-01T00:00:00Z"}]}`
	if err := os.WriteFile(path, []byte(record), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := s.Load(context.Background(), id)
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c := models.NewConversation()
	if err := s.Save(ctx, c); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, c.ID); err != nil {
		t.Fatal(err)
	}
	loaded, err := s.Load(ctx, c.ID)
	if err != nil || loaded != nil {
		t.Fatalf("expected (nil, nil) after delete, got (%v, %v)", loaded, err)
	}

	// Deleting again is a no-op.
	if err := s.Delete(ctx, c.ID); err != nil {
		t.Fatal(err)
	}
}
