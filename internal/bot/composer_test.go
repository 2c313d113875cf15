package bot

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/dodobird181/sambot2/internal/gpt"
	"github.com/dodobird181/sambot2/internal/knowledge"
)

func newTestComposer(completer gpt.Completer) *Composer {
	return NewComposer(completer, testBase(), "test-model", time.Second, zerolog.Nop())
}

func TestComposeInstallsSummary(t *testing.T) {
	c := newTestComposer(&fakeCompleter{completeText: "- plays chess\n- drinks coffee"})

	result := c.Compose(context.Background(), "What do you do for fun?")
	if result.Dummy {
		t.Fatal("successful composition should not be a dummy turn")
	}
	if !strings.Contains(result.SystemPrompt, "plays chess") {
		t.Fatalf("system prompt missing summary: %q", result.SystemPrompt)
	}
	if !strings.Contains(result.SystemPrompt, "friendly portfolio bot") {
		t.Fatalf("system prompt missing personality: %q", result.SystemPrompt)
	}
}

func TestComposeGreetingSkipsSummary(t *testing.T) {
	c := newTestComposer(&fakeCompleter{completeText: "YES"})

	result := c.Compose(context.Background(), "hey there!")
	if result.Dummy {
		t.Fatal("greeting should not be a dummy turn")
	}
	if !strings.Contains(result.SystemPrompt, "saying hello") {
		t.Fatalf("expected greeting instruction, got %q", result.SystemPrompt)
	}
	if !strings.Contains(result.SystemPrompt, "friendly portfolio bot") {
		t.Fatalf("system prompt missing personality: %q", result.SystemPrompt)
	}
}

func TestComposeNoInfoRedirects(t *testing.T) {
	c := newTestComposer(&fakeCompleter{completeText: "NO INFO"})

	result := c.Compose(context.Background(), "What is the airspeed of an unladen swallow?")
	if result.Dummy {
		t.Fatal("no-info should not trigger the fallback stream")
	}
	if strings.Contains(result.SystemPrompt, "NO INFO") {
		t.Fatal("sentinel leaked into the system prompt")
	}
	if !strings.Contains(result.SystemPrompt, "redirect") {
		t.Fatalf("expected redirect instruction, got %q", result.SystemPrompt)
	}
}

func TestComposeNoInfoCaseInsensitive(t *testing.T) {
	c := newTestComposer(&fakeCompleter{completeText: "no info"})

	result := c.Compose(context.Background(), "???")
	if strings.Contains(strings.ToUpper(result.SystemPrompt), "NO INFO") {
		t.Fatal("sentinel leaked into the system prompt")
	}
}

func TestComposeMismatchedEmbeddingDimensions(t *testing.T) {
	embeddings := []knowledge.Embedding{{Content: "fragment", Vector: []float64{0.1, 0.2}}}
	embedder := &fakeEmbedder{vector: []float64{0.1, 0.2, 0.3}}
	c := newTestComposer(&fakeCompleter{completeText: "- plays chess"}).
		WithEmbeddings(embeddings, embedder, 1)

	result := c.Compose(context.Background(), "What do you do for fun?")
	if result.Dummy {
		t.Fatal("dimension mismatch must fall back to full memories, not a dummy turn")
	}
	if !strings.Contains(result.SystemPrompt, "plays chess") {
		t.Fatalf("system prompt missing summary: %q", result.SystemPrompt)
	}
}

func TestComposeEmbedFailureFallsBack(t *testing.T) {
	embeddings := []knowledge.Embedding{{Content: "fragment", Vector: []float64{0.1, 0.2}}}
	embedder := &fakeEmbedder{err: gpt.ErrUpstream}
	c := newTestComposer(&fakeCompleter{completeText: "- drinks coffee"}).
		WithEmbeddings(embeddings, embedder, 1)

	result := c.Compose(context.Background(), "What do you drink?")
	if result.Dummy {
		t.Fatal("embed failure must fall back to full memories, not a dummy turn")
	}
}

func TestComposeUpstreamFailure(t *testing.T) {
	c := newTestComposer(&fakeCompleter{completeErr: gpt.ErrUpstream})

	result := c.Compose(context.Background(), "Hello?")
	if !result.Dummy {
		t.Fatal("connectivity failure must mark the turn as dummy")
	}
	if result.SystemPrompt != Apology {
		t.Fatalf("expected apology prompt, got %q", result.SystemPrompt)
	}
}
