// Package gpt wraps the chat completion API for both blocking and
// streaming generation.
package gpt

import (
	"context"
	"errors"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"

	"github.com/dodobird181/sambot2/internal/models"
)

var (
	// ErrUpstream marks connectivity failures reaching the provider.
	// The orchestrator substitutes a user-facing fallback instead of
	// crashing the stream when it sees this.
	ErrUpstream = errors.New("completion provider unreachable")

	// ErrEmptyCompletion marks a well-formed response carrying no
	// generated text.
	ErrEmptyCompletion = errors.New("completion response empty")
)

// TokenStream is a finite, forward-only sequence of text fragments
// that concatenate to the full response. Recv returns io.EOF when the
// upstream source signals completion.
type TokenStream interface {
	Recv() (string, error)
	Close() error
}

// Completer generates text from a conversation's message list.
type Completer interface {
	Complete(ctx context.Context, msgs []models.Message, model string) (string, error)
	Stream(ctx context.Context, msgs []models.Message, model string) (TokenStream, error)
}

// Embedder turns text into a vector for nearest-neighbor retrieval.
type Embedder interface {
	Embed(ctx context.Context, content string) ([]float64, error)
}

// Client is the real Completer backed by the OpenAI API.
type Client struct {
	api *openai.Client
}

// NewClient creates a client authenticated with the given API key.
func NewClient(apiKey string) *Client {
	return &Client{api: openai.NewClient(apiKey)}
}

// Complete sends a blocking chat request and returns the full
// generated text.
func (c *Client) Complete(ctx context.Context, msgs []models.Message, model string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    model,
		Messages: toAPIMessages(msgs),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}

// Stream opens a streaming chat request. The returned stream yields
// non-empty content fragments until the provider signals completion.
func (c *Client) Stream(ctx context.Context, msgs []models.Message, model string) (TokenStream, error) {
	stream, err := c.api.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:    model,
		Messages: toAPIMessages(msgs),
		Stream:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return &apiStream{inner: stream}, nil
}

// Embed generates an embedding vector for the given content.
func (c *Client) Embed(ctx context.Context, content string) ([]float64, error) {
	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{content},
		Model: openai.AdaEmbeddingV2,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if len(resp.Data) == 0 {
		return nil, ErrEmptyCompletion
	}
	vec := make([]float64, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		vec[i] = float64(v)
	}
	return vec, nil
}

// apiStream adapts the SDK stream to TokenStream, skipping chunks
// whose delta carries no content.
type apiStream struct {
	inner *openai.ChatCompletionStream
}

func (s *apiStream) Recv() (string, error) {
	for {
		chunk, err := s.inner.Recv()
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		if content := chunk.Choices[0].Delta.Content; content != "" {
			return content, nil
		}
	}
}

func (s *apiStream) Close() error {
	s.inner.Close()
	return nil
}

func toAPIMessages(msgs []models.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}
	return out
}
