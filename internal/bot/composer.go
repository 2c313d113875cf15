package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dodobird181/sambot2/internal/gpt"
	"github.com/dodobird181/sambot2/internal/knowledge"
	"github.com/dodobird181/sambot2/internal/models"
)

// noInfoSentinel is what the summarizer is told to answer when nothing
// in the corpus is relevant to the question.
const noInfoSentinel = "NO INFO"

// redirectInstruction replaces an empty summary so the bot steers the
// user back toward topics it can actually speak to.
const redirectInstruction = "You don't have any information relevant to the " +
	"user's question. Politely say so, and redirect the conversation toward " +
	"your work experience, projects, or hobbies."

// Apology is the system message installed when the provider cannot be
// reached. The turn then plays the scripted fallback stream.
const Apology = "Sorry! I'm having trouble reaching my brain right now. " +
	"Please try again in a moment."

const greetingPrompt = `Does the following message contain only a greeting or ` +
	`small talk, with no actual question? Answer YES or NO.

MESSAGE: %s`

// greetingInstruction skips the summarization round-trip when the
// user is just saying hello.
const greetingInstruction = "The user is just saying hello. Greet them back " +
	"warmly, introduce yourself briefly, and invite them to ask about your " +
	"work, projects, or hobbies."

const summarizePrompt = `Summarize relevant information using bullet points ` +
	`from the following content to answer the given question. Keep your summary ` +
	`as short as possible. Respond with "%s" if none of the information ` +
	`available is relevant. Use a single bullet-point if the question is not ` +
	`very specific.

CONTENT: %s

QUESTION: %s`

// Composer derives the system prompt for a turn by summarizing the
// knowledge corpus against the latest user question with a cheaper
// model.
type Composer struct {
	completer gpt.Completer
	base      *knowledge.Base
	model     string
	timeout   time.Duration
	logger    zerolog.Logger

	// optional nearest-neighbor retrieval over the corpus
	embeddings []knowledge.Embedding
	embedder   gpt.Embedder
	retrieveK  int
}

// NewComposer wires a composer to its completer and corpus.
func NewComposer(completer gpt.Completer, base *knowledge.Base, model string, timeout time.Duration, logger zerolog.Logger) *Composer {
	return &Composer{
		completer: completer,
		base:      base,
		model:     model,
		timeout:   timeout,
		logger:    logger,
	}
}

// WithEmbeddings enables nearest-neighbor pre-filtering of the corpus:
// instead of summarizing all the memories, only the k fragments
// closest to the question are fed to the summarizer.
func (c *Composer) WithEmbeddings(embeddings []knowledge.Embedding, embedder gpt.Embedder, k int) *Composer {
	c.embeddings = embeddings
	c.embedder = embedder
	c.retrieveK = k
	return c
}

// Result is what the composer hands the orchestrator: the text for the
// system slot, and whether the turn should play the scripted fallback
// stream instead of the real model.
type Result struct {
	SystemPrompt string
	Dummy        bool
}

// Compose produces the system prompt for this turn. Connectivity
// failures never propagate: they come back as an apology prompt with
// Dummy set.
func (c *Composer) Compose(ctx context.Context, userContent string) Result {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if c.isGreeting(ctx, userContent) {
		return Result{SystemPrompt: c.systemPrompt(greetingInstruction)}
	}

	start := time.Now()
	prompt := fmt.Sprintf(summarizePrompt, noInfoSentinel, c.corpus(ctx, userContent), userContent)
	scratch := []models.Message{
		models.SystemMessage("You are a helpful assistant."),
		models.UserMessage(prompt),
	}
	summary, err := c.completer.Complete(ctx, scratch, c.model)
	if err != nil {
		c.logger.Error().Err(err).Msg("knowledge summarization failed, using fallback")
		return Result{SystemPrompt: Apology, Dummy: true}
	}
	c.logger.Debug().
		Dur("elapsed", time.Since(start)).
		Int("summary_len", len(summary)).
		Msg("summarized knowledge")

	if strings.Contains(strings.ToUpper(summary), noInfoSentinel) {
		summary = redirectInstruction
	}

	return Result{SystemPrompt: c.systemPrompt(summary)}
}

// isGreeting asks the cheap model whether the message is small talk.
// Failures here are not worth aborting the turn over, so they read as
// "not a greeting" and the normal summarization path runs.
func (c *Composer) isGreeting(ctx context.Context, userContent string) bool {
	scratch := []models.Message{
		models.SystemMessage("You are a helpful assistant."),
		models.UserMessage(fmt.Sprintf(greetingPrompt, userContent)),
	}
	answer, err := c.completer.Complete(ctx, scratch, c.model)
	if err != nil {
		c.logger.Warn().Err(err).Msg("greeting check failed, summarizing anyway")
		return false
	}
	return ParseYesNo(c.logger, answer)
}

// corpus returns the memories text fed to the summarizer. With
// embeddings loaded, only the fragments nearest the question are used;
// retrieval failures fall back to the full memories.
func (c *Composer) corpus(ctx context.Context, userContent string) string {
	if len(c.embeddings) == 0 || c.embedder == nil {
		return c.base.Memories
	}
	query, err := c.embedder.Embed(ctx, userContent)
	if err != nil {
		c.logger.Warn().Err(err).Msg("question embedding failed, using full memories")
		return c.base.Memories
	}
	nearest := knowledge.Nearest(query, c.embeddings, c.retrieveK)
	if len(nearest) == 0 {
		c.logger.Warn().
			Int("query_dim", len(query)).
			Msg("no embeddings matched the question vector, using full memories")
		return c.base.Memories
	}
	fragments := make([]string, len(nearest))
	for i, e := range nearest {
		fragments[i] = e.Content
	}
	return strings.Join(fragments, "\n")
}

// systemPrompt renders the final system message from the personality
// text and the summarized knowledge.
func (c *Composer) systemPrompt(summary string) string {
	return fmt.Sprintf(
		"%s\nPlease answer any questions assuming you only know the following information: %s",
		c.base.Personality, summary,
	)
}
