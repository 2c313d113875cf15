// Package render produces the HTML the browser sees: the index page
// and the conversation fragments pushed over the event stream.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/dodobird181/sambot2/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer renders the embedded templates.
type Renderer struct {
	index *template.Template
	convo *template.Template
}

// New parses the embedded templates.
func New() (*Renderer, error) {
	index, err := template.ParseFS(templateFS, "templates/index.html", "templates/conversation.html")
	if err != nil {
		return nil, fmt.Errorf("parse index template: %w", err)
	}
	convo, err := template.ParseFS(templateFS, "templates/conversation.html")
	if err != nil {
		return nil, fmt.Errorf("parse conversation template: %w", err)
	}
	return &Renderer{index: index, convo: convo}, nil
}

// IndexData is what the index page template needs.
type IndexData struct {
	Messages []models.Message
	Pills    []string
}

// Index renders the full chat page.
func (r *Renderer) Index(convo *models.Conversation, pills []string) (string, error) {
	var buf bytes.Buffer
	data := IndexData{Messages: convo.Display(), Pills: pills}
	if err := r.index.ExecuteTemplate(&buf, "index.html", data); err != nil {
		return "", fmt.Errorf("render index: %w", err)
	}
	return buf.String(), nil
}

// Conversation renders the chat history as a single-line HTML
// fragment. Event stream records are newline-delimited, so the
// fragment must not contain literal newlines or tabs.
func (r *Renderer) Conversation(convo *models.Conversation) (string, error) {
	var buf bytes.Buffer
	if err := r.convo.ExecuteTemplate(&buf, "conversation.html", convo.Display()); err != nil {
		return "", fmt.Errorf("render conversation: %w", err)
	}
	return flatten(buf.String()), nil
}

// flatten strips the whitespace the template's own formatting
// introduces so the fragment fits on one SSE data line.
func flatten(s string) string {
	s = strings.ReplaceAll(s, "\n", "")
	s = strings.ReplaceAll(s, "\t", "")
	return s
}
