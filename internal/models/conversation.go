package models

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrOutOfTurn is returned when an append would break the strict
	// user/assistant alternation after the system message.
	ErrOutOfTurn = errors.New("message out of turn")

	// ErrSystemAppend is returned when a system message is appended.
	// The system slot is index 0 and is only written via SetSystem.
	ErrSystemAppend = errors.New("append does not accept system messages, use SetSystem")

	// ErrRoleMismatch is returned when Update would change the role of
	// the message being replaced.
	ErrRoleMismatch = errors.New("replacement role does not match")

	// ErrNoMessage is returned by Latest when the role filter matches
	// nothing.
	ErrNoMessage = errors.New("no matching message")
)

// Conversation is an ordered list of messages owned by one browser
// session. Index 0 is always the system message; everything after it
// strictly alternates user, assistant, user, assistant.
type Conversation struct {
	ID       uuid.UUID `json:"id"`
	Messages []Message `json:"messages"`
}

// NewConversation creates a conversation holding only an empty system
// message, keyed by a fresh UUID.
func NewConversation() *Conversation {
	return &Conversation{
		ID:       uuid.New(),
		Messages: []Message{SystemMessage("")},
	}
}

// Append adds a message to the end of the conversation, enforcing the
// turn-order invariant. System messages are rejected.
func (c *Conversation) Append(msg Message) error {
	if msg.Role == RoleSystem {
		return ErrSystemAppend
	}
	if !msg.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrOutOfTurn, msg.Role)
	}
	last := c.Messages[len(c.Messages)-1]
	if last.Role == msg.Role {
		return fmt.Errorf("%w: got %s after %s", ErrOutOfTurn, msg.Role, last.Role)
	}
	// The first non-system message must come from the user.
	if last.Role == RoleSystem && msg.Role == RoleAssistant {
		return fmt.Errorf("%w: expected user, got assistant", ErrOutOfTurn)
	}
	c.Messages = append(c.Messages, msg)
	return nil
}

// SetSystem replaces the system message unconditionally.
func (c *Conversation) SetSystem(msg Message) {
	msg.Role = RoleSystem
	c.Messages[0] = msg
}

// Update replaces the last message in the conversation. The replacement
// must carry the same role as the message it replaces.
func (c *Conversation) Update(msg Message) error {
	last := c.Messages[len(c.Messages)-1]
	if last.Role != msg.Role {
		return fmt.Errorf("%w: have %s, got %s", ErrRoleMismatch, last.Role, msg.Role)
	}
	c.Messages[len(c.Messages)-1] = msg
	return nil
}

// Latest returns the most recent message, scanning backward. When roles
// are given, only messages matching one of them are considered.
func (c *Conversation) Latest(roles ...Role) (Message, error) {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if len(roles) == 0 {
			return c.Messages[i], nil
		}
		for _, r := range roles {
			if c.Messages[i].Role == r {
				return c.Messages[i], nil
			}
		}
	}
	return Message{}, ErrNoMessage
}

// Display returns the messages shown to the user, i.e. everything
// except the system message.
func (c *Conversation) Display() []Message {
	out := make([]Message, 0, len(c.Messages)-1)
	for _, m := range c.Messages {
		if m.Role != RoleSystem {
			out = append(out, m)
		}
	}
	return out
}

// UserQuestions returns the content of every user message in order.
// Used to filter suggestion pills against what was already asked.
func (c *Conversation) UserQuestions() []string {
	var out []string
	for _, m := range c.Messages {
		if m.Role == RoleUser {
			out = append(out, m.Content)
		}
	}
	return out
}

// Clone returns a deep copy sharing nothing with the original. Used
// when a conversation is mutated as a scratch object for a sub-call.
func (c *Conversation) Clone() *Conversation {
	msgs := make([]Message, len(c.Messages))
	copy(msgs, c.Messages)
	return &Conversation{ID: c.ID, Messages: msgs}
}
