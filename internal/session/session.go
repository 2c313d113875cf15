// Package session binds a browser to its conversation with an
// HMAC-signed cookie. The cookie value is opaque to the client: the
// conversation UUID plus a signature over it.
package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	cookieName = "sambot_session"
	cookieTTL  = 30 * 24 * time.Hour
)

// Manager signs and verifies session cookies.
type Manager struct {
	secret []byte
	secure bool
}

// NewManager creates a manager signing with secret. secure controls
// the cookie's Secure flag (off in development).
func NewManager(secret string, secure bool) *Manager {
	return &Manager{secret: []byte(secret), secure: secure}
}

// Get extracts the conversation id from the request's session cookie.
// A missing, malformed, or tampered cookie returns ok=false; callers
// treat that as "no existing session", not an error.
func (m *Manager) Get(r *http.Request) (uuid.UUID, bool) {
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return uuid.UUID{}, false
	}
	value, sig, found := strings.Cut(cookie.Value, ".")
	if !found {
		return uuid.UUID{}, false
	}
	want, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil {
		return uuid.UUID{}, false
	}
	if !hmac.Equal(want, m.sign(value)) {
		return uuid.UUID{}, false
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.UUID{}, false
	}
	return id, true
}

// Set writes the session cookie for a conversation id.
func (m *Manager) Set(w http.ResponseWriter, id uuid.UUID) {
	value := id.String()
	sig := base64.RawURLEncoding.EncodeToString(m.sign(value))
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    value + "." + sig,
		Path:     "/",
		MaxAge:   int(cookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *Manager) sign(value string) []byte {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(value))
	return mac.Sum(nil)
}
