package session

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func setCookie(t *testing.T, m *Manager, id uuid.UUID) *http.Request {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Set(rec, id)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestRoundTrip(t *testing.T) {
	m := NewManager("test-secret", false)
	id := uuid.New()

	got, ok := m.Get(setCookie(t, m, id))
	if !ok {
		t.Fatal("expected valid session")
	}
	if got != id {
		t.Fatalf("got %s, want %s", got, id)
	}
}

func TestMissingCookie(t *testing.T) {
	m := NewManager("test-secret", false)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := m.Get(req); ok {
		t.Fatal("expected no session without a cookie")
	}
}

func TestTamperedValue(t *testing.T) {
	m := NewManager("test-secret", false)
	req := setCookie(t, m, uuid.New())

	cookie, err := req.Cookie(cookieName)
	if err != nil {
		t.Fatal(err)
	}
	other := uuid.New().String()
	_, sig, _ := strings.Cut(cookie.Value, ".")
	forged := httptest.NewRequest(http.MethodGet, "/", nil)
	forged.AddCookie(&http.Cookie{Name: cookieName, Value: other + "." + sig})

	if _, ok := m.Get(forged); ok {
		t.Fatal("accepted a forged cookie")
	}
}

func TestWrongSecret(t *testing.T) {
	a := NewManager("secret-a", false)
	b := NewManager("secret-b", false)
	req := setCookie(t, a, uuid.New())
	if _, ok := b.Get(req); ok {
		t.Fatal("accepted a cookie signed with a different secret")
	}
}

func TestGarbageCookie(t *testing.T) {
	m := NewManager("test-secret", false)
	for _, value := range []string{"", "no-dot", "notauuid.c2ln", "..."} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: cookieName, Value: value})
		if _, ok := m.Get(req); ok {
			t.Fatalf("accepted garbage cookie %q", value)
		}
	}
}
