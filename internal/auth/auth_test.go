package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSessionRoundTrip(t *testing.T) {
	w := httptest.NewRecorder()
	CreateSession(w, 42)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		req.AddCookie(c)
	}
	uid, ok := ParseSession(req)
	if !ok || uid != 42 {
		t.Fatalf("expected uid 42 got %d ok=%v", uid, ok)
	}
}

func TestParseSessionRejectsTamperedCookie(t *testing.T) {
	w := httptest.NewRecorder()
	CreateSession(w, 42)
	cookie := w.Result().Cookies()[0]

	// Claim another user id while keeping the original signature.
	parts := strings.SplitN(cookie.Value, ".", 2)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: cookie.Name, Value: "7." + parts[1]})
	if _, ok := ParseSession(req); ok {
		t.Fatal("tampered cookie must not validate")
	}
}

func TestParseSessionRejectsGarbage(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "not-a-session"})
	if _, ok := ParseSession(req); ok {
		t.Fatal("garbage cookie must not validate")
	}
}

func TestRequireAuthRedirectsBrowser(t *testing.T) {
	h := Middleware(RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})))
	req := httptest.NewRequest(http.MethodGet, "/produk", nil)
	req.Header.Set("Accept", "text/html")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/login" {
		t.Fatalf("expected redirect to /login got %d %s", w.Code, w.Header().Get("Location"))
	}
}

func TestRequireAuthJSON401(t *testing.T) {
	h := Middleware(RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})))
	req := httptest.NewRequest(http.MethodGet, "/api/produk", nil)
	req.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", w.Code)
	}
}

func TestRequireAuthVerifierRejectsDeletedUser(t *testing.T) {
	SetUserVerifier(func(_ context.Context, uid uint) bool { return false })
	defer SetUserVerifier(nil)

	wcreate := httptest.NewRecorder()
	CreateSession(wcreate, 42)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range wcreate.Result().Cookies() {
		req.AddCookie(c)
	}
	req.Header.Set("Accept", "application/json")

	ran := false
	h := Middleware(RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { ran = true })))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if ran {
		t.Fatal("handler must not run for a deleted user")
	}
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", w.Code)
	}
}
