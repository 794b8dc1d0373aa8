package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newRequestWithCookies(t *testing.T, rec *httptest.ResponseRecorder) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	for _, cookie := range rec.Result().Cookies() {
		req.AddCookie(cookie)
	}
	return req
}

func TestEstablishCurrentUserRoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour, false)

	rec := httptest.NewRecorder()
	if err := m.Establish(rec, "alice"); err != nil {
		t.Fatalf("Establish: %v", err)
	}

	username, ok := m.CurrentUser(newRequestWithCookies(t, rec))
	if !ok || username != "alice" {
		t.Fatalf("CurrentUser: got (%q, %v)", username, ok)
	}
}

func TestCurrentUser_NoCookie(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour, false)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := m.CurrentUser(req); ok {
		t.Fatalf("expected no user without a cookie")
	}
}

func TestCurrentUser_TamperedToken(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour, false)

	rec := httptest.NewRecorder()
	m.Establish(rec, "alice")
	cookie := rec.Result().Cookies()[0]

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value + "x"})
	if _, ok := m.CurrentUser(req); ok {
		t.Fatalf("tampered token accepted")
	}
}

func TestCurrentUser_WrongKey(t *testing.T) {
	issuer := NewJWTManager("secret-a", time.Hour, false)
	verifier := NewJWTManager("secret-b", time.Hour, false)

	rec := httptest.NewRecorder()
	issuer.Establish(rec, "alice")

	if _, ok := verifier.CurrentUser(newRequestWithCookies(t, rec)); ok {
		t.Fatalf("token signed with another key accepted")
	}
}

func TestCurrentUser_Expired(t *testing.T) {
	m := NewJWTManager("test-secret", -time.Minute, false)

	rec := httptest.NewRecorder()
	m.Establish(rec, "alice")

	// CurrentUser must reject the expired token even though the browser
	// would normally have dropped the cookie already.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, cookie := range rec.Result().Cookies() {
		req.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
	}
	if _, ok := m.CurrentUser(req); ok {
		t.Fatalf("expired token accepted")
	}
}

func TestClear_ExpiresCookie(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour, false)

	rec := httptest.NewRecorder()
	m.Clear(rec)

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}
	if cookies[0].Value != "" || cookies[0].MaxAge >= 0 {
		t.Fatalf("Clear did not expire the cookie: %+v", cookies[0])
	}
}

type fakeUserChecker map[string]bool

func (f fakeUserChecker) UserExists(username string) (bool, error) {
	return f[username], nil
}

func TestRequireUser(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour, false)
	users := fakeUserChecker{"alice": true}

	var seen string
	handler := RequireUser(m, users)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = Username(r)
	}))

	// Anonymous request redirects to login.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/login" {
		t.Fatalf("anonymous: got %d -> %q", rec.Code, rec.Header().Get("Location"))
	}

	// Authenticated request passes the username through.
	issued := httptest.NewRecorder()
	m.Establish(issued, "alice")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, newRequestWithCookies(t, issued))
	if rec.Code != http.StatusOK || seen != "alice" {
		t.Fatalf("authenticated: got %d, username %q", rec.Code, seen)
	}

	// A session naming a user the store no longer knows is treated as
	// unauthenticated.
	issued = httptest.NewRecorder()
	m.Establish(issued, "ghost")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, newRequestWithCookies(t, issued))
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/login" {
		t.Fatalf("stale session: got %d -> %q", rec.Code, rec.Header().Get("Location"))
	}
}
