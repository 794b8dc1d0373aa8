package session

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the session cookie issued on login and registration.
const CookieName = "session"

// Manager associates the current browser session with an authenticated
// username. Handlers only see this capability; cookies and tokens stay
// behind it.
type Manager interface {
	// Establish marks the browser session as authenticated for username.
	Establish(w http.ResponseWriter, username string) error
	// CurrentUser returns the authenticated username for the request, if
	// any.
	CurrentUser(r *http.Request) (string, bool)
	// Clear removes authentication from the session.
	Clear(w http.ResponseWriter)
}

// Claims defines the JWT claims structure.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// JWTManager implements Manager with a signed token in an HttpOnly cookie.
// There is no server-side session registry: the token is the session, and
// logout clears the cookie rather than revoking the token.
type JWTManager struct {
	key    []byte
	ttl    time.Duration
	secure bool
}

// NewJWTManager creates a manager signing with the given secret. secure
// controls the cookie's Secure attribute.
func NewJWTManager(secret string, ttl time.Duration, secure bool) *JWTManager {
	return &JWTManager{key: []byte(secret), ttl: ttl, secure: secure}
}

func (m *JWTManager) Establish(w http.ResponseWriter, username string) error {
	expirationTime := time.Now().Add(m.ttl)
	claims := &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.key)
	if err != nil {
		return fmt.Errorf("failed to sign session token: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    signed,
		Expires:  expirationTime,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
	})
	return nil
}

func (m *JWTManager) CurrentUser(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return "", false
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(cookie.Value, claims, func(token *jwt.Token) (interface{}, error) {
		return m.key, nil
	})
	if err != nil || !token.Valid || claims.Username == "" {
		return "", false
	}
	return claims.Username, true
}

func (m *JWTManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
	})
}
