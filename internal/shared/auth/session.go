package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"
)

// SessionCookie is the cookie consulted when no bearer token is sent.
const SessionCookie = "session"

// devSecret signs sessions when no secret is configured outside production.
const devSecret = "dev-secret"

// ErrNoSession reports that the request carries no valid session.
var ErrNoSession = errors.New("no session")

// Session is the authenticated identity behind a request.
type Session struct {
	UserID    string
	Email     string
	Name      string
	ExpiresAt time.Time
}

// SessionResolver looks up the session for an inbound request.
type SessionResolver interface {
	Resolve(r *http.Request) (Session, error)
}

// JWTResolver resolves sessions from HS256 tokens carried in the
// Authorization header or the session cookie.
type JWTResolver struct {
	secret []byte
	now    func() time.Time
}

// NewJWTResolver builds a resolver. An empty secret falls back to the
// development secret; config validation rejects that in production.
func NewJWTResolver(secret string) *JWTResolver {
	return &JWTResolver{secret: SecretBytes(secret), now: time.Now}
}

// SecretBytes returns the signing key for a configured secret.
func SecretBytes(secret string) []byte {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		secret = devSecret
	}
	return []byte(secret)
}

// Resolve returns the request's session or ErrNoSession.
func (j *JWTResolver) Resolve(r *http.Request) (Session, error) {
	token := tokenFromRequest(r)
	if token == "" {
		return Session{}, ErrNoSession
	}

	claims, err := VerifyJWT(j.secret, token, j.now())
	if err != nil {
		return Session{}, ErrNoSession
	}

	session := Session{
		UserID: claims.Sub,
		Email:  claims.Email,
		Name:   claims.Name,
	}
	if claims.Exp > 0 {
		session.ExpiresAt = time.Unix(claims.Exp, 0).UTC()
	}
	return session, nil
}

func tokenFromRequest(r *http.Request) string {
	if r == nil {
		return ""
	}
	if header := strings.TrimSpace(r.Header.Get("Authorization")); header != "" {
		if !strings.HasPrefix(header, "Bearer ") {
			return ""
		}
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer"))
	}
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		return strings.TrimSpace(cookie.Value)
	}
	return ""
}

var _ SessionResolver = (*JWTResolver)(nil)
