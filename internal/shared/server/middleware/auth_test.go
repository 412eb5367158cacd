package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"ingest-backend/internal/shared/auth"
)

type stubResolver struct {
	session auth.Session
	err     error
}

func (s stubResolver) Resolve(*http.Request) (auth.Session, error) {
	return s.session, s.err
}

func TestAuthAnswersPreflightWithoutIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth(stubResolver{err: auth.ErrNoSession}))
	called := false
	router.OPTIONS("/api/files/upload", func(c *gin.Context) {
		called = true
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/files/upload", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
	if called {
		t.Fatalf("preflight must stop at the auth middleware")
	}
}

func TestAuthRejectsMissingSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	called := false
	router := gin.New()
	router.Use(Auth(stubResolver{err: auth.ErrNoSession}))
	router.POST("/api/files/upload", func(c *gin.Context) {
		called = true
	})

	req := httptest.NewRequest(http.MethodPost, "/api/files/upload", strings.NewReader("ignored"))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
	if got := strings.TrimSpace(resp.Body.String()); got != `{"error":"Unauthorized"}` {
		t.Fatalf("unexpected body %s", got)
	}
	if called {
		t.Fatalf("handler must not run without a session")
	}
}

func TestAuthStoresSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth(stubResolver{session: auth.Session{UserID: "user-7", Email: "u@example.com"}}))

	var gotID string
	var gotSession auth.Session
	router.GET("/api/me", func(c *gin.Context) {
		gotID = UserIDFromContext(c)
		gotSession, _ = SessionFromContext(c)
		c.Status(http.StatusOK)
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/me", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if gotID != "user-7" || gotSession.Email != "u@example.com" {
		t.Fatalf("unexpected identity id=%q session=%+v", gotID, gotSession)
	}
}
