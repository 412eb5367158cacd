package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ingest-backend/internal/ingest"
	"ingest-backend/internal/shared/auth"
	"ingest-backend/internal/shared/config"
	"ingest-backend/internal/shared/metrics"
	"ingest-backend/internal/shared/server/middleware"
	"ingest-backend/internal/shared/server/respond"
)

// BlobsPath is where the local blob store is served from.
const BlobsPath = "/blobs"

// RouterDeps holds what the router needs beyond config.
type RouterDeps struct {
	Config        config.Config
	Resolver      auth.SessionResolver
	UploadHandler *ingest.Handler
	RateLimiter   *middleware.RateLimiter
	// LocalBlobDir is served under BlobsPath when set.
	LocalBlobDir string
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	authMW := middleware.Auth(deps.Resolver)

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	api.GET("/me", authMW, meHandler)

	if deps.UploadHandler != nil {
		deps.UploadHandler.RegisterRoutes(api, authMW, middleware.RateLimit(middleware.RateLimitConfig{
			Scope: "upload",
			Rule: middleware.RateLimitRule{
				Rate:  deps.Config.RateLimitRPS,
				Burst: deps.Config.RateLimitBurst,
			},
			Limiter: deps.RateLimiter,
		}))
	}

	r.GET("/metrics", metrics.Handler())

	if deps.LocalBlobDir != "" {
		r.Static(BlobsPath, deps.LocalBlobDir)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
