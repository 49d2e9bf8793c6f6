package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"contractai-backend/internal/account"
	"contractai-backend/internal/analyses"
	"contractai-backend/internal/clauses"
	"contractai-backend/internal/documents"
	"contractai-backend/internal/shared/auth"
	"contractai-backend/internal/shared/config"
	"contractai-backend/internal/shared/metrics"
	"contractai-backend/internal/shared/server/middleware"
	"contractai-backend/internal/shared/server/respond"
	"contractai-backend/internal/users"
)

// RouterDeps carries the wired handlers into route registration.
type RouterDeps struct {
	Config          config.Config
	Tokens          *auth.Tokens
	APIKeys         middleware.APIKeyLookup
	UserHandler     *users.Handler
	DocumentHandler *documents.Handler
	AnalysisHandler *analyses.Handler
	ClauseHandler   *clauses.Handler
	AccountHandler  *account.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if !deps.Config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSOrigins),
	)

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	prefix := strings.TrimRight(deps.Config.APIPrefix, "/")
	api := r.Group(prefix + "/v1")

	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{
			"status":  "ok",
			"app":     deps.Config.AppName,
			"version": "1.0.0",
		})
	})

	if deps.UserHandler != nil {
		deps.UserHandler.RegisterPublicRoutes(api)
	}

	authed := api.Group("")
	authed.Use(middleware.Auth(deps.Tokens, deps.APIKeys))
	authed.Use(middleware.RateLimit(defaultRateLimits()))
	if deps.UserHandler != nil {
		deps.UserHandler.RegisterRoutes(authed)
	}
	if deps.DocumentHandler != nil {
		deps.DocumentHandler.RegisterRoutes(authed)
	}
	if deps.AnalysisHandler != nil {
		deps.AnalysisHandler.RegisterRoutes(authed)
	}
	if deps.ClauseHandler != nil {
		deps.ClauseHandler.RegisterRoutes(authed)
	}
	if deps.AccountHandler != nil {
		deps.AccountHandler.RegisterRoutes(authed)
	}

	return r
}

// defaultRateLimits keeps uploads tighter than polling reads.
func defaultRateLimits() middleware.RateLimitConfig {
	return middleware.RateLimitConfig{
		DefaultGroup: "DEFAULT",
		GroupFor: func(c *gin.Context) string {
			if c.Request.Method == http.MethodGet && c.FullPath() != "" {
				return "POLLING"
			}
			return "DEFAULT"
		},
		Rules: map[string]middleware.RateLimitRule{
			"DEFAULT": {Rate: 2, Burst: 10},
			"POLLING": {Rate: 10, Burst: 30},
		},
	}
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
