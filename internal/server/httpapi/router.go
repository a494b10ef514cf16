// Package httpapi exposes the FinSight backend over HTTP for the dashboard
// frontend: the login gate, report browsing and the analysis-service proxy.
package httpapi

import (
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/finsight-app/finsight/internal/logging"
	"github.com/finsight-app/finsight/internal/server/analysis"
	"github.com/finsight-app/finsight/internal/server/config"
	"github.com/finsight-app/finsight/internal/server/services"
)

// Options configures the router builder.
type Options struct {
	Config   *config.Config
	Logger   logging.Logger
	Auth     *services.AuthService
	Reports  *services.ReportService
	Analysis *analysis.Client
}

// Build constructs a gin engine pre-configured with recovery, logging and
// CORS middleware plus all API routes.
func Build(opts Options) (*gin.Engine, error) {
	if opts.Config == nil || opts.Auth == nil {
		return nil, fmt.Errorf("http router requires config and auth service")
	}
	logger := opts.Logger.With("module", "httpapi")

	if opts.Config.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(logger))

	engine.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	h := &handlers{
		auth:     opts.Auth,
		reports:  opts.Reports,
		analysis: opts.Analysis,
		logger:   logger,
	}

	api := engine.Group("/api")

	api.POST("/auth/register", h.register)
	api.POST("/auth/login", h.login)
	// Logout is deliberately outside the session gate: deleting an
	// already-dead token is a no-op, not an auth failure.
	api.POST("/auth/logout", h.logout)

	secured := api.Group("")
	secured.Use(sessionMiddleware(opts.Auth, logger))

	secured.GET("/auth/me", h.me)

	secured.GET("/reports", h.listReports)
	secured.GET("/reports/content", h.getReport)
	secured.GET("/reports/download", h.reportDownloadURL)

	secured.GET("/analysis/health", h.analysisHealth)
	secured.POST("/analysis/upload", h.uploadAndAnalyze)
	secured.GET("/analysis/status/:id", h.analysisStatus)
	secured.GET("/analysis/dashboard", h.analysisDashboard)

	return engine, nil
}
