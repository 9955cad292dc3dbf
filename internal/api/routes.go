// routes.go - Route registration helpers
// This file provides a clean way to register all API routes
package api

import (
	"github.com/labstack/echo/v4"

	"github.com/camlog-visualizer/backend/internal/storage"
	"github.com/camlog-visualizer/backend/internal/upload"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Store             storage.Store
	SessionMgr        SessionManager
	UploadMgr         *upload.Manager
	DataDir           string
	Version           string
	AllowFileDeletion bool
}

// Handlers holds all handler instances
type Handlers struct {
	Health HealthHandler
	Upload UploadHandler
	Parse  ParseHandler
	Rules  RulesHandler

	allowFileDeletion bool
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	rules := NewRulesHandler(deps.DataDir)
	return &Handlers{
		Health:            NewHealthHandler(deps.Version),
		Upload:            NewUploadHandler(deps.Store, deps.SessionMgr, deps.UploadMgr),
		Parse:             NewParseHandler(deps.Store, deps.SessionMgr, rules),
		Rules:             rules,
		allowFileDeletion: deps.AllowFileDeletion,
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	// Health check
	e.GET("/api/health", handlers.Health.HandleHealth)

	// File upload routes
	uploadGroup := e.Group("/api/files")
	uploadGroup.POST("/upload", handlers.Upload.HandleUploadFile)
	uploadGroup.POST("/upload/chunk", handlers.Upload.HandleUploadChunk)
	uploadGroup.POST("/upload/complete", handlers.Upload.HandleCompleteUpload)
	uploadGroup.POST("/upload/binary", handlers.Upload.HandleUploadBinary)
	uploadGroup.GET("/upload/jobs/:jobId", handlers.Upload.HandleUploadJobStatus)
	uploadGroup.GET("/recent", handlers.Upload.HandleGetRecentFiles)
	uploadGroup.GET("/:id", handlers.Upload.HandleGetFile)
	if handlers.allowFileDeletion {
		uploadGroup.DELETE("/:id", handlers.Upload.HandleDeleteFile)
	}
	uploadGroup.PUT("/:id", handlers.Upload.HandleRenameFile)

	// Parse session routes
	parseGroup := e.Group("/api/parse")
	parseGroup.POST("", handlers.Parse.HandleStartParse)
	parseGroup.GET("/:sessionId/status", handlers.Parse.HandleParseStatus)
	parseGroup.POST("/:sessionId/keepalive", handlers.Parse.HandleSessionKeepAlive)
	parseGroup.GET("/:sessionId/progress", handlers.Parse.HandleParseProgressStream)
	parseGroup.GET("/:sessionId/events", handlers.Parse.HandleGetEvents)
	parseGroup.GET("/:sessionId/events/msgpack", handlers.Parse.HandleGetEventsMsgpack)
	parseGroup.GET("/:sessionId/intervals", handlers.Parse.HandleGetIntervals)
	parseGroup.GET("/:sessionId/devices", handlers.Parse.HandleGetDevices)
	parseGroup.GET("/:sessionId/event-kinds", handlers.Parse.HandleGetEventKinds)
	parseGroup.GET("/:sessionId/summary", handlers.Parse.HandleGetSummary)
	parseGroup.GET("/:sessionId/battery", handlers.Parse.HandleGetBatterySeries)

	// Summary rule configuration routes
	rulesGroup := e.Group("/api/rules")
	rulesGroup.GET("/summary", handlers.Rules.HandleGetSummaryRules)
	rulesGroup.PUT("/summary", handlers.Rules.HandleUpdateSummaryRules)
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo) {
	e.HTTPErrorHandler = ErrorHandler
}
