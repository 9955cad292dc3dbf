// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"github.com/labstack/echo/v4"

	"github.com/camlog-visualizer/backend/internal/models"
	"github.com/camlog-visualizer/backend/internal/parser"
)

// UploadHandler handles file upload operations
type UploadHandler interface {
	HandleUploadFile(c echo.Context) error
	HandleUploadBinary(c echo.Context) error
	HandleUploadChunk(c echo.Context) error
	HandleCompleteUpload(c echo.Context) error
	HandleUploadJobStatus(c echo.Context) error
	HandleGetRecentFiles(c echo.Context) error
	HandleGetFile(c echo.Context) error
	HandleDeleteFile(c echo.Context) error
	HandleRenameFile(c echo.Context) error
}

// ParseHandler handles parsing session operations
type ParseHandler interface {
	HandleStartParse(c echo.Context) error
	HandleParseStatus(c echo.Context) error
	HandleParseProgressStream(c echo.Context) error
	HandleSessionKeepAlive(c echo.Context) error
	HandleGetEvents(c echo.Context) error
	HandleGetEventsMsgpack(c echo.Context) error
	HandleGetIntervals(c echo.Context) error
	HandleGetDevices(c echo.Context) error
	HandleGetEventKinds(c echo.Context) error
	HandleGetSummary(c echo.Context) error
	HandleGetBatterySeries(c echo.Context) error
}

// RulesHandler handles summary-rules configuration operations
type RulesHandler interface {
	HandleGetSummaryRules(c echo.Context) error
	HandleUpdateSummaryRules(c echo.Context) error
	CurrentRules() models.SummaryRules
	LoadDefaultRules() error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// SessionManager defines the interface for session management.
// This allows mocking in tests.
type SessionManager interface {
	StartMultiSession(fileIDs, filePaths, fileNames []string) (*models.ParseSession, error)
	GetSession(id string) (*models.ParseSession, bool)
	TouchSession(id string) bool
	DeleteParsedFile(fileID string) error
	GetEvents(id string, filter parser.EventFilter, page, pageSize int) ([]models.EventRecord, int, bool)
	GetAllEvents(id string, filter parser.EventFilter) ([]models.EventRecord, bool)
	GetIntervals(id string, filter parser.EventFilter) ([]models.IntervalRecord, bool)
	GetSummary(id string, filter parser.EventFilter, rules models.SummaryRules) (*models.ActivitySummary, bool)
	GetBatterySeries(id string, filter parser.EventFilter, rules models.SummaryRules) ([]models.BatteryPoint, bool)
	GetDevices(id string) ([]string, bool)
	GetEventKinds(id string) ([]string, bool)
}
