// handlers_parse.go - Parse session operation handlers
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/camlog-visualizer/backend/internal/models"
	"github.com/camlog-visualizer/backend/internal/parser"
	"github.com/camlog-visualizer/backend/internal/storage"
)

// ParseHandlerImpl implements the ParseHandler interface
type ParseHandlerImpl struct {
	store      storage.Store
	sessionMgr SessionManager
	rules      RulesHandler
}

// NewParseHandler creates a new parse handler instance
func NewParseHandler(store storage.Store, sessionMgr SessionManager, rules RulesHandler) ParseHandler {
	return &ParseHandlerImpl{
		store:      store,
		sessionMgr: sessionMgr,
		rules:      rules,
	}
}

// HandleStartParse starts a new parsing session for one or more files
func (h *ParseHandlerImpl) HandleStartParse(c echo.Context) error {
	var req startParseRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}

	fileIDs := req.normalizeFileIDs()
	if len(fileIDs) == 0 {
		return NewValidationError("fileId or fileIds")
	}

	filePaths, fileNames, err := h.resolveFiles(fileIDs)
	if err != nil {
		return err
	}

	sess, err := h.sessionMgr.StartMultiSession(fileIDs, filePaths, fileNames)
	if err != nil {
		return NewInternalError("failed to start session", err)
	}

	return c.JSON(http.StatusAccepted, sess)
}

// HandleParseStatus returns the current status of a parsing session
func (h *ParseHandlerImpl) HandleParseStatus(c echo.Context) error {
	id := c.Param("sessionId")
	if id == "" {
		return NewValidationError("sessionId")
	}

	sess, ok := h.sessionMgr.GetSession(id)
	if !ok {
		return NewNotFoundError("session", id)
	}

	// Touch session to prevent cleanup while being viewed
	h.sessionMgr.TouchSession(id)

	return c.JSON(http.StatusOK, sess)
}

// HandleSessionKeepAlive extends session lifetime for active viewing
func (h *ParseHandlerImpl) HandleSessionKeepAlive(c echo.Context) error {
	id := c.Param("sessionId")
	if id == "" {
		return NewValidationError("sessionId")
	}

	if ok := h.sessionMgr.TouchSession(id); !ok {
		return NewNotFoundError("session", id)
	}

	return c.NoContent(http.StatusNoContent)
}

// HandleParseProgressStream streams parsing progress via SSE
func (h *ParseHandlerImpl) HandleParseProgressStream(c echo.Context) error {
	id := c.Param("sessionId")
	if id == "" {
		return NewValidationError("sessionId")
	}

	c.Response().Header().Set("Content-Type", "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().Header().Set("X-Accel-Buffering", "no")
	c.Response().WriteHeader(http.StatusOK)

	sess, ok := h.sessionMgr.GetSession(id)
	if !ok {
		h.sendSSEError(c, "session not found")
		return nil
	}

	h.sendSSEData(c, sess)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	timeout := time.NewTimer(5 * time.Minute)
	defer timeout.Stop()

	for {
		select {
		case <-ticker.C:
			sess, ok := h.sessionMgr.GetSession(id)
			if !ok {
				h.sendSSEError(c, "session not found")
				return nil
			}

			h.sendSSEData(c, sess)

			if sess.Status == models.SessionStatusComplete ||
				sess.Status == models.SessionStatusError {
				return nil
			}

		case <-timeout.C:
			h.sendSSEError(c, "stream timeout")
			return nil
		}
	}
}

// HandleGetEvents returns paginated, filtered events for a session
func (h *ParseHandlerImpl) HandleGetEvents(c echo.Context) error {
	id := c.Param("sessionId")
	if id == "" {
		return NewValidationError("sessionId")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.QueryParam("pageSize"))
	if pageSize < 1 || pageSize > 1000 {
		pageSize = 100
	}

	filter, err := buildEventFilter(c)
	if err != nil {
		return err
	}

	events, total, ok := h.sessionMgr.GetEvents(id, filter, page, pageSize)
	if !ok {
		return NewNotFoundError("session", id)
	}

	return c.JSON(http.StatusOK, eventsResponse{
		Events:   events,
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	})
}

// HandleGetEventsMsgpack returns the full filtered event sequence in
// MessagePack format, which is considerably smaller than JSON for big
// charting payloads.
func (h *ParseHandlerImpl) HandleGetEventsMsgpack(c echo.Context) error {
	id := c.Param("sessionId")
	if id == "" {
		return NewValidationError("sessionId")
	}

	filter, err := buildEventFilter(c)
	if err != nil {
		return err
	}

	events, ok := h.sessionMgr.GetAllEvents(id, filter)
	if !ok {
		return NewNotFoundError("session", id)
	}

	data, err := msgpack.Marshal(events)
	if err != nil {
		return NewInternalError("failed to encode events", err)
	}

	return c.Blob(http.StatusOK, "application/x-msgpack", data)
}

// HandleGetIntervals returns the compressed event intervals for a session
func (h *ParseHandlerImpl) HandleGetIntervals(c echo.Context) error {
	id := c.Param("sessionId")
	if id == "" {
		return NewValidationError("sessionId")
	}

	filter, err := buildEventFilter(c)
	if err != nil {
		return err
	}

	intervals, ok := h.sessionMgr.GetIntervals(id, filter)
	if !ok {
		return NewNotFoundError("session", id)
	}

	return c.JSON(http.StatusOK, intervals)
}

// HandleGetDevices returns all device IDs seen in a session
func (h *ParseHandlerImpl) HandleGetDevices(c echo.Context) error {
	id := c.Param("sessionId")
	if id == "" {
		return NewValidationError("sessionId")
	}

	devices, ok := h.sessionMgr.GetDevices(id)
	if !ok {
		return NewNotFoundError("session", id)
	}

	return c.JSON(http.StatusOK, devices)
}

// HandleGetEventKinds returns the normalized event kinds seen in a session
func (h *ParseHandlerImpl) HandleGetEventKinds(c echo.Context) error {
	id := c.Param("sessionId")
	if id == "" {
		return NewValidationError("sessionId")
	}

	kinds, ok := h.sessionMgr.GetEventKinds(id)
	if !ok {
		return NewNotFoundError("session", id)
	}

	return c.JSON(http.StatusOK, kinds)
}

// HandleGetSummary returns the activity summary for a session
func (h *ParseHandlerImpl) HandleGetSummary(c echo.Context) error {
	id := c.Param("sessionId")
	if id == "" {
		return NewValidationError("sessionId")
	}

	filter, err := buildEventFilter(c)
	if err != nil {
		return err
	}

	summary, ok := h.sessionMgr.GetSummary(id, filter, h.rules.CurrentRules())
	if !ok {
		return NewNotFoundError("session", id)
	}

	return c.JSON(http.StatusOK, summary)
}

// HandleGetBatterySeries returns the battery chart series for a session
func (h *ParseHandlerImpl) HandleGetBatterySeries(c echo.Context) error {
	id := c.Param("sessionId")
	if id == "" {
		return NewValidationError("sessionId")
	}

	filter, err := buildEventFilter(c)
	if err != nil {
		return err
	}

	points, ok := h.sessionMgr.GetBatterySeries(id, filter, h.rules.CurrentRules())
	if !ok {
		return NewNotFoundError("session", id)
	}

	return c.JSON(http.StatusOK, points)
}

// Request/Response types

type startParseRequest struct {
	FileID  string   `json:"fileId"`
	FileIDs []string `json:"fileIds"`
}

func (r *startParseRequest) normalizeFileIDs() []string {
	if len(r.FileIDs) > 0 {
		return r.FileIDs
	}
	if r.FileID != "" {
		return []string{r.FileID}
	}
	return nil
}

type eventsResponse struct {
	Events   []models.EventRecord `json:"events"`
	Page     int                  `json:"page"`
	PageSize int                  `json:"pageSize"`
	Total    int                  `json:"total"`
}

// Helper methods

func (h *ParseHandlerImpl) resolveFiles(fileIDs []string) (paths, names []string, err error) {
	for _, fid := range fileIDs {
		info, err := h.store.Get(fid)
		if err != nil {
			return nil, nil, NewNotFoundError("file", fid)
		}

		path, err := h.store.GetFilePath(fid)
		if err != nil {
			return nil, nil, NewInternalError("failed to get file path", err)
		}

		paths = append(paths, path)
		names = append(names, info.Name)
	}

	return paths, names, nil
}

// buildEventFilter reads the shared filter query params: "from" and "to" as
// inclusive YYYY-MM-DD dates, "device" repeated per selected device ID.
func buildEventFilter(c echo.Context) (parser.EventFilter, error) {
	var filter parser.EventFilter

	if from := c.QueryParam("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return filter, NewBadRequestError("invalid from date", err)
		}
		filter.From = t
	}

	if to := c.QueryParam("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return filter, NewBadRequestError("invalid to date", err)
		}
		filter.To = t
	}

	filter.Devices = c.QueryParams()["device"]

	return filter, nil
}

func (h *ParseHandlerImpl) sendSSEData(c echo.Context, data interface{}) {
	jsonData, _ := json.Marshal(data)
	fmt.Fprintf(c.Response(), "data: %s\n\n", jsonData)
	c.Response().Flush()
}

func (h *ParseHandlerImpl) sendSSEError(c echo.Context, message string) {
	h.sendSSEData(c, map[string]string{"error": message})
}
