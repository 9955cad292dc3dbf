// handlers_parse_test.go - Tests for parse handlers
package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/camlog-visualizer/backend/internal/models"
	"github.com/camlog-visualizer/backend/internal/parser"
	"github.com/camlog-visualizer/backend/internal/testutil"
)

// MockSessionManager is a mock implementation for testing
type MockSessionManager struct {
	sessions map[string]*models.ParseSession
	events   []models.EventRecord
}

func NewMockSessionManager() *MockSessionManager {
	return &MockSessionManager{
		sessions: make(map[string]*models.ParseSession),
	}
}

func (m *MockSessionManager) StartMultiSession(fileIDs, filePaths, fileNames []string) (*models.ParseSession, error) {
	session := &models.ParseSession{
		ID:      "test-session-123",
		FileID:  fileIDs[0],
		FileIDs: fileIDs,
		Status:  models.SessionStatusPending,
	}
	m.sessions[session.ID] = session
	return session, nil
}

func (m *MockSessionManager) GetSession(id string) (*models.ParseSession, bool) {
	sess, ok := m.sessions[id]
	return sess, ok
}

func (m *MockSessionManager) TouchSession(id string) bool {
	_, ok := m.sessions[id]
	return ok
}

func (m *MockSessionManager) DeleteParsedFile(fileID string) error {
	return nil
}

func (m *MockSessionManager) GetEvents(id string, filter parser.EventFilter, page, pageSize int) ([]models.EventRecord, int, bool) {
	if _, ok := m.sessions[id]; !ok {
		return nil, 0, false
	}
	filtered := filter.Apply(m.events)
	return filtered, len(filtered), true
}

func (m *MockSessionManager) GetAllEvents(id string, filter parser.EventFilter) ([]models.EventRecord, bool) {
	if _, ok := m.sessions[id]; !ok {
		return nil, false
	}
	return filter.Apply(m.events), true
}

func (m *MockSessionManager) GetIntervals(id string, filter parser.EventFilter) ([]models.IntervalRecord, bool) {
	if _, ok := m.sessions[id]; !ok {
		return nil, false
	}
	return parser.Compress(filter.Apply(m.events)), true
}

func (m *MockSessionManager) GetSummary(id string, filter parser.EventFilter, rules models.SummaryRules) (*models.ActivitySummary, bool) {
	if _, ok := m.sessions[id]; !ok {
		return nil, false
	}
	return parser.BuildSummary(filter.Apply(m.events), rules), true
}

func (m *MockSessionManager) GetBatterySeries(id string, filter parser.EventFilter, rules models.SummaryRules) ([]models.BatteryPoint, bool) {
	if _, ok := m.sessions[id]; !ok {
		return nil, false
	}
	return parser.BatterySeries(filter.Apply(m.events), rules), true
}

func (m *MockSessionManager) GetDevices(id string) ([]string, bool) {
	if _, ok := m.sessions[id]; !ok {
		return nil, false
	}
	return []string{"007120"}, true
}

func (m *MockSessionManager) GetEventKinds(id string) ([]string, bool) {
	if _, ok := m.sessions[id]; !ok {
		return nil, false
	}
	return []string{"Power On"}, true
}

func newTestParseHandler(t *testing.T, sessionMgr SessionManager, store *testutil.MockStorage) ParseHandler {
	t.Helper()
	if store == nil {
		store = testutil.NewMockStorage()
	}
	rules := NewRulesHandler(t.TempDir())
	return NewParseHandler(store, sessionMgr, rules)
}

func TestParseHandler_HandleStartParse(t *testing.T) {
	t.Run("starts session for known file", func(t *testing.T) {
		store := testutil.NewMockStorage()
		store.AddFile("file-1", "camera.log", []byte("log"))

		sessionMgr := NewMockSessionManager()
		handler := newTestParseHandler(t, sessionMgr, store)

		e := echo.New()
		body, _ := json.Marshal(startParseRequest{FileID: "file-1"})
		req := httptest.NewRequest(http.MethodPost, "/api/parse", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		if err := handler.HandleStartParse(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.Code != http.StatusAccepted {
			t.Errorf("expected 202, got %d", rec.Code)
		}

		var sess models.ParseSession
		if err := json.Unmarshal(rec.Body.Bytes(), &sess); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if sess.ID == "" {
			t.Error("expected session ID in response")
		}
	})

	t.Run("multi-file request", func(t *testing.T) {
		store := testutil.NewMockStorage()
		store.AddFile("file-a", "a.log", []byte("log"))
		store.AddFile("file-b", "b.log", []byte("log"))

		sessionMgr := NewMockSessionManager()
		handler := newTestParseHandler(t, sessionMgr, store)

		e := echo.New()
		body, _ := json.Marshal(startParseRequest{FileIDs: []string{"file-a", "file-b"}})
		req := httptest.NewRequest(http.MethodPost, "/api/parse", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		if err := handler.HandleStartParse(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var sess models.ParseSession
		json.Unmarshal(rec.Body.Bytes(), &sess)
		if len(sess.FileIDs) != 2 {
			t.Errorf("expected 2 file IDs, got %d", len(sess.FileIDs))
		}
	})

	t.Run("missing file ID", func(t *testing.T) {
		handler := newTestParseHandler(t, NewMockSessionManager(), nil)

		e := echo.New()
		req := httptest.NewRequest(http.MethodPost, "/api/parse", bytes.NewReader([]byte(`{}`)))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.HandleStartParse(c)
		apiErr, ok := err.(*APIError)
		if !ok || apiErr.Code != "VALIDATION_ERROR" {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("unknown file ID", func(t *testing.T) {
		handler := newTestParseHandler(t, NewMockSessionManager(), nil)

		e := echo.New()
		body, _ := json.Marshal(startParseRequest{FileID: "missing"})
		req := httptest.NewRequest(http.MethodPost, "/api/parse", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler.HandleStartParse(c)
		apiErr, ok := err.(*APIError)
		if !ok || apiErr.Status != http.StatusNotFound {
			t.Errorf("expected 404 APIError, got %v", err)
		}
	})
}

func TestParseHandler_HandleParseStatus(t *testing.T) {
	sessionMgr := NewMockSessionManager()
	sessionMgr.sessions["sess-1"] = &models.ParseSession{
		ID:     "sess-1",
		Status: models.SessionStatusComplete,
	}
	handler := newTestParseHandler(t, sessionMgr, nil)
	e := echo.New()

	t.Run("existing session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("sessionId")
		c.SetParamValues("sess-1")

		if err := handler.HandleParseStatus(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("unknown session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("sessionId")
		c.SetParamValues("missing")

		err := handler.HandleParseStatus(c)
		apiErr, ok := err.(*APIError)
		if !ok || apiErr.Status != http.StatusNotFound {
			t.Errorf("expected 404 APIError, got %v", err)
		}
	})
}

func TestParseHandler_HandleGetIntervals(t *testing.T) {
	base := time.Date(2025, 9, 8, 7, 0, 0, 0, time.UTC)
	battery := 95

	sessionMgr := NewMockSessionManager()
	sessionMgr.sessions["sess-1"] = &models.ParseSession{ID: "sess-1"}
	sessionMgr.events = []models.EventRecord{
		{Timestamp: base, NormalizedEvent: "Battery Charging", DeviceID: "007120", Battery: &battery},
		{Timestamp: base.Add(5 * time.Minute), NormalizedEvent: "Battery Charging", DeviceID: "007120", Battery: &battery},
		{Timestamp: base.Add(6 * time.Minute), NormalizedEvent: "Power Off", DeviceID: "007120"},
	}

	handler := newTestParseHandler(t, sessionMgr, nil)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("sessionId")
	c.SetParamValues("sess-1")

	if err := handler.HandleGetIntervals(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var intervals []models.IntervalRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &intervals); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(intervals) != 2 {
		t.Fatalf("expected 2 intervals, got %d", len(intervals))
	}
	if intervals[0].BatteryRange != "95%" {
		t.Errorf("expected '95%%', got %q", intervals[0].BatteryRange)
	}
	if intervals[1].BatteryRange != "N/A" {
		t.Errorf("expected 'N/A', got %q", intervals[1].BatteryRange)
	}
}

func TestParseHandler_FilterParams(t *testing.T) {
	base := time.Date(2025, 9, 8, 7, 0, 0, 0, time.UTC)

	sessionMgr := NewMockSessionManager()
	sessionMgr.sessions["sess-1"] = &models.ParseSession{ID: "sess-1"}
	sessionMgr.events = []models.EventRecord{
		{Timestamp: base, NormalizedEvent: "Power On", DeviceID: "007120"},
		{Timestamp: base.AddDate(0, 0, 2), NormalizedEvent: "Power On", DeviceID: "007121"},
	}

	handler := newTestParseHandler(t, sessionMgr, nil)
	e := echo.New()

	t.Run("date and device filters apply", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/?from=2025-09-09&device=007121", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("sessionId")
		c.SetParamValues("sess-1")

		if err := handler.HandleGetEvents(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var resp eventsResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Total != 1 {
			t.Errorf("expected 1 event after filtering, got %d", resp.Total)
		}
	})

	t.Run("malformed date is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/?from=yesterday", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("sessionId")
		c.SetParamValues("sess-1")

		err := handler.HandleGetEvents(c)
		apiErr, ok := err.(*APIError)
		if !ok || apiErr.Status != http.StatusBadRequest {
			t.Errorf("expected 400 APIError, got %v", err)
		}
	})
}

func TestParseHandler_HandleGetEventsMsgpack(t *testing.T) {
	base := time.Date(2025, 9, 8, 7, 0, 0, 0, time.UTC)

	sessionMgr := NewMockSessionManager()
	sessionMgr.sessions["sess-1"] = &models.ParseSession{ID: "sess-1"}
	sessionMgr.events = []models.EventRecord{
		{Timestamp: base, NormalizedEvent: "Power On", DeviceID: "007120"},
	}

	handler := newTestParseHandler(t, sessionMgr, nil)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("sessionId")
	c.SetParamValues("sess-1")

	if err := handler.HandleGetEventsMsgpack(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ct := rec.Header().Get("Content-Type"); ct != "application/x-msgpack" {
		t.Errorf("expected msgpack content type, got %s", ct)
	}

	var events []models.EventRecord
	if err := msgpack.Unmarshal(rec.Body.Bytes(), &events); err != nil {
		t.Fatalf("failed to decode msgpack body: %v", err)
	}
	if len(events) != 1 || events[0].NormalizedEvent != "Power On" {
		t.Errorf("unexpected decoded events: %+v", events)
	}
}

func TestParseHandler_HandleGetSummary(t *testing.T) {
	base := time.Date(2025, 9, 8, 7, 0, 0, 0, time.UTC)
	low := 20

	sessionMgr := NewMockSessionManager()
	sessionMgr.sessions["sess-1"] = &models.ParseSession{ID: "sess-1"}
	sessionMgr.events = []models.EventRecord{
		{Timestamp: base, NormalizedEvent: "Power On", DeviceID: "007120"},
		{Timestamp: base.Add(time.Minute), NormalizedEvent: "Battery Charging", DeviceID: "007120", Battery: &low},
	}

	handler := newTestParseHandler(t, sessionMgr, nil)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("sessionId")
	c.SetParamValues("sess-1")

	if err := handler.HandleGetSummary(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var summary models.ActivitySummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if summary.TotalEvents != 2 {
		t.Errorf("expected 2 total events, got %d", summary.TotalEvents)
	}
	if summary.LowBatteryCount != 1 {
		t.Errorf("expected 1 low battery reading, got %d", summary.LowBatteryCount)
	}
}

func TestParseHandler_HandleSessionKeepAlive(t *testing.T) {
	sessionMgr := NewMockSessionManager()
	sessionMgr.sessions["sess-1"] = &models.ParseSession{ID: "sess-1"}
	handler := newTestParseHandler(t, sessionMgr, nil)
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("sessionId")
	c.SetParamValues("sess-1")

	if err := handler.HandleSessionKeepAlive(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
}
