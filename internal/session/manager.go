// Package session manages log parsing sessions and their parsed results.
package session

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/camlog-visualizer/backend/internal/models"
	"github.com/camlog-visualizer/backend/internal/parser"
)

// MaxSessions limits concurrent sessions to prevent memory exhaustion.
const MaxSessions = 10

// SessionMaxAge is how long to keep completed sessions before cleanup.
const SessionMaxAge = 30 * time.Minute

// SessionKeepAliveWindow is how long to keep sessions that are actively being used.
const SessionKeepAliveWindow = 5 * time.Minute

// Manager handles active log parsing sessions. Each session holds the full
// merged event sequence in memory for the lifetime of one dashboard session;
// filtered views and compressed intervals are recomputed from it per request.
type Manager struct {
	sessions map[string]*SessionState
	mu       sync.RWMutex
	registry *parser.Registry
	log      *zap.Logger
}

// SessionState holds the session metadata and the parsed result.
type SessionState struct {
	Session      *models.ParseSession
	Result       *models.ParsedLog
	LastAccessed time.Time
}

// NewManager creates a new session manager.
func NewManager(log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		sessions: make(map[string]*SessionState),
		registry: parser.GetGlobalRegistry(),
		log:      log,
	}
}

// StartSession begins the parsing process for a single file.
// fileName is the original upload name, used as the device-ID fallback hint.
func (m *Manager) StartSession(fileID, filePath, fileName string) (*models.ParseSession, error) {
	m.cleanupOldSessionsIfNeeded()

	sessionID := uuid.New().String()

	session := models.NewParseSession(sessionID, fileID)
	session.Status = models.SessionStatusParsing

	state := &SessionState{
		Session:      session,
		LastAccessed: time.Now(),
	}

	m.mu.Lock()
	m.sessions[sessionID] = state
	m.mu.Unlock()

	go m.runParse(sessionID, fileID, filePath, fileName)

	return session, nil
}

// StartMultiSession begins the parsing process for multiple files and merges them.
func (m *Manager) StartMultiSession(fileIDs, filePaths, fileNames []string) (*models.ParseSession, error) {
	if len(fileIDs) == 0 || len(fileIDs) != len(filePaths) || len(fileIDs) != len(fileNames) {
		return nil, fmt.Errorf("mismatched fileIDs, filePaths and fileNames")
	}

	if len(fileIDs) == 1 {
		return m.StartSession(fileIDs[0], filePaths[0], fileNames[0])
	}

	m.cleanupOldSessionsIfNeeded()

	sessionID := uuid.New().String()

	session := models.NewParseSession(sessionID, fileIDs[0])
	session.FileIDs = fileIDs
	session.Status = models.SessionStatusParsing

	state := &SessionState{
		Session:      session,
		LastAccessed: time.Now(),
	}

	m.mu.Lock()
	m.sessions[sessionID] = state
	m.mu.Unlock()

	go m.runMultiParse(sessionID, fileIDs, filePaths, fileNames)

	return session, nil
}

func (m *Manager) runParse(sessionID, fileID, filePath, fileName string) {
	// Recover from panics so a broken file can never take the backend down.
	defer func() {
		if r := recover(); r != nil {
			m.log.Error("parse panicked",
				zap.String("session_id", sessionID),
				zap.Any("panic", r))
			m.updateSessionError(sessionID, fmt.Sprintf("parse panicked: %v", r))
		}
	}()

	start := time.Now()
	m.log.Info("starting parse",
		zap.String("session_id", sessionID),
		zap.String("file_id", fileID))

	p, err := m.registry.FindParser(filePath)
	if err != nil {
		m.updateSessionError(sessionID, fmt.Sprintf("failed to find parser: %v", err))
		return
	}

	m.setProgress(sessionID, 10)

	// Progress spans 10-90% during parsing; the rest is finalization.
	progressCb := func(lines int, bytesRead, totalBytes int64) {
		progress := 10.0
		if totalBytes > 0 {
			progress = 10.0 + float64(bytesRead)*80.0/float64(totalBytes)
		}
		if progress > 89.9 {
			progress = 89.9
		}
		m.setProgress(sessionID, progress)
	}

	result, parseErrors, err := p.ParseWithProgress(filePath, fileName, progressCb)
	if err != nil {
		m.updateSessionError(sessionID, fmt.Sprintf("parse failed: %v", err))
		return
	}

	merged := parser.MergeLogs([]*models.ParsedLog{result}, []string{fileID})
	m.finalizeSession(sessionID, merged, p.Name(), parseErrors, start)
}

func (m *Manager) runMultiParse(sessionID string, fileIDs, filePaths, fileNames []string) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error("multi-file parse panicked",
				zap.String("session_id", sessionID),
				zap.Any("panic", r))
			m.updateSessionError(sessionID, fmt.Sprintf("parse panicked: %v", r))
		}
	}()

	start := time.Now()
	m.log.Info("starting multi-file parse",
		zap.String("session_id", sessionID),
		zap.Int("file_count", len(filePaths)))

	parsedLogs := make([]*models.ParsedLog, 0, len(filePaths))
	var allErrors []*models.ParseError
	var parserName string

	for i, filePath := range filePaths {
		p, err := m.registry.FindParser(filePath)
		if err != nil {
			m.updateSessionError(sessionID, fmt.Sprintf("failed to find parser for file %d: %v", i, err))
			return
		}

		if parserName == "" {
			parserName = p.Name()
		}

		result, parseErrors, err := p.Parse(filePath, fileNames[i])
		if err != nil {
			m.updateSessionError(sessionID, fmt.Sprintf("parse failed for file %d: %v", i, err))
			return
		}

		parsedLogs = append(parsedLogs, result)
		allErrors = append(allErrors, parseErrors...)

		m.setProgress(sessionID, (float64(i+1)/float64(len(filePaths)))*80.0)
	}

	merged := parser.MergeLogs(parsedLogs, fileIDs)
	m.finalizeSession(sessionID, merged, parserName, allErrors, start)
}

func (m *Manager) finalizeSession(sessionID string, merged *models.ParsedLog, parserName string, parseErrors []*models.ParseError, start time.Time) {
	elapsed := time.Since(start).Milliseconds()

	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.sessions[sessionID]
	if !ok {
		return
	}

	state.Result = merged
	state.Session.Status = models.SessionStatusComplete
	state.Session.Progress = 100
	state.Session.EntryCount = len(merged.Entries)
	state.Session.EventKindCount = len(merged.Events)
	state.Session.DeviceCount = len(merged.Devices)
	state.Session.ProcessingTimeMs = elapsed
	state.Session.ParserName = parserName

	if merged.TimeRange != nil {
		state.Session.StartTime = merged.TimeRange.Start.UnixMilli()
		state.Session.EndTime = merged.TimeRange.End.UnixMilli()
	}

	errs := make([]models.ParseError, 0, len(parseErrors))
	for _, e := range parseErrors {
		if e != nil {
			errs = append(errs, *e)
		}
	}
	state.Session.Errors = errs

	m.log.Info("parse complete",
		zap.String("session_id", sessionID),
		zap.Int("entries", len(merged.Entries)),
		zap.Int("skipped_lines", len(errs)),
		zap.Int64("elapsed_ms", elapsed))
}

func (m *Manager) setProgress(sessionID string, progress float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if state, ok := m.sessions[sessionID]; ok {
		state.Session.Progress = progress
	}
}

func (m *Manager) updateSessionError(sessionID, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.sessions[sessionID]
	if !ok {
		return
	}

	state.Session.Status = models.SessionStatusError
	state.Session.Errors = append(state.Session.Errors, models.ParseError{
		Reason: reason,
	})
}

// cleanupOldSessionsIfNeeded evicts completed sessions when at capacity.
func (m *Manager) cleanupOldSessionsIfNeeded() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sessions) < MaxSessions {
		return
	}

	var toDelete []string
	for id, state := range m.sessions {
		if state.Session.Status == models.SessionStatusComplete ||
			state.Session.Status == models.SessionStatusError {
			toDelete = append(toDelete, id)
		}
	}

	toFree := len(m.sessions) - MaxSessions + 1
	deleted := 0
	for _, id := range toDelete {
		if deleted >= toFree {
			break
		}
		delete(m.sessions, id)
		deleted++
		m.log.Info("evicted session to free memory", zap.String("session_id", id))
	}
}

// CleanupOldSessions removes sessions older than maxAge,
// but keeps sessions that have been accessed within SessionKeepAliveWindow.
func (m *Manager) CleanupOldSessions(maxAge time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	keepAliveCutoff := time.Now().Add(-SessionKeepAliveWindow)

	for id, state := range m.sessions {
		if state.Session.Status != models.SessionStatusComplete &&
			state.Session.Status != models.SessionStatusError {
			continue
		}

		if state.LastAccessed.After(keepAliveCutoff) {
			continue
		}

		if state.LastAccessed.Before(cutoff) {
			delete(m.sessions, id)
			m.log.Info("cleaned up aged session", zap.String("session_id", id))
		}
	}
}

// GetSession returns a snapshot of a session by ID. A copy is returned so
// callers can marshal it without racing against progress updates.
func (m *Manager) GetSession(id string) (*models.ParseSession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	session := *state.Session
	return &session, true
}

// TouchSession updates the LastAccessed timestamp for a session so active
// viewing prevents cleanup.
func (m *Manager) TouchSession(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.sessions[id]
	if !ok {
		return false
	}
	state.LastAccessed = time.Now()
	return true
}

// DeleteParsedFile drops sessions whose input included the given file.
func (m *Manager) DeleteParsedFile(fileID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, state := range m.sessions {
		if sessionUsesFile(state.Session, fileID) {
			delete(m.sessions, id)
			m.log.Info("removed session for deleted file",
				zap.String("session_id", id),
				zap.String("file_id", fileID))
		}
	}
	return nil
}

func sessionUsesFile(s *models.ParseSession, fileID string) bool {
	if s.FileID == fileID {
		return true
	}
	for _, id := range s.FileIDs {
		if id == fileID {
			return true
		}
	}
	return false
}

// GetEvents returns filtered, paginated events for a session.
func (m *Manager) GetEvents(id string, filter parser.EventFilter, page, pageSize int) ([]models.EventRecord, int, bool) {
	events, ok := m.filteredEvents(id, filter)
	if !ok {
		return nil, 0, false
	}

	total := len(events)
	start := (page - 1) * pageSize
	if start < 0 {
		start = 0
	}
	if start >= total {
		return []models.EventRecord{}, total, true
	}

	end := start + pageSize
	if end > total {
		end = total
	}

	return events[start:end], total, true
}

// GetAllEvents returns the full filtered event sequence for a session.
func (m *Manager) GetAllEvents(id string, filter parser.EventFilter) ([]models.EventRecord, bool) {
	return m.filteredEvents(id, filter)
}

// GetIntervals compresses the filtered event sequence for a session.
// Intervals are recomputed from scratch on every call; filters change the
// runs, so nothing cacheable survives a filter change anyway.
func (m *Manager) GetIntervals(id string, filter parser.EventFilter) ([]models.IntervalRecord, bool) {
	events, ok := m.filteredEvents(id, filter)
	if !ok {
		return nil, false
	}
	return parser.Compress(events), true
}

// GetSummary aggregates the filtered event sequence for a session.
func (m *Manager) GetSummary(id string, filter parser.EventFilter, rules models.SummaryRules) (*models.ActivitySummary, bool) {
	events, ok := m.filteredEvents(id, filter)
	if !ok {
		return nil, false
	}
	return parser.BuildSummary(events, rules), true
}

// GetBatterySeries returns the filtered battery readings for a session.
func (m *Manager) GetBatterySeries(id string, filter parser.EventFilter, rules models.SummaryRules) ([]models.BatteryPoint, bool) {
	events, ok := m.filteredEvents(id, filter)
	if !ok {
		return nil, false
	}
	return parser.BatterySeries(events, rules), true
}

// GetDevices returns the sorted device IDs seen in a session.
func (m *Manager) GetDevices(id string) ([]string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.sessions[id]
	if !ok || state.Result == nil {
		return nil, false
	}

	devices := make([]string, 0, len(state.Result.Devices))
	for d := range state.Result.Devices {
		devices = append(devices, d)
	}
	sort.Strings(devices)
	return devices, true
}

// GetEventKinds returns the sorted normalized event kinds seen in a session.
func (m *Manager) GetEventKinds(id string) ([]string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.sessions[id]
	if !ok || state.Result == nil {
		return nil, false
	}

	kinds := make([]string, 0, len(state.Result.Events))
	for k := range state.Result.Events {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds, true
}

func (m *Manager) filteredEvents(id string, filter parser.EventFilter) ([]models.EventRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.sessions[id]
	if !ok || state.Result == nil {
		return nil, false
	}

	return filter.Apply(state.Result.Entries), true
}
