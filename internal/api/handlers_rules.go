// handlers_rules.go - Summary rule configuration handlers
package api

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/labstack/echo/v4"
	"gopkg.in/yaml.v3"

	"github.com/camlog-visualizer/backend/internal/models"
	"github.com/camlog-visualizer/backend/internal/parser"
)

const rulesFileName = "summary_rules.yaml"

// maxRulesBodySize caps the accepted YAML body for rule updates
const maxRulesBodySize = 64 * 1024

// RulesHandlerImpl implements the RulesHandler interface. The active rule
// set lives in memory behind a mutex and is persisted to the data directory
// so it survives restarts.
type RulesHandlerImpl struct {
	mu      sync.RWMutex
	current models.SummaryRules
	dataDir string
}

// NewRulesHandler creates a new rules handler backed by dataDir
func NewRulesHandler(dataDir string) RulesHandler {
	return &RulesHandlerImpl{
		current: parser.DefaultSummaryRules(),
		dataDir: dataDir,
	}
}

// LoadDefaultRules loads the persisted rule set from the data directory,
// falling back to built-in defaults when no file exists.
func (h *RulesHandlerImpl) LoadDefaultRules() error {
	rules, err := parser.LoadSummaryRules(h.rulesPath())
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.current = *rules
	h.mu.Unlock()
	return nil
}

// CurrentRules returns a snapshot of the active rule set
func (h *RulesHandlerImpl) CurrentRules() models.SummaryRules {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// HandleGetSummaryRules returns the active rule set as JSON
func (h *RulesHandlerImpl) HandleGetSummaryRules(c echo.Context) error {
	return c.JSON(http.StatusOK, h.CurrentRules())
}

// HandleUpdateSummaryRules replaces the active rule set. The body is the
// same YAML document format used on disk.
func (h *RulesHandlerImpl) HandleUpdateSummaryRules(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxRulesBodySize))
	if err != nil {
		return NewBadRequestError("failed to read request body", err)
	}

	rules, err := parser.ParseSummaryRules(body)
	if err != nil {
		return NewBadRequestError("invalid rules document", err)
	}

	if err := h.persist(*rules); err != nil {
		return NewInternalError("failed to save rules", err)
	}

	h.mu.Lock()
	h.current = *rules
	h.mu.Unlock()

	return c.JSON(http.StatusOK, rules)
}

func (h *RulesHandlerImpl) rulesPath() string {
	return filepath.Join(h.dataDir, rulesFileName)
}

func (h *RulesHandlerImpl) persist(rules models.SummaryRules) error {
	data, err := yaml.Marshal(rules)
	if err != nil {
		return err
	}
	return os.WriteFile(h.rulesPath(), data, 0644)
}
