package parser

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/camlog-visualizer/backend/internal/models"
)

// DefaultSummaryRules returns the built-in thresholds and key-event counters,
// matching the stock dashboard behavior.
func DefaultSummaryRules() models.SummaryRules {
	return models.SummaryRules{
		LowBattery:    30,
		MediumBattery: 70,
		KeyEvents: []models.KeyEventRule{
			{Label: "System Power On", Pattern: "Power On"},
			{Label: "System Power Off", Pattern: "Power Off"},
			{Label: "Battery Charging sessions", Pattern: "Battery Charging"},
		},
	}
}

// ParseSummaryRules decodes and validates a YAML rules document.
func ParseSummaryRules(data []byte) (*models.SummaryRules, error) {
	var rules models.SummaryRules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parsing summary rules: %w", err)
	}
	if err := validateSummaryRules(&rules); err != nil {
		return nil, err
	}
	return &rules, nil
}

// LoadSummaryRules reads a rules file from disk. A missing file is not an
// error; the defaults are returned instead.
func LoadSummaryRules(path string) (*models.SummaryRules, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		rules := DefaultSummaryRules()
		return &rules, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading summary rules: %w", err)
	}
	return ParseSummaryRules(data)
}

func validateSummaryRules(rules *models.SummaryRules) error {
	if rules.LowBattery < 0 || rules.LowBattery > 100 {
		return fmt.Errorf("low_battery must be within 0-100, got %d", rules.LowBattery)
	}
	if rules.MediumBattery < 0 || rules.MediumBattery > 100 {
		return fmt.Errorf("medium_battery must be within 0-100, got %d", rules.MediumBattery)
	}
	if rules.MediumBattery < rules.LowBattery {
		return fmt.Errorf("medium_battery (%d) must not be below low_battery (%d)",
			rules.MediumBattery, rules.LowBattery)
	}
	for i, rule := range rules.KeyEvents {
		if rule.Pattern == "" {
			return fmt.Errorf("key_events[%d]: pattern must not be empty", i)
		}
		if rule.Label == "" {
			rules.KeyEvents[i].Label = rule.Pattern
		}
	}
	return nil
}
