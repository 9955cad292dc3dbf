package models

// SummaryRules defines the YAML configuration for summary thresholds and the
// key-event counters shown in the overall summary.
type SummaryRules struct {
	// LowBattery is the inclusive percentage at or below which a reading
	// counts as a low-battery occurrence (chart zone "low").
	LowBattery int `json:"lowBattery" yaml:"low_battery"`
	// MediumBattery is the inclusive upper bound of the "medium" chart zone.
	// Readings above it fall into the "high" zone.
	MediumBattery int `json:"mediumBattery" yaml:"medium_battery"`
	// KeyEvents are substring patterns counted against normalized events.
	KeyEvents []KeyEventRule `json:"keyEvents" yaml:"key_events"`
}

// KeyEventRule counts normalized events containing Pattern under Label.
type KeyEventRule struct {
	Label   string `json:"label" yaml:"label"`
	Pattern string `json:"pattern" yaml:"pattern"`
}
