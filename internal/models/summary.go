package models

import "time"

// ActivitySummary aggregates one filtered batch of events for the overview
// panel: date range, totals, battery statistics and key-event counts.
type ActivitySummary struct {
	DateRange        *TimeRange      `json:"dateRange,omitempty"`
	TotalEvents      int             `json:"totalEvents"`
	UniqueEventKinds int             `json:"uniqueEventKinds"`
	DeviceCount      int             `json:"deviceCount"`
	Battery          *BatteryStats   `json:"battery,omitempty"` // nil when no reading in the batch
	KeyEvents        []KeyEventCount `json:"keyEvents"`
	LowBatteryCount  int             `json:"lowBatteryCount"`
}

// BatteryStats holds min/max/average over the observed battery readings.
type BatteryStats struct {
	Min     int     `json:"min"`
	Max     int     `json:"max"`
	Average float64 `json:"average"`
}

// KeyEventCount is the number of events matching one KeyEventRule.
type KeyEventCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// BatteryZone classifies a reading for chart coloring.
type BatteryZone string

const (
	BatteryZoneLow    BatteryZone = "low"
	BatteryZoneMedium BatteryZone = "medium"
	BatteryZoneHigh   BatteryZone = "high"
)

// BatteryPoint is one sample of the battery-over-time series.
type BatteryPoint struct {
	Timestamp time.Time   `json:"timestamp"`
	Battery   int         `json:"battery"`
	DeviceID  string      `json:"deviceId"`
	Zone      BatteryZone `json:"zone"`
}
