package models

import "time"

// NoBatteryRange is the battery range shown for intervals whose members
// carry no battery reading at all.
const NoBatteryRange = "N/A"

// IntervalRecord summarizes a maximal run of consecutive EventRecords that
// share the same (normalized event, device ID) pair.
type IntervalRecord struct {
	StartTime       time.Time `json:"startTime"`
	EndTime         time.Time `json:"endTime"`
	Event           string    `json:"event"`    // normalized event of the run
	DeviceID        string    `json:"deviceId"` // device component of the grouping key
	BatteryRange    string    `json:"batteryRange"`
	DurationMinutes float64   `json:"durationMinutes"`
	EventCount      int       `json:"eventCount"` // number of records in the run
}
