// Package models contains domain types for the Camera Log Dashboard.
package models

import "time"

// UnknownDevice is the sentinel device ID used when no 6-digit camera code
// can be resolved from the line or the source filename.
const UnknownDevice = "Unknown"

// EventRecord represents a single parsed line from a camera activity log.
type EventRecord struct {
	Timestamp       time.Time `json:"timestamp" msgpack:"ts"`
	RawEvent        string    `json:"rawEvent" msgpack:"raw"`
	NormalizedEvent string    `json:"normalizedEvent" msgpack:"event"`
	Battery         *int      `json:"battery,omitempty" msgpack:"bat,omitempty"` // 0-100, nil when the line carries no reading
	DeviceID        string    `json:"deviceId" msgpack:"dev"`
	SourceID        string    `json:"sourceId,omitempty" msgpack:"src,omitempty"` // File ID for merged sessions
}

// HasBattery reports whether the record carries a battery reading.
func (e *EventRecord) HasBattery() bool {
	return e.Battery != nil
}

// ParsedLog represents the result of parsing one or more log files.
type ParsedLog struct {
	Entries   []EventRecord       `json:"entries"`
	Events    map[string]struct{} `json:"events"`  // unique normalized event kinds
	Devices   map[string]struct{} `json:"devices"` // unique device IDs
	TimeRange *TimeRange          `json:"timeRange,omitempty"`
}

// TimeRange represents a time window.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewParsedLog creates a new empty ParsedLog.
func NewParsedLog() *ParsedLog {
	return &ParsedLog{
		Entries: make([]EventRecord, 0),
		Events:  make(map[string]struct{}),
		Devices: make(map[string]struct{}),
	}
}
