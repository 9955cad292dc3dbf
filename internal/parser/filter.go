package parser

import (
	"time"

	"github.com/camlog-visualizer/backend/internal/models"
)

// EventFilter narrows an event sequence before compression or summarizing.
// From/To bound the date component of the timestamp inclusively (zero means
// unbounded); Devices restricts to the listed device IDs (empty means all).
type EventFilter struct {
	From    time.Time
	To      time.Time
	Devices []string
}

// IsZero reports whether the filter selects everything.
func (f EventFilter) IsZero() bool {
	return f.From.IsZero() && f.To.IsZero() && len(f.Devices) == 0
}

// Apply returns the events matching the filter, in their original order.
// The input slice is never mutated; downstream compression always works on
// a freshly built sequence.
func (f EventFilter) Apply(events []models.EventRecord) []models.EventRecord {
	if f.IsZero() {
		out := make([]models.EventRecord, len(events))
		copy(out, events)
		return out
	}

	var deviceSet map[string]struct{}
	if len(f.Devices) > 0 {
		deviceSet = make(map[string]struct{}, len(f.Devices))
		for _, d := range f.Devices {
			deviceSet[d] = struct{}{}
		}
	}

	from := truncateToDate(f.From)
	to := truncateToDate(f.To)

	out := make([]models.EventRecord, 0, len(events))
	for _, e := range events {
		day := truncateToDate(e.Timestamp)
		if !f.From.IsZero() && day.Before(from) {
			continue
		}
		if !f.To.IsZero() && day.After(to) {
			continue
		}
		if deviceSet != nil {
			if _, ok := deviceSet[e.DeviceID]; !ok {
				continue
			}
		}
		out = append(out, e)
	}
	return out
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
