// filter_test.go - Tests for event filtering
package parser

import (
	"testing"
	"time"

	"github.com/camlog-visualizer/backend/internal/models"
)

func TestEventFilter(t *testing.T) {
	day1 := time.Date(2025, 9, 8, 7, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 9, 9, 12, 30, 0, 0, time.UTC)
	day3 := time.Date(2025, 9, 10, 23, 59, 59, 0, time.UTC)

	events := []models.EventRecord{
		makeEvent(day1, "Power On", "007120", nil),
		makeEvent(day2, "Recording Start", "007121", nil),
		makeEvent(day3, "Power Off", "007120", nil),
	}

	t.Run("zero filter returns a copy of everything", func(t *testing.T) {
		var f EventFilter
		out := f.Apply(events)

		if len(out) != len(events) {
			t.Fatalf("Expected %d events, got %d", len(events), len(out))
		}

		out[0].DeviceID = "mutated"
		if events[0].DeviceID == "mutated" {
			t.Error("Expected Apply to return a fresh slice")
		}
	})

	t.Run("from bound is date-inclusive", func(t *testing.T) {
		f := EventFilter{From: time.Date(2025, 9, 9, 0, 0, 0, 0, time.UTC)}
		out := f.Apply(events)

		if len(out) != 2 {
			t.Fatalf("Expected 2 events, got %d", len(out))
		}
		if !out[0].Timestamp.Equal(day2) {
			t.Error("Expected events on the from-date itself to be included")
		}
	})

	t.Run("to bound includes the whole end day", func(t *testing.T) {
		// The to-date has no time component; the 23:59:59 event on that day
		// must still pass.
		f := EventFilter{To: time.Date(2025, 9, 10, 0, 0, 0, 0, time.UTC)}
		out := f.Apply(events)

		if len(out) != 3 {
			t.Fatalf("Expected 3 events, got %d", len(out))
		}
	})

	t.Run("device filter", func(t *testing.T) {
		f := EventFilter{Devices: []string{"007120"}}
		out := f.Apply(events)

		if len(out) != 2 {
			t.Fatalf("Expected 2 events, got %d", len(out))
		}
		for _, e := range out {
			if e.DeviceID != "007120" {
				t.Errorf("Unexpected device %q", e.DeviceID)
			}
		}
	})

	t.Run("combined bounds and device", func(t *testing.T) {
		f := EventFilter{
			From:    time.Date(2025, 9, 9, 0, 0, 0, 0, time.UTC),
			To:      time.Date(2025, 9, 10, 0, 0, 0, 0, time.UTC),
			Devices: []string{"007120"},
		}
		out := f.Apply(events)

		if len(out) != 1 {
			t.Fatalf("Expected 1 event, got %d", len(out))
		}
		if !out[0].Timestamp.Equal(day3) {
			t.Errorf("Expected the day-3 event, got %v", out[0].Timestamp)
		}
	})

	t.Run("order is preserved", func(t *testing.T) {
		f := EventFilter{Devices: []string{"007120", "007121"}}
		out := f.Apply(events)

		for i := 1; i < len(out); i++ {
			if out[i].Timestamp.Before(out[i-1].Timestamp) {
				t.Fatal("Expected filtered events to keep their original order")
			}
		}
	})
}
