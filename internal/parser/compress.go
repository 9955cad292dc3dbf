package parser

import (
	"fmt"

	"github.com/camlog-visualizer/backend/internal/models"
)

// groupKey identifies a run of consecutive events. Both components must
// match for a record to extend the open run; a device change alone starts a
// new interval even when the event text is identical.
type groupKey struct {
	event  string
	device string
}

// batteryAcc accumulates the battery readings observed within one run.
// Only min and max matter for the rendered range, so the accumulator keeps
// just those; arrival order of the readings cannot affect the result.
type batteryAcc struct {
	min, max int
	seen     bool
}

func (a *batteryAcc) add(b *int) {
	if b == nil {
		return
	}
	if !a.seen {
		a.min, a.max = *b, *b
		a.seen = true
		return
	}
	if *b < a.min {
		a.min = *b
	}
	if *b > a.max {
		a.max = *b
	}
}

// rangeText formats the accumulated readings for the events table:
// a single percentage when all readings agree, "min% - max%" when they
// differ, "N/A" when the run carried no reading.
func (a *batteryAcc) rangeText() string {
	if !a.seen {
		return models.NoBatteryRange
	}
	if a.min == a.max {
		return fmt.Sprintf("%d%%", a.min)
	}
	return fmt.Sprintf("%d%% - %d%%", a.min, a.max)
}

// Compress collapses runs of consecutive events that share the same
// (normalized event, device ID) pair into interval records. The input must
// already be sorted ascending by timestamp; the walk is a single O(n) pass
// and every record lands in exactly one interval.
func Compress(events []models.EventRecord) []models.IntervalRecord {
	if len(events) == 0 {
		return []models.IntervalRecord{}
	}

	intervals := make([]models.IntervalRecord, 0)

	first := events[0]
	open := models.IntervalRecord{
		StartTime:  first.Timestamp,
		EndTime:    first.Timestamp,
		Event:      first.NormalizedEvent,
		DeviceID:   first.DeviceID,
		EventCount: 1,
	}
	key := groupKey{event: first.NormalizedEvent, device: first.DeviceID}
	acc := batteryAcc{}
	acc.add(first.Battery)

	for _, e := range events[1:] {
		k := groupKey{event: e.NormalizedEvent, device: e.DeviceID}
		if k == key {
			open.EndTime = e.Timestamp
			open.EventCount++
			acc.add(e.Battery)
			continue
		}

		intervals = append(intervals, closeInterval(open, &acc))

		open = models.IntervalRecord{
			StartTime:  e.Timestamp,
			EndTime:    e.Timestamp,
			Event:      e.NormalizedEvent,
			DeviceID:   e.DeviceID,
			EventCount: 1,
		}
		key = k
		acc = batteryAcc{}
		acc.add(e.Battery)
	}

	// The last group is always open at end-of-input; flush it.
	intervals = append(intervals, closeInterval(open, &acc))

	return intervals
}

func closeInterval(open models.IntervalRecord, acc *batteryAcc) models.IntervalRecord {
	open.BatteryRange = acc.rangeText()
	open.DurationMinutes = open.EndTime.Sub(open.StartTime).Minutes()
	return open
}
