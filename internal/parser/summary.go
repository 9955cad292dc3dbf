package parser

import (
	"strings"

	"github.com/camlog-visualizer/backend/internal/models"
)

// BuildSummary aggregates a filtered event sequence for the overview panel.
// Key-event counts match normalized events by substring, the way the
// dashboard counts "Power On" / "Power Off" / "Battery Charging" occurrences.
func BuildSummary(events []models.EventRecord, rules models.SummaryRules) *models.ActivitySummary {
	summary := &models.ActivitySummary{
		KeyEvents: make([]models.KeyEventCount, len(rules.KeyEvents)),
	}
	for i, rule := range rules.KeyEvents {
		summary.KeyEvents[i] = models.KeyEventCount{Label: rule.Label}
	}
	if len(events) == 0 {
		return summary
	}

	kinds := make(map[string]struct{})
	devices := make(map[string]struct{})
	tr := &models.TimeRange{Start: events[0].Timestamp, End: events[0].Timestamp}

	var batMin, batMax, batSum, batCount int
	for _, e := range events {
		kinds[e.NormalizedEvent] = struct{}{}
		devices[e.DeviceID] = struct{}{}

		if e.Timestamp.Before(tr.Start) {
			tr.Start = e.Timestamp
		}
		if e.Timestamp.After(tr.End) {
			tr.End = e.Timestamp
		}

		for i, rule := range rules.KeyEvents {
			if strings.Contains(e.NormalizedEvent, rule.Pattern) {
				summary.KeyEvents[i].Count++
			}
		}

		if e.Battery == nil {
			continue
		}
		b := *e.Battery
		if batCount == 0 || b < batMin {
			batMin = b
		}
		if batCount == 0 || b > batMax {
			batMax = b
		}
		batSum += b
		batCount++
		if b <= rules.LowBattery {
			summary.LowBatteryCount++
		}
	}

	summary.DateRange = tr
	summary.TotalEvents = len(events)
	summary.UniqueEventKinds = len(kinds)
	summary.DeviceCount = len(devices)
	if batCount > 0 {
		summary.Battery = &models.BatteryStats{
			Min:     batMin,
			Max:     batMax,
			Average: float64(batSum) / float64(batCount),
		}
	}

	return summary
}

// BatterySeries extracts the chronological battery readings for charting.
// Records without a reading contribute nothing.
func BatterySeries(events []models.EventRecord, rules models.SummaryRules) []models.BatteryPoint {
	points := make([]models.BatteryPoint, 0)
	for _, e := range events {
		if e.Battery == nil {
			continue
		}
		points = append(points, models.BatteryPoint{
			Timestamp: e.Timestamp,
			Battery:   *e.Battery,
			DeviceID:  e.DeviceID,
			Zone:      ZoneFor(*e.Battery, rules),
		})
	}
	return points
}

// ZoneFor classifies a battery reading against the configured thresholds.
func ZoneFor(battery int, rules models.SummaryRules) models.BatteryZone {
	switch {
	case battery <= rules.LowBattery:
		return models.BatteryZoneLow
	case battery <= rules.MediumBattery:
		return models.BatteryZoneMedium
	default:
		return models.BatteryZoneHigh
	}
}
