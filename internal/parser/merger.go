package parser

import (
	"sort"

	"github.com/camlog-visualizer/backend/internal/models"
)

// MergeLogs merges per-file parse results into a single chronological log.
// Entries are annotated with their source file ID and stable-sorted by
// timestamp, so ties keep their input-encounter order and identical inputs
// always produce identical output. Every entry survives the merge; the
// compression stage depends on that.
func MergeLogs(logs []*models.ParsedLog, sourceIDs []string) *models.ParsedLog {
	if len(logs) == 0 {
		return models.NewParsedLog()
	}

	totalEntries := 0
	for _, log := range logs {
		totalEntries += len(log.Entries)
	}

	merged := &models.ParsedLog{
		Entries: make([]models.EventRecord, 0, totalEntries),
		Events:  make(map[string]struct{}),
		Devices: make(map[string]struct{}),
	}

	for i, log := range logs {
		sourceID := ""
		if i < len(sourceIDs) {
			sourceID = sourceIDs[i]
		}

		for _, entry := range log.Entries {
			entry.SourceID = sourceID
			merged.Entries = append(merged.Entries, entry)
		}

		for ev := range log.Events {
			merged.Events[ev] = struct{}{}
		}
		for dev := range log.Devices {
			merged.Devices[dev] = struct{}{}
		}
	}

	sort.SliceStable(merged.Entries, func(i, j int) bool {
		return merged.Entries[i].Timestamp.Before(merged.Entries[j].Timestamp)
	})

	if len(merged.Entries) > 0 {
		merged.TimeRange = &models.TimeRange{
			Start: merged.Entries[0].Timestamp,
			End:   merged.Entries[len(merged.Entries)-1].Timestamp,
		}
	}

	return merged
}
