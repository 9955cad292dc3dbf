package parser

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/camlog-visualizer/backend/internal/models"
)

const (
	batteryMarker    = "Battery Level -"
	normalizeMarker  = " - Battery Level - "
	unknownEventText = "Unknown"

	// progressInterval controls how often the progress callback fires.
	progressInterval = 100000
)

// CameraActivityParser handles plain-text camera activity logs.
// Format: "2025-09-08 07:10:31 #ID:007120-000000 #USB Remove - Battery Level -  100%"
type CameraActivityParser struct {
	intern *StringIntern
}

func NewCameraActivityParser() *CameraActivityParser {
	return &CameraActivityParser{
		intern: GetGlobalIntern(),
	}
}

func (p *CameraActivityParser) Name() string {
	return "camera_activity"
}

// CanParse samples the first non-blank lines and accepts the file when most
// of them look like timestamped camera events.
func (p *CameraActivityParser) CanParse(filePath string) (bool, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return false, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	checked := 0
	matched := 0
	for scanner.Scan() && checked < 10 {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		checked++
		if len(line) >= 19 && strings.Contains(line, "#") {
			if _, err := FastTimestamp(line[:19]); err == nil {
				matched++
			}
		}
	}

	return checked > 0 && float64(matched)/float64(checked) >= 0.6, nil
}

func (p *CameraActivityParser) Parse(filePath, sourceName string) (*models.ParsedLog, []*models.ParseError, error) {
	return p.ParseWithProgress(filePath, sourceName, nil)
}

func (p *CameraActivityParser) ParseWithProgress(filePath, sourceName string, onProgress ProgressCallback) (*models.ParsedLog, []*models.ParseError, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	var totalBytes int64
	if info, err := file.Stat(); err == nil {
		totalBytes = info.Size()
	}

	result := models.NewParsedLog()
	errors := make([]*models.ParseError, 0)

	scanner := bufio.NewScanner(file)
	lineNum := 0
	var bytesRead int64
	for scanner.Scan() {
		lineNum++
		raw := scanner.Text()
		bytesRead += int64(len(raw)) + 1

		// Blank and separator lines are expected between entries; skip
		// them without recording an error.
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" || !strings.Contains(trimmed, "#") {
			continue
		}

		entry, parseErr := p.ParseLine(trimmed, lineNum, sourceName)
		if parseErr != nil {
			errors = append(errors, parseErr)
			continue
		}

		result.Entries = append(result.Entries, *entry)
		result.Events[entry.NormalizedEvent] = struct{}{}
		result.Devices[entry.DeviceID] = struct{}{}

		if onProgress != nil && lineNum%progressInterval == 0 {
			onProgress(lineNum, bytesRead, totalBytes)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}

	if len(result.Entries) > 0 {
		tr := &models.TimeRange{
			Start: result.Entries[0].Timestamp,
			End:   result.Entries[0].Timestamp,
		}
		for _, e := range result.Entries[1:] {
			if e.Timestamp.Before(tr.Start) {
				tr.Start = e.Timestamp
			}
			if e.Timestamp.After(tr.End) {
				tr.End = e.Timestamp
			}
		}
		result.TimeRange = tr
	}

	return result, errors, nil
}

// ParseLine converts one log line into an EventRecord.
// filenameHint is the original upload name, used as a fallback source for
// the device ID. A nil EventRecord with a non-nil ParseError means the line
// is discarded; the batch continues regardless.
func (p *CameraActivityParser) ParseLine(line string, lineNum int, filenameHint string) (*models.EventRecord, *models.ParseError) {
	line = strings.TrimSpace(line)
	if line == "" || !strings.Contains(line, "#") {
		return nil, &models.ParseError{
			Line:    lineNum,
			Content: line,
			Reason:  "no event fields in line",
		}
	}

	parts := strings.Split(line, "#")

	ts, err := FastTimestamp(strings.TrimSpace(parts[0]))
	if err != nil {
		return nil, &models.ParseError{
			Line:    lineNum,
			Content: line,
			Reason:  "invalid timestamp",
		}
	}

	// parts[1] is the "#ID:XXXXXX-YYYYYY" device field; it is parsed for the
	// device ID below and excluded from the event text.
	rawEvent := joinEventTokens(parts)
	normalized := normalizeEvent(rawEvent)
	battery := extractBattery(rawEvent)
	deviceID := ResolveDeviceID(line, filenameHint)

	return &models.EventRecord{
		Timestamp:       ts,
		RawEvent:        rawEvent,
		NormalizedEvent: p.intern.Intern(normalized),
		Battery:         battery,
		DeviceID:        p.intern.Intern(deviceID),
	}, nil
}

// joinEventTokens rejoins the trimmed, non-empty segments after the device
// field with single spaces.
func joinEventTokens(parts []string) string {
	if len(parts) < 3 {
		return unknownEventText
	}
	tokens := make([]string, 0, len(parts)-2)
	for _, part := range parts[2:] {
		if t := strings.TrimSpace(part); t != "" {
			tokens = append(tokens, t)
		}
	}
	if len(tokens) == 0 {
		return unknownEventText
	}
	return strings.Join(tokens, " ")
}

// normalizeEvent strips the trailing battery-level annotation so that
// readings differing only in percentage group together. Applying it to an
// already-normalized string is a no-op.
func normalizeEvent(rawEvent string) string {
	if idx := strings.Index(rawEvent, normalizeMarker); idx >= 0 {
		return strings.TrimSpace(rawEvent[:idx])
	}
	return rawEvent
}

// extractBattery pulls the integer percentage after the last "Battery Level -"
// occurrence. Any parse failure yields absence, never an error.
func extractBattery(rawEvent string) *int {
	idx := strings.LastIndex(rawEvent, batteryMarker)
	if idx < 0 {
		return nil
	}
	s := strings.TrimSpace(rawEvent[idx+len(batteryMarker):])
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	if s == "" {
		return nil
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return nil
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}
