package parser

import (
	"fmt"
	"regexp"
	"time"

	"github.com/camlog-visualizer/backend/internal/models"
)

// ProgressCallback is called periodically during parsing to report progress.
type ProgressCallback func(linesProcessed int, bytesProcessed int64, totalBytes int64)

// Parser defines the interface for log file parsers.
type Parser interface {
	// Name returns the unique name of the parser.
	Name() string
	// CanParse returns true if this parser can handle the given file.
	CanParse(filePath string) (bool, error)
	// Parse parses the entire file. sourceName is the original upload name,
	// used as a fallback source for device IDs.
	Parse(filePath, sourceName string) (*models.ParsedLog, []*models.ParseError, error)
	// ParseWithProgress parses with progress callbacks for large files.
	ParseWithProgress(filePath, sourceName string, onProgress ProgressCallback) (*models.ParsedLog, []*models.ParseError, error)
}

// Common utilities for parsing

var (
	// lineDeviceRegex extracts the camera code from an "#ID:XXXXXX-YYYYYY"
	// field. The first 6-digit group is the device ID.
	lineDeviceRegex = regexp.MustCompile(`#ID:(\d{6})-\d{6}`)

	// filenameDeviceRegex finds a 6-digit run anywhere in a filename,
	// e.g. "camera_007120_sep.txt" -> "007120".
	filenameDeviceRegex = regexp.MustCompile(`\d{6}`)
)

// ResolveDeviceID determines the device ID for a log line.
// Resolution order: the #ID: field in the line, then any 6-digit run in the
// source filename, then the Unknown sentinel.
func ResolveDeviceID(line, filenameHint string) string {
	if m := lineDeviceRegex.FindStringSubmatch(line); m != nil {
		return m[1]
	}
	if m := filenameDeviceRegex.FindString(filenameHint); m != "" {
		return m
	}
	return models.UnknownDevice
}

// FastTimestamp parses the strict "2006-01-02 15:04:05" layout using manual
// digit parsing, which is several times faster than time.Parse for the fixed
// format. Trailing content and syntactically invalid calendar dates
// (e.g. Feb 30) are rejected.
func FastTimestamp(ts string) (time.Time, error) {
	// Example: "2025-09-08 07:10:31" = exactly 19 chars
	if len(ts) != 19 {
		return time.Time{}, fmt.Errorf("timestamp must be 19 characters: %q", ts)
	}
	if ts[4] != '-' || ts[7] != '-' || ts[10] != ' ' || ts[13] != ':' || ts[16] != ':' {
		return time.Time{}, fmt.Errorf("malformed timestamp: %q", ts)
	}

	year := parseInt4(ts[0:4])
	month := parseInt2(ts[5:7])
	day := parseInt2(ts[8:10])
	hour := parseInt2(ts[11:13])
	min := parseInt2(ts[14:16])
	sec := parseInt2(ts[17:19])

	if year < 0 || month < 1 || month > 12 || day < 1 || day > 31 ||
		hour < 0 || hour > 23 || min < 0 || min > 59 || sec < 0 || sec > 59 {
		return time.Time{}, fmt.Errorf("timestamp out of range: %q", ts)
	}

	t := time.Date(year, time.Month(month), day, hour, min, sec, 0, time.UTC)
	// time.Date normalizes overflow (Feb 30 becomes Mar 2); a changed day
	// means the calendar date was invalid.
	if t.Day() != day || t.Month() != time.Month(month) {
		return time.Time{}, fmt.Errorf("invalid calendar date: %q", ts)
	}
	return t, nil
}

// parseInt2 parses a 2-digit decimal string. Returns -1 on error.
func parseInt2(s string) int {
	if len(s) != 2 {
		return -1
	}
	d1, d2 := s[0]-'0', s[1]-'0'
	if d1 > 9 || d2 > 9 {
		return -1
	}
	return int(d1)*10 + int(d2)
}

// parseInt4 parses a 4-digit decimal string. Returns -1 on error.
func parseInt4(s string) int {
	if len(s) != 4 {
		return -1
	}
	d1, d2, d3, d4 := s[0]-'0', s[1]-'0', s[2]-'0', s[3]-'0'
	if d1 > 9 || d2 > 9 || d3 > 9 || d4 > 9 {
		return -1
	}
	return int(d1)*1000 + int(d2)*100 + int(d3)*10 + int(d4)
}
