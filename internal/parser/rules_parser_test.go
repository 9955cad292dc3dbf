package parser

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseSummaryRules(t *testing.T) {
	content := `
low_battery: 25
medium_battery: 65

key_events:
  - label: "Camera Power Cycles"
    pattern: "Power On"
  - pattern: "Battery Charging"
`

	rules, err := ParseSummaryRules([]byte(content))
	if err != nil {
		t.Fatalf("ParseSummaryRules failed: %v", err)
	}

	if rules.LowBattery != 25 {
		t.Errorf("expected low_battery 25, got %d", rules.LowBattery)
	}
	if rules.MediumBattery != 65 {
		t.Errorf("expected medium_battery 65, got %d", rules.MediumBattery)
	}
	if len(rules.KeyEvents) != 2 {
		t.Fatalf("expected 2 key events, got %d", len(rules.KeyEvents))
	}
	if rules.KeyEvents[0].Label != "Camera Power Cycles" {
		t.Errorf("expected explicit label, got %s", rules.KeyEvents[0].Label)
	}

	// A missing label falls back to the pattern
	if rules.KeyEvents[1].Label != "Battery Charging" {
		t.Errorf("expected label to default to pattern, got %s", rules.KeyEvents[1].Label)
	}
}

func TestParseSummaryRulesValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"low battery above range", "low_battery: 150\nmedium_battery: 160"},
		{"negative threshold", "low_battery: -1\nmedium_battery: 70"},
		{"medium below low", "low_battery: 70\nmedium_battery: 30"},
		{"empty pattern", "low_battery: 30\nmedium_battery: 70\nkey_events:\n  - label: X\n    pattern: \"\""},
		{"malformed yaml", "low_battery: [30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseSummaryRules([]byte(tt.content)); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadSummaryRules(t *testing.T) {
	t.Run("missing file returns defaults", func(t *testing.T) {
		rules, err := LoadSummaryRules(filepath.Join(t.TempDir(), "nope.yaml"))
		if err != nil {
			t.Fatalf("LoadSummaryRules failed: %v", err)
		}

		defaults := DefaultSummaryRules()
		if rules.LowBattery != defaults.LowBattery || rules.MediumBattery != defaults.MediumBattery {
			t.Errorf("expected default thresholds, got %d/%d", rules.LowBattery, rules.MediumBattery)
		}
		if len(rules.KeyEvents) != len(defaults.KeyEvents) {
			t.Errorf("expected %d default key events, got %d", len(defaults.KeyEvents), len(rules.KeyEvents))
		}
	})

	t.Run("reads file from disk", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rules.yaml")
		if err := os.WriteFile(path, []byte("low_battery: 10\nmedium_battery: 50"), 0644); err != nil {
			t.Fatal(err)
		}

		rules, err := LoadSummaryRules(path)
		if err != nil {
			t.Fatalf("LoadSummaryRules failed: %v", err)
		}
		if rules.LowBattery != 10 || rules.MediumBattery != 50 {
			t.Errorf("expected 10/50, got %d/%d", rules.LowBattery, rules.MediumBattery)
		}
	})
}
