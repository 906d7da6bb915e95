package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func setupCLI(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", filepath.Join(t.TempDir(), "montage.db"))
	t.Setenv("TIMEZONE", "Europe/Berlin")
	t.Setenv("LOGGER_LEVEL", "ERROR")
	t.Setenv("REDIS_ADDR", "")
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func mustRunCLI(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCLI(t, args...)
	if err != nil {
		t.Fatalf("montagebot %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

// Flag variables are package globals, so each command runs at most once
// with flags in this test.
func TestCLIEntryLifecycle(t *testing.T) {
	setupCLI(t)

	// Munich is far outside the default Leipzig area.
	out := mustRunCLI(t, "checkin", "morning", "--date", "2026-03-02", "--lat", "48.137", "--lon", "11.575", "--accuracy", "25")
	if !strings.Contains(out, "outside") || !strings.Contains(out, "morning_outside_area") {
		t.Fatalf("checkin output:\n%s", out)
	}

	out = mustRunCLI(t, "review", "--days", "36500")
	if !strings.Contains(out, "2026-03-02  morning_outside_area") {
		t.Fatalf("review output:\n%s", out)
	}

	out = mustRunCLI(t, "review", "resolve", "2026-03-02", "--label", "Halle 3")
	if !strings.Contains(out, "Halle 3") || strings.Contains(out, "review") {
		t.Fatalf("resolve output:\n%s", out)
	}
	out = mustRunCLI(t, "review")
	if !strings.Contains(out, "No entries need review.") {
		t.Fatalf("review after resolve:\n%s", out)
	}

	out = mustRunCLI(t, "edit", "2026-03-02", "--start", "07:00", "--end", "15:30", "--break", "30")
	if !strings.Contains(out, "07:00-15:30, break 30m") {
		t.Fatalf("edit output:\n%s", out)
	}

	mustRunCLI(t, "day-type", "off", "2026-03-03")
	out = mustRunCLI(t, "show", "2026-03-03")
	if !strings.Contains(out, "2026-03-03  off") {
		t.Fatalf("show output:\n%s", out)
	}

	out = mustRunCLI(t, "export", "--from", "2026-03-01", "--to", "2026-03-31")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[0], "date;dayType;") ||
		!strings.HasPrefix(lines[1], "2026-03-02;") || !strings.HasPrefix(lines[2], "2026-03-03;OFF") {
		t.Fatalf("export output:\n%s", out)
	}

	out = mustRunCLI(t, "delete", "2026-03-03")
	if !strings.Contains(out, "Deleted entry for 2026-03-03.") {
		t.Fatalf("delete output:\n%s", out)
	}
	out = mustRunCLI(t, "delete", "2026-03-03")
	if !strings.Contains(out, "No entry for 2026-03-03.") {
		t.Fatalf("second delete output:\n%s", out)
	}
}

func TestCLISettings(t *testing.T) {
	setupCLI(t)

	out := mustRunCLI(t, "settings")
	if !strings.Contains(out, "06:00–13:00 (on)") || !strings.Contains(out, "Leipzig") {
		t.Fatalf("default settings:\n%s", out)
	}

	out = mustRunCLI(t, "settings", "set", "--morning", "05:30-12:00", "--evening-enabled=false")
	if !strings.Contains(out, "05:30–12:00 (on)") || !strings.Contains(out, "16:00–22:30 (off)") {
		t.Fatalf("settings set output:\n%s", out)
	}

	out = mustRunCLI(t, "settings")
	if !strings.Contains(out, "05:30–12:00 (on)") {
		t.Fatalf("settings not persisted:\n%s", out)
	}
}

func TestCLIRejectsBadInput(t *testing.T) {
	setupCLI(t)

	tests := [][]string{
		{"checkin", "noon"},
		{"day-type", "holiday"},
		{"delete", "02.03.2026"},
	}
	for _, args := range tests {
		if _, err := runCLI(t, args...); err == nil {
			t.Errorf("montagebot %s succeeded", strings.Join(args, " "))
		}
	}
}
