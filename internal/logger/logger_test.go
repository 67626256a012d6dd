package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	cfg := Config{
		Level:  "info",
		Format: "text",
	}
	logger := New(cfg)
	if logger == nil {
		t.Error("Expected logger to not be nil")
	}

	cfg.Format = "json"
	logger = New(cfg)
	if logger == nil {
		t.Error("Expected logger to not be nil")
	}

	// Invalid level should default to info
	cfg.Level = "invalid"
	logger = New(cfg)
	if logger == nil {
		t.Error("Expected logger to not be nil")
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Output: &buf, Level: "warn", Format: "text"})

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Expected info line to be filtered, got %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("Expected warn line in output, got %q", out)
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Output: &buf, Level: "info", Format: "json"})

	logger.WithComponent("syncer").Info("hello")

	if !strings.Contains(buf.String(), `"component":"syncer"`) {
		t.Errorf("Expected component attribute, got %q", buf.String())
	}
}

func TestWithGameAndDate(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Output: &buf, Level: "info", Format: "json"})

	logger.WithGame(700001).WithDate("2025-04-01").Info("refresh")

	out := buf.String()
	if !strings.Contains(out, `"game_pk":"700001"`) {
		t.Errorf("Expected game_pk attribute, got %q", out)
	}
	if !strings.Contains(out, `"date":"2025-04-01"`) {
		t.Errorf("Expected date attribute, got %q", out)
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	if logger == nil {
		t.Fatal("Expected discard logger to not be nil")
	}
	logger.Error("nothing to see")
}

func TestLogFormats(t *testing.T) {
	formats := []string{"text", "json"}

	for _, format := range formats {
		cfg := Config{
			Level:  "info",
			Format: format,
		}
		logger := New(cfg)
		if logger == nil {
			t.Errorf("Expected logger to not be nil for format %s", format)
		}
	}
}
