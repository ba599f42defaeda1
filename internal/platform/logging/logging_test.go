package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/ogurasousui/hr-lifecycle-engine/internal/platform/config"
)

func TestNew_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := New(config.LoggingConfig{Level: "info", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Debug().Msg("hidden")
	logger.Info().Str("saga", "leave_approval").Msg("visible")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected only the info line, got %q", buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("expected json output: %v", err)
	}
	if entry["saga"] != "leave_approval" || entry["service"] != "hr-lifecycle" || entry["message"] != "visible" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	t.Parallel()

	if _, err := New(config.LoggingConfig{Level: "loud"}, nil); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
