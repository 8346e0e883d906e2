package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewAppliesOptions(t *testing.T) {
	var buf bytes.Buffer
	logger := New(WithOutput(&buf), WithLevel(logrus.DebugLevel), WithFormat("json"))

	logger.WithField("sentinel", "annotated_dup").Debug("fragment loaded")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected json output, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "fragment loaded" || entry["sentinel"] != "annotated_dup" {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestParseLevelFallsBackToInfo(t *testing.T) {
	if got := ParseLevel("debug"); got != logrus.DebugLevel {
		t.Fatalf("expected debug, got %v", got)
	}
	if got := ParseLevel("nonsense"); got != logrus.InfoLevel {
		t.Fatalf("expected info fallback, got %v", got)
	}
}

func TestEnvLevelOverride(t *testing.T) {
	t.Setenv("DOXNAV_LOG_LEVEL", "warn")
	var buf bytes.Buffer
	logger := New(WithOutput(&buf))
	logger.Info("hidden")
	logger.Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}
