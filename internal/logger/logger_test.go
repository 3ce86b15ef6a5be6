package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestLevels(t *testing.T) {
	tests := []struct {
		in   string
		want logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{" WARN ", logrus.WarnLevel},
		{"error", logrus.ErrorLevel},
		{"", logrus.InfoLevel},
		{"chatty", logrus.InfoLevel},
	}
	for _, tt := range tests {
		if got := New(tt.in).GetLevel(); got != tt.want {
			t.Errorf("New(%q) level = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithOutput(&buf, "info")
	l.WithField("resume_id", "r-1").Info("resume parsed")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("not json: %v (%s)", err, buf.String())
	}
	if entry["message"] != "resume parsed" || entry["resume_id"] != "r-1" || entry["level"] != "info" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}
