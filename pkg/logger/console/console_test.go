package console

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestConsoleLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsoleLogger(ConsoleLoggerParams{Output: &buf})

	l.Debug("hidden")
	l.Info("[Worker] Job done", "job_id", "job-1")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line written at info level: %q", out)
	}
	if !strings.Contains(out, "[Worker] Job done") || !strings.Contains(out, "job-1") {
		t.Errorf("output = %q", out)
	}

	buf.Reset()
	NewConsoleLogger(ConsoleLoggerParams{Debug: true, Output: &buf}).Debug("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("debug line missing: %q", buf.String())
	}
}

func TestConsoleLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	NewConsoleLogger(ConsoleLoggerParams{JSON: true, Output: &buf}).Warn("[Queue] Retrying", "retries", 2)

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("output %q is not JSON: %v", buf.String(), err)
	}
	if line["msg"] != "[Queue] Retrying" || line["retries"] != float64(2) {
		t.Errorf("line = %v", line)
	}
}
