/*
 * Copyright (c) 2026 Firefly Software Solutions Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func capture(t *testing.T, cfg Config) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	cfg.Output = &buf
	Configure(cfg)
	t.Cleanup(func() { Configure(DefaultConfig()) })
	return &buf
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in     string
		want   Level
		wantOK bool
	}{
		{"debug", DEBUG, true},
		{"INFO", INFO, true},
		{"Warning", WARN, true},
		{" error ", ERROR, true},
		{"verbose", INFO, false},
	}
	for _, tt := range tests {
		got, ok := ParseLevel(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseLevel(%q): expected %v/%v, got %v/%v", tt.in, tt.want, tt.wantOK, got, ok)
		}
	}
}

func TestTextOutput(t *testing.T) {
	buf := capture(t, Config{Level: INFO})

	logger := NewLogger("engine")
	logger.Info("Command executed", "zeta", 1, "alpha", "x")

	line := buf.String()
	if !strings.Contains(line, "[INFO ] [engine] Command executed alpha=x zeta=1") {
		t.Errorf("Unexpected log line %q", line)
	}
	if strings.Contains(line, "\033[") {
		t.Error("Colour codes must not be written to a non-terminal")
	}
}

func TestLevelFiltering(t *testing.T) {
	buf := capture(t, Config{Level: WARN})

	logger := NewLogger("server")
	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Errorf("Entries below WARN were written: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Error("WARN entry missing")
	}
}

func TestJSONOutput(t *testing.T) {
	buf := capture(t, Config{Level: DEBUG, JSONMode: true})

	NewLogger("shell").With("session", "s1").Error("Failed", "error", errors.New("boom"), "odd")

	var entry Entry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Output is not JSON: %v (%q)", err, buf.String())
	}
	if entry.Level != "ERROR" || entry.Component != "shell" || entry.Message != "Failed" {
		t.Errorf("Unexpected entry %+v", entry)
	}
	if entry.Fields["error"] != "boom" || entry.Fields["session"] != "s1" || entry.Fields["extra"] != "odd" {
		t.Errorf("Unexpected fields %v", entry.Fields)
	}
}

func TestRequestContext(t *testing.T) {
	buf := capture(t, Config{Level: INFO})
	logger := NewLogger("server")

	req := NewRequestContext("127.0.0.1:5000", "SELECT")
	req.LogComplete(logger, "bytes", 12)
	req.LogError(logger, errors.New("table not found"))

	out := buf.String()
	for _, want := range []string{"Request completed", "Request failed", "request_id=" + req.ID, "status=ok", "status=error", "error=table not found"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output %q", want, out)
		}
	}

	if GenerateRequestID() == GenerateRequestID() {
		t.Error("Request IDs must be unique")
	}
}
