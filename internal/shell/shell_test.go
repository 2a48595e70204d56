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

package shell

import (
	"bytes"
	"strings"
	"testing"

	"replaydb/internal/engine"
	"replaydb/internal/storage"
)

func run(t *testing.T, input string) (string, *engine.Engine) {
	t.Helper()
	eng := engine.New(storage.KeyTypeString)
	var out bytes.Buffer
	sh := New(eng, Options{In: strings.NewReader(input), Out: &out})
	if err := sh.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return out.String(), eng
}

func TestRunExecutesLines(t *testing.T) {
	input := strings.Join([]string{
		"CREATE users KEY name FIELDS name: STRING, age: INT",
		`INSERT name = "a", age = 3 INTO users`,
		"SELECT name, age FROM users",
		"",
	}, "\n")

	out, eng := run(t, input)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected 3 output lines, got %d: %q", len(lines), out)
	}
	if lines[0] != "Table created successfully" {
		t.Errorf("Expected create message, got %q", lines[0])
	}
	if lines[2] != "age=3, name=a" {
		t.Errorf("Expected selected record, got %q", lines[2])
	}
	if len(eng.History()) != 3 {
		t.Errorf("Expected 3 history entries, got %d", len(eng.History()))
	}
}

func TestEmptyLineStopsSession(t *testing.T) {
	out, eng := run(t, "CREATE t KEY id FIELDS id: STRING\n\nCREATE u KEY id FIELDS id: STRING\n")
	if strings.Count(out, "Table created") != 1 {
		t.Errorf("Expected the session to stop at the empty line, got %q", out)
	}
	if len(eng.TableNames()) != 1 {
		t.Errorf("Expected 1 table, got %v", eng.TableNames())
	}
}

func TestErrorsDoNotStopSession(t *testing.T) {
	out, _ := run(t, "DROP users\nSELECT a FROM missing\nCREATE t KEY id FIELDS id: STRING\n")
	if !strings.Contains(out, "ERROR: ") {
		t.Errorf("Expected formatted error, got %q", out)
	}
	if !strings.Contains(out, "Table created successfully") {
		t.Errorf("Expected the session to continue after errors, got %q", out)
	}
}

func TestLocalCommands(t *testing.T) {
	out, _ := run(t, "\\dt\nCREATE b KEY id FIELDS id: STRING\nCREATE a KEY id FIELDS id: STRING\n\\dt\n\\x\n\\h\n\\q\nCREATE c KEY id FIELDS id: STRING\n")

	if !strings.Contains(out, "No tables") {
		t.Errorf("Expected empty table listing, got %q", out)
	}
	if !strings.Contains(out, "a\nb\n") {
		t.Errorf("Expected sorted table listing, got %q", out)
	}
	if !strings.Contains(out, "Unknown local command \\x") {
		t.Errorf("Expected unknown local command message, got %q", out)
	}
	if !strings.Contains(out, "READ_FROM <path>") {
		t.Errorf("Expected help text, got %q", out)
	}
	if strings.Count(out, "Table created") != 2 {
		t.Errorf("Expected \\q to end the session, got %q", out)
	}
	if strings.Contains(out, Prompt) {
		t.Error("Prompt must not be printed for non-terminal input")
	}
}

func TestFilterInput(t *testing.T) {
	if _, ok := filterInput('a'); !ok {
		t.Error("Expected ordinary runes to pass")
	}
}
