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

package history

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	dberrors "replaydb/internal/errors"
)

func TestAppendAndEntries(t *testing.T) {
	h := New()
	if h.Len() != 0 {
		t.Fatalf("Expected empty history, got %d entries", h.Len())
	}

	h.Append("CREATE t KEY id FIELDS id: INT")
	h.Append("INSERT id = 1 INTO t")

	entries := h.Entries()
	if len(entries) != 2 || entries[1] != "INSERT id = 1 INTO t" {
		t.Errorf("Unexpected entries %v", entries)
	}

	entries[0] = "mutated"
	if h.Entries()[0] == "mutated" {
		t.Error("Entries must return a copy")
	}
}

func TestWriteAndReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.txt")

	h := New()
	h.Append("CREATE t KEY id FIELDS id: INT")
	h.Append("INSERT id = 1 INTO t")
	if err := h.WriteFile(path); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "CREATE t KEY id FIELDS id: INT\nINSERT id = 1 INTO t\n" {
		t.Errorf("Unexpected file content %q", data)
	}

	lines, err := ReadLines(path)
	if err != nil {
		t.Fatalf("ReadLines failed: %v", err)
	}
	if !slices.Equal(lines, h.Entries()) {
		t.Errorf("Expected %v, got %v", h.Entries(), lines)
	}
}

func TestWriteFileTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.txt")
	if err := os.WriteFile(path, []byte("old content that is long\n"), 0644); err != nil {
		t.Fatal(err)
	}

	h := New()
	h.Append("SELECT id FROM t")
	if err := h.WriteFile(path); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	lines, _ := ReadLines(path)
	if !slices.Equal(lines, []string{"SELECT id FROM t"}) {
		t.Errorf("Expected overwritten file, got %v", lines)
	}
}

func TestIoErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := ReadLines(filepath.Join(dir, "missing.txt")); !dberrors.HasCode(err, dberrors.ErrCodeIO) {
		t.Errorf("Expected IoError, got %v", err)
	}

	h := New()
	if err := h.WriteFile(filepath.Join(dir, "no", "such", "dir.txt")); !dberrors.HasCode(err, dberrors.ErrCodeIO) {
		t.Errorf("Expected IoError, got %v", err)
	}
}
