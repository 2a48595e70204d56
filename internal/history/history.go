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

/*
Package history keeps the append-only log of accepted commands.

Every command that parses is recorded in its canonical form before it is
executed. SAVE_AS writes the log to a plain text file, one command per
line, and READ_FROM feeds such a file back through the command pipeline.
Replaying a saved file into an empty database rebuilds the state it was
saved from.

File Format:
============

	CREATE users KEY id FIELDS id: INT, name: STRING
	INSERT id = 1, name = alice INTO users
	DELETE 1 FROM users
*/
package history

import (
	"bufio"
	"os"

	dberrors "replaydb/internal/errors"
)

// maxLineSize bounds a single command line when reading a history file.
const maxLineSize = 1024 * 1024

// History is an ordered, append-only list of canonical command strings.
type History struct {
	entries []string
}

// New creates an empty history.
func New() *History {
	return &History{}
}

// Append records one command.
func (h *History) Append(entry string) {
	h.entries = append(h.entries, entry)
}

// Entries returns a copy of all recorded commands in order.
func (h *History) Entries() []string {
	return append([]string(nil), h.entries...)
}

// Len returns the number of recorded commands.
func (h *History) Len() int {
	return len(h.entries)
}

// WriteFile writes every entry followed by a newline to path, creating
// or truncating it.
func (h *History) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return dberrors.IoError("create", path, err)
	}

	w := bufio.NewWriter(f)
	for _, entry := range h.entries {
		if _, err := w.WriteString(entry); err != nil {
			f.Close()
			return dberrors.IoError("write", path, err)
		}
		if err := w.WriteByte('\n'); err != nil {
			f.Close()
			return dberrors.IoError("write", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return dberrors.IoError("write", path, err)
	}
	if err := f.Close(); err != nil {
		return dberrors.IoError("write", path, err)
	}
	return nil
}

// ReadLines returns the lines of a history file in order.
func ReadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, dberrors.IoError("open", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, dberrors.IoError("read", path, err)
	}
	return lines, nil
}
