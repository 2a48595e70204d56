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
Package engine is the single entry point front ends use to run commands.

An Engine owns one database, whose key type is fixed when the engine is
created, and one command history. Submit runs one command at a time; the
shell, the TUI and the UDP server all go through it.

	eng := engine.New(storage.KeyTypeInt)
	out, err := eng.Submit("CREATE t KEY id FIELDS id: INT")
*/
package engine

import (
	"strings"
	"sync"
	"time"

	"replaydb/internal/command"
	dberrors "replaydb/internal/errors"
	"replaydb/internal/history"
	"replaydb/internal/logging"
	"replaydb/internal/storage"
)

// Engine serialises commands against one database and history.
type Engine struct {
	mu     sync.Mutex
	db     *storage.AnyDatabase
	hist   *history.History
	logger *logging.Logger
}

// Stats is a point-in-time summary of engine state.
type Stats struct {
	KeyType    storage.KeyType
	Tables     int
	Records    int
	HistoryLen int
}

// New creates an engine with an empty database of the given key type.
func New(kt storage.KeyType) *Engine {
	return &Engine{
		db:     storage.NewAnyDatabase(kt),
		hist:   history.New(),
		logger: logging.NewLogger("engine"),
	}
}

// Submit parses, records and executes one command.
func (e *Engine) Submit(text string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	result, err := command.HandleAny(text, e.db, e.hist)

	args := []any{
		"command", verb(text),
		"duration_ms", float64(time.Since(start).Microseconds()) / 1000.0,
		"history_len", e.hist.Len(),
	}
	if err != nil {
		e.logger.Debug("Command failed", append(args, "code", int(dberrors.GetCode(err)), "error", err)...)
		return "", err
	}
	e.logger.Debug("Command executed", args...)
	return result, nil
}

// verb returns the first word of a command for logging.
func verb(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// KeyType returns the database key type.
func (e *Engine) KeyType() storage.KeyType {
	return e.db.KeyType()
}

// KeyTag returns the type tag key fields must be declared with.
func (e *Engine) KeyTag() string {
	return e.db.KeyTag()
}

// PossibleTypes lists the field type tags.
func (e *Engine) PossibleTypes() []string {
	return e.db.PossibleTypes()
}

// TableNames returns all table names in sorted order.
func (e *Engine) TableNames() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.db.TableNames()
}

// FieldNames returns a table's fields in declaration order.
func (e *Engine) FieldNames(table string) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.db.FieldNames(table)
}

// Schema returns a table's field declarations.
func (e *Engine) Schema(table string) ([]storage.Field, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.db.Schema(table)
}

// KeyField returns a table's key field.
func (e *Engine) KeyField(table string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.db.KeyField(table)
}

// History returns a copy of the recorded commands.
func (e *Engine) History() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hist.Entries()
}

// Stats summarises the engine state.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := Stats{KeyType: e.db.KeyType(), HistoryLen: e.hist.Len()}
	for _, name := range e.db.TableNames() {
		s.Tables++
		if n, err := e.db.RecordCount(name); err == nil {
			s.Records += n
		}
	}
	return s
}
