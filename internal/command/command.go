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
Package command parses and executes the ReplayDB command language.

Command Processing Pipeline:
============================

 1. Dispatch: the trimmed input is matched by prefix against CREATE,
    INSERT, DELETE, SELECT, SAVE_AS and READ_FROM, in that order.
 2. Parse: the command's segments are located by searching for the first
    occurrence of each following keyword. INSERT, DELETE and SELECT
    resolve their table at this point.
 3. Record: the canonical form of the parsed command is appended to the
    history. SAVE_AS and READ_FROM are never recorded.
 4. Execute: the command runs against the database and returns a result
    string.

A parse failure leaves both the database and the history untouched. An
execution failure leaves the database untouched but the command stays in
the history.

Grammar:
========

	CREATE <table> KEY <key_field> FIELDS <name: TYPE, ...>
	INSERT <name = value, ...> INTO <table>
	DELETE <key> FROM <table>
	SELECT <field, ...> FROM <table> [WHERE <field op value, ...>]
	SAVE_AS <path>
	READ_FROM <path>

Keywords are matched as plain substrings, so a table or field name that
contains a later keyword (for example a table called "MONKEY") cannot be
expressed.
*/
package command

import (
	"strings"

	dberrors "replaydb/internal/errors"
	"replaydb/internal/history"
	"replaydb/internal/storage"
	"replaydb/internal/value"
)

// Command keywords.
const (
	KeywordCreate   = "CREATE"
	KeywordInsert   = "INSERT"
	KeywordDelete   = "DELETE"
	KeywordSelect   = "SELECT"
	KeywordSaveAs   = "SAVE_AS"
	KeywordReadFrom = "READ_FROM"

	KeywordKey    = "KEY"
	KeywordFields = "FIELDS"
	KeywordInto   = "INTO"
	KeywordFrom   = "FROM"
	KeywordWhere  = "WHERE"
)

// Result messages.
const (
	MsgTableCreated = "Table created successfully"
	MsgDataInserted = "Data inserted successfully"
	MsgDataDeleted  = "Data deleted successfully"
	MsgDataSaved    = "Data saved successfully"
	MsgDataRead     = "Data read successfully"
)

// Command is a parsed, ready to run command.
type Command interface {
	// Serialize returns the canonical text of the command. Parsing the
	// canonical text yields an equivalent command.
	Serialize() string

	// Execute runs the command and returns its result text.
	Execute() (string, error)
}

// Parse dispatches on the leading keyword and parses the rest of input.
func Parse[K value.Key](input string, db *storage.Database[K], hist *history.History) (Command, error) {
	trimmed := strings.TrimSpace(input)

	var (
		cmd Command
		err error
	)
	switch {
	case strings.HasPrefix(trimmed, KeywordCreate):
		cmd, err = parseCreate(trimmed, db)
	case strings.HasPrefix(trimmed, KeywordInsert):
		cmd, err = parseInsert(trimmed, db)
	case strings.HasPrefix(trimmed, KeywordDelete):
		cmd, err = parseDelete(trimmed, db)
	case strings.HasPrefix(trimmed, KeywordSelect):
		cmd, err = parseSelect(trimmed, db)
	case strings.HasPrefix(trimmed, KeywordSaveAs):
		cmd, err = parseSaveAs(trimmed, hist)
	case strings.HasPrefix(trimmed, KeywordReadFrom):
		cmd, err = parseReadFrom(trimmed, db, hist)
	default:
		return nil, dberrors.UnknownCommand(trimmed)
	}
	if err != nil {
		return nil, err
	}
	return cmd, nil
}

// Handle parses input, records it in hist and executes it.
func Handle[K value.Key](input string, db *storage.Database[K], hist *history.History) (string, error) {
	cmd, err := Parse(input, db, hist)
	if err != nil {
		return "", err
	}
	if Recorded(cmd) {
		hist.Append(cmd.Serialize())
	}
	return cmd.Execute()
}

// HandleAny runs Handle against whichever database variant db holds.
func HandleAny(input string, db *storage.AnyDatabase, hist *history.History) (string, error) {
	if num, ok := db.IntDatabase(); ok {
		return Handle(input, num, hist)
	}
	str, _ := db.StringDatabase()
	return Handle(input, str, hist)
}

// Recorded reports whether cmd is appended to the history when handled.
// Commands that operate on history files are not.
func Recorded(cmd Command) bool {
	_, isFile := cmd.(fileCommand)
	return !isFile
}

// fileCommand is implemented by SAVE_AS and READ_FROM.
type fileCommand interface {
	Path() string
}

// segment returns input[start:end] trimmed, failing with MissingField
// when it is empty.
func segment(input string, start, end int, name string) (string, error) {
	s := strings.TrimSpace(input[start:end])
	if s == "" {
		return "", dberrors.MissingField(name)
	}
	return s, nil
}

// keyword returns the index of the first occurrence of kw at or after
// from.
func keyword(input, kw string, from int) (int, error) {
	i := strings.Index(input[from:], kw)
	if i < 0 {
		return 0, dberrors.MissingKeyword(kw)
	}
	return from + i, nil
}
