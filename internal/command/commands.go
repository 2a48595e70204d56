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

package command

import (
	"slices"
	"strings"

	dberrors "replaydb/internal/errors"
	"replaydb/internal/history"
	"replaydb/internal/storage"
	"replaydb/internal/value"
)

// Create is a parsed CREATE command.
type Create[K value.Key] struct {
	db       *storage.Database[K]
	Name     string
	KeyField string
	Fields   []storage.Field
}

func parseCreate[K value.Key](input string, db *storage.Database[K]) (*Create[K], error) {
	start := len(KeywordCreate)
	keyPos, err := keyword(input, KeywordKey, start)
	if err != nil {
		return nil, err
	}
	name, err := segment(input, start, keyPos, "Table name")
	if err != nil {
		return nil, err
	}

	afterKey := keyPos + len(KeywordKey)
	fieldsPos, err := keyword(input, KeywordFields, afterKey)
	if err != nil {
		return nil, err
	}
	keyField, err := segment(input, afterKey, fieldsPos, "Key field")
	if err != nil {
		return nil, err
	}

	fieldsText, err := segment(input, fieldsPos+len(KeywordFields), len(input), "Fields")
	if err != nil {
		return nil, err
	}
	fields, err := parseFields(fieldsText)
	if err != nil {
		return nil, err
	}

	return &Create[K]{db: db, Name: name, KeyField: keyField, Fields: fields}, nil
}

// parseFields reads "name: TYPE" declarations. A repeated name keeps its
// first position and takes the last type.
func parseFields(text string) ([]storage.Field, error) {
	var fields []storage.Field

	for _, part := range strings.Split(text, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}

		name, tag, ok := strings.Cut(trimmed, ":")
		name, tag = strings.TrimSpace(name), strings.TrimSpace(tag)
		if !ok || name == "" {
			return nil, dberrors.FieldParseError(trimmed)
		}
		if !value.IsValidTag(tag) {
			return nil, dberrors.FieldParseError(trimmed).
				WithHint("valid types are " + strings.Join(value.Tags, ", "))
		}
		tag = value.NormalizeTag(tag)

		if i := slices.IndexFunc(fields, func(f storage.Field) bool { return f.Name == name }); i >= 0 {
			fields[i].Type = tag
			continue
		}
		fields = append(fields, storage.Field{Name: name, Type: tag})
	}

	if len(fields) == 0 {
		return nil, dberrors.MissingField("Fields")
	}
	return fields, nil
}

func (c *Create[K]) Serialize() string {
	decls := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		decls[i] = f.Name + ": " + f.Type
	}
	return KeywordCreate + " " + c.Name + " " + KeywordKey + " " + c.KeyField + " " +
		KeywordFields + " " + strings.Join(decls, ", ")
}

func (c *Create[K]) Execute() (string, error) {
	if err := c.db.CreateTable(c.Name, c.KeyField, c.Fields); err != nil {
		return "", err
	}
	return MsgTableCreated, nil
}

// Insert is a parsed INSERT command. The record text is checked against
// the schema when it executes.
type Insert[K value.Key] struct {
	table  *storage.Table[K]
	Record string
}

func parseInsert[K value.Key](input string, db *storage.Database[K]) (*Insert[K], error) {
	start := len(KeywordInsert)
	intoPos, err := keyword(input, KeywordInto, start)
	if err != nil {
		return nil, err
	}
	record, err := segment(input, start, intoPos, "Record data")
	if err != nil {
		return nil, err
	}
	tableName, err := segment(input, intoPos+len(KeywordInto), len(input), "Table name")
	if err != nil {
		return nil, err
	}

	table, err := db.Table(tableName)
	if err != nil {
		return nil, err
	}
	return &Insert[K]{table: table, Record: canonicalRecord(record)}, nil
}

// canonicalRecord rewrites each "name=value" segment as "name = value".
func canonicalRecord(text string) string {
	var parts []string
	for _, part := range strings.Split(text, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		if name, raw, ok := strings.Cut(trimmed, "="); ok {
			trimmed = strings.TrimSpace(name) + " = " + strings.TrimSpace(raw)
		}
		parts = append(parts, trimmed)
	}
	return strings.Join(parts, ", ")
}

func (c *Insert[K]) Serialize() string {
	return KeywordInsert + " " + c.Record + " " + KeywordInto + " " + c.table.Name
}

func (c *Insert[K]) Execute() (string, error) {
	record, err := c.table.ParseRecord(c.Record)
	if err != nil {
		return "", err
	}
	if err := c.table.AddRecord(record); err != nil {
		return "", err
	}
	return MsgDataInserted, nil
}

// Delete is a parsed DELETE command.
type Delete[K value.Key] struct {
	table *storage.Table[K]
	Key   string
}

func parseDelete[K value.Key](input string, db *storage.Database[K]) (*Delete[K], error) {
	start := len(KeywordDelete)
	fromPos, err := keyword(input, KeywordFrom, start)
	if err != nil {
		return nil, err
	}
	key, err := segment(input, start, fromPos, "Key")
	if err != nil {
		return nil, err
	}
	tableName, err := segment(input, fromPos+len(KeywordFrom), len(input), "Table name")
	if err != nil {
		return nil, err
	}

	table, err := db.Table(tableName)
	if err != nil {
		return nil, err
	}
	return &Delete[K]{table: table, Key: key}, nil
}

func (c *Delete[K]) Serialize() string {
	return KeywordDelete + " " + c.Key + " " + KeywordFrom + " " + c.table.Name
}

func (c *Delete[K]) Execute() (string, error) {
	if err := c.table.RemoveRecord(c.Key); err != nil {
		return "", err
	}
	return MsgDataDeleted, nil
}

// Select is a parsed SELECT command. Where is nil when the command has no
// WHERE clause.
type Select[K value.Key] struct {
	table  *storage.Table[K]
	Fields []string
	Where  *string
}

func parseSelect[K value.Key](input string, db *storage.Database[K]) (*Select[K], error) {
	start := len(KeywordSelect)
	fromPos, err := keyword(input, KeywordFrom, start)
	if err != nil {
		return nil, err
	}
	fieldsText, err := segment(input, start, fromPos, "Field list")
	if err != nil {
		return nil, err
	}
	fields := parseFieldList(fieldsText)
	if len(fields) == 0 {
		return nil, dberrors.MissingField("Field list")
	}

	afterFrom := fromPos + len(KeywordFrom)
	tableEnd := len(input)
	var where *string
	if i := strings.Index(input[afterFrom:], KeywordWhere); i >= 0 {
		tableEnd = afterFrom + i
		cond := strings.TrimSpace(input[tableEnd+len(KeywordWhere):])
		where = &cond
	}

	tableName, err := segment(input, afterFrom, tableEnd, "Table name")
	if err != nil {
		return nil, err
	}
	table, err := db.Table(tableName)
	if err != nil {
		return nil, err
	}
	return &Select[K]{table: table, Fields: fields, Where: where}, nil
}

func parseFieldList(text string) []string {
	var fields []string
	for _, f := range strings.Split(text, ",") {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

func (c *Select[K]) Serialize() string {
	s := KeywordSelect + " " + strings.Join(c.Fields, ", ") + " " + KeywordFrom + " " + c.table.Name
	if c.Where != nil {
		s += " " + KeywordWhere
		if *c.Where != "" {
			s += " " + *c.Where
		}
	}
	return s
}

func (c *Select[K]) Execute() (string, error) {
	records, err := c.table.SelectRecords(c.Fields, c.Where)
	if err != nil {
		return "", err
	}
	rows := make([]string, len(records))
	for i, r := range records {
		rows[i] = r.String()
	}
	return strings.Join(rows, " | "), nil
}

// SaveAs writes the history to a file.
type SaveAs struct {
	hist *history.History
	path string
}

func parseSaveAs(input string, hist *history.History) (*SaveAs, error) {
	path, err := segment(input, len(KeywordSaveAs), len(input), "File path")
	if err != nil {
		return nil, err
	}
	return &SaveAs{hist: hist, path: path}, nil
}

// Path returns the target file.
func (c *SaveAs) Path() string { return c.path }

func (c *SaveAs) Serialize() string {
	return KeywordSaveAs + " " + c.path
}

func (c *SaveAs) Execute() (string, error) {
	if err := c.hist.WriteFile(c.path); err != nil {
		return "", err
	}
	return MsgDataSaved, nil
}

// ReadFrom replays a history file through Handle, line by line. The first
// failing line aborts the replay; lines before it stay applied.
type ReadFrom[K value.Key] struct {
	db   *storage.Database[K]
	hist *history.History
	path string
}

func parseReadFrom[K value.Key](input string, db *storage.Database[K], hist *history.History) (*ReadFrom[K], error) {
	path, err := segment(input, len(KeywordReadFrom), len(input), "File path")
	if err != nil {
		return nil, err
	}
	return &ReadFrom[K]{db: db, hist: hist, path: path}, nil
}

// Path returns the source file.
func (c *ReadFrom[K]) Path() string { return c.path }

func (c *ReadFrom[K]) Serialize() string {
	return KeywordReadFrom + " " + c.path
}

func (c *ReadFrom[K]) Execute() (string, error) {
	lines, err := history.ReadLines(c.path)
	if err != nil {
		return "", err
	}
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if _, err := Handle(line, c.db, c.hist); err != nil {
			return "", err
		}
	}
	return MsgDataRead, nil
}
