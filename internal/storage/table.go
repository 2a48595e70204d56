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

package storage

import (
	"strings"

	"replaydb/internal/condition"
	dberrors "replaydb/internal/errors"
	"replaydb/internal/value"
)

// Field is one column declaration.
type Field struct {
	Name string
	Type string
}

// Table holds the records of one table ordered by primary key.
type Table[K value.Key] struct {
	Name     string
	KeyField string
	Fields   []Field

	records *BTree[K, Record]
}

func newTable[K value.Key](name, keyField string, fields []Field) *Table[K] {
	return &Table[K]{
		Name:     name,
		KeyField: keyField,
		Fields:   fields,
		records:  NewBTree[K, Record](DefaultDegree),
	}
}

// FieldType returns the declared type tag of a field.
func (t *Table[K]) FieldType(name string) (string, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return "", false
}

// FieldNames returns field names in declaration order.
func (t *Table[K]) FieldNames() []string {
	names := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		names[i] = f.Name
	}
	return names
}

// Schema returns a copy of the field declarations.
func (t *Table[K]) Schema() []Field {
	return append([]Field(nil), t.Fields...)
}

// Len returns the number of stored records.
func (t *Table[K]) Len() int {
	return t.records.Len()
}

// Get returns a copy of the record stored under key.
func (t *Table[K]) Get(key K) (Record, bool) {
	r, ok := t.records.Get(key)
	if !ok {
		return nil, false
	}
	return r.Clone(), true
}

// ParseRecord parses a comma-separated "name = value" list against the
// table schema. Empty segments are skipped. Either every segment parses
// or an error is returned.
func (t *Table[K]) ParseRecord(text string) (Record, error) {
	record := make(Record)

	for _, part := range strings.Split(text, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}

		name, raw, ok := strings.Cut(trimmed, "=")
		if !ok {
			return nil, dberrors.FieldParseError(trimmed)
		}
		name = strings.TrimSpace(name)

		tag, ok := t.FieldType(name)
		if !ok {
			return nil, dberrors.FieldParseError(name).WithDetail("field is not declared in table " + t.Name)
		}

		v, ok := value.FromText(strings.TrimSpace(raw), tag)
		if !ok {
			return nil, dberrors.FieldParseError(name).
				WithDetail("cannot parse '" + strings.TrimSpace(raw) + "' as " + tag)
		}
		record[name] = v
	}

	return record, nil
}

// AddRecord stores a record under its key field value. An existing key
// is never overwritten.
func (t *Table[K]) AddRecord(record Record) error {
	kv, ok := record[t.KeyField]
	if !ok {
		return dberrors.MissingField(t.KeyField)
	}

	key, err := value.KeyFromValue[K](kv)
	if err != nil {
		return err
	}

	if !t.records.Insert(key, record.Clone()) {
		return dberrors.RecordAlreadyExists(record.String())
	}
	return nil
}

// RemoveRecord deletes the record whose key renders as keyText.
func (t *Table[K]) RemoveRecord(keyText string) error {
	tag, ok := t.FieldType(t.KeyField)
	if !ok {
		return dberrors.InvalidKey(t.KeyField)
	}

	kv, ok := value.FromText(keyText, tag)
	if !ok {
		return dberrors.InvalidKey(keyText)
	}
	key, err := value.KeyFromValue[K](kv)
	if err != nil {
		return err
	}

	if !t.records.Delete(key) {
		return dberrors.InvalidKey(keyText)
	}
	return nil
}

// SelectRecords returns, in key order, every record matching at least one
// condition in conditionText (or every record when it is nil), projected
// onto fields.
func (t *Table[K]) SelectRecords(fields []string, conditionText *string) ([]Record, error) {
	var conds []condition.Condition
	if conditionText != nil {
		var err error
		conds, err = condition.Parse(*conditionText, t)
		if err != nil {
			return nil, err
		}
	}

	result := make([]Record, 0)
	t.records.Ascend(func(_ K, r Record) bool {
		if conditionText == nil || condition.MatchAny(conds, r) {
			result = append(result, r.Project(fields))
		}
		return true
	})
	return result, nil
}
