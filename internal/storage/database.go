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
Package storage holds the in-memory data model: records, tables and the
databases that own them.

Database Model:
===============

A Database is parameterised by one key type K for its whole life. Every
table in it stores records in a B-Tree keyed by K, and CREATE is rejected
when a table's key field is declared with a type other than K's tag:

	Database[string]  accepts  CREATE t KEY id FIELDS id: STRING, ...
	Database[int64]   accepts  CREATE t KEY id FIELDS id: INT, ...

AnyDatabase wraps exactly one of the two so that front ends can hold a
database without knowing which key type was picked at startup.

Nothing is persisted. State survives a restart only through the command
history written by SAVE_AS and replayed by READ_FROM.
*/
package storage

import (
	"slices"

	dberrors "replaydb/internal/errors"
	"replaydb/internal/value"
)

// Database maps table names to tables sharing the key type K.
type Database[K value.Key] struct {
	tables map[string]*Table[K]
}

// NewDatabase creates an empty database.
func NewDatabase[K value.Key]() *Database[K] {
	return &Database[K]{tables: make(map[string]*Table[K])}
}

// KeyTag returns the type tag key fields must be declared with.
func (db *Database[K]) KeyTag() string {
	return value.KeyTag[K]()
}

// CreateTable registers a new table. Field types are normalised. Nothing
// is created if validation fails.
func (db *Database[K]) CreateTable(name, keyField string, fields []Field) error {
	if _, exists := db.tables[name]; exists {
		return dberrors.TableAlreadyExists(name)
	}

	normalized := make([]Field, len(fields))
	keyType := ""
	for i, f := range fields {
		normalized[i] = Field{Name: f.Name, Type: value.NormalizeTag(f.Type)}
		if f.Name == keyField {
			keyType = normalized[i].Type
		}
	}

	if keyType == "" {
		return dberrors.UnknownField(keyField)
	}
	if keyType != db.KeyTag() {
		return dberrors.WrongKeyType(keyType, db.KeyTag())
	}

	db.tables[name] = newTable[K](name, keyField, normalized)
	return nil
}

// Table looks up a table by name.
func (db *Database[K]) Table(name string) (*Table[K], error) {
	t, ok := db.tables[name]
	if !ok {
		return nil, dberrors.TableNotFound(name)
	}
	return t, nil
}

// TableNames returns all table names in sorted order.
func (db *Database[K]) TableNames() []string {
	names := make([]string, 0, len(db.tables))
	for name := range db.tables {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
