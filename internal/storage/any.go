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
	"fmt"
	"strings"

	"replaydb/internal/value"
)

// KeyType selects the primary key type of a running instance.
type KeyType string

const (
	KeyTypeString KeyType = "string"
	KeyTypeInt    KeyType = "int"
)

// ParseKeyType accepts "string" or "int" in any case.
func ParseKeyType(s string) (KeyType, error) {
	switch KeyType(strings.ToLower(strings.TrimSpace(s))) {
	case KeyTypeString:
		return KeyTypeString, nil
	case KeyTypeInt:
		return KeyTypeInt, nil
	}
	return "", fmt.Errorf("invalid key type %q (must be string or int)", s)
}

// AnyDatabase holds either a string-keyed or an int64-keyed database.
// Exactly one of the two is non-nil.
type AnyDatabase struct {
	keyType KeyType
	str     *Database[string]
	num     *Database[int64]
}

// NewAnyDatabase creates an empty database for the given key type.
// Unknown key types fall back to string keys.
func NewAnyDatabase(kt KeyType) *AnyDatabase {
	if kt == KeyTypeInt {
		return &AnyDatabase{keyType: KeyTypeInt, num: NewDatabase[int64]()}
	}
	return &AnyDatabase{keyType: KeyTypeString, str: NewDatabase[string]()}
}

// KeyType returns the key type chosen at construction.
func (a *AnyDatabase) KeyType() KeyType {
	return a.keyType
}

// KeyTag returns the type tag key fields must be declared with.
func (a *AnyDatabase) KeyTag() string {
	if a.num != nil {
		return a.num.KeyTag()
	}
	return a.str.KeyTag()
}

// StringDatabase returns the string-keyed database, if that is the variant.
func (a *AnyDatabase) StringDatabase() (*Database[string], bool) {
	return a.str, a.str != nil
}

// IntDatabase returns the int64-keyed database, if that is the variant.
func (a *AnyDatabase) IntDatabase() (*Database[int64], bool) {
	return a.num, a.num != nil
}

// TableNames returns all table names in sorted order.
func (a *AnyDatabase) TableNames() []string {
	if a.num != nil {
		return a.num.TableNames()
	}
	return a.str.TableNames()
}

// PossibleTypes lists the type tags a field may be declared with.
func (a *AnyDatabase) PossibleTypes() []string {
	return append([]string(nil), value.Tags...)
}

// FieldNames returns a table's fields in declaration order.
func (a *AnyDatabase) FieldNames(table string) ([]string, error) {
	schema, err := a.Schema(table)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(schema))
	for i, f := range schema {
		names[i] = f.Name
	}
	return names, nil
}

// Schema returns a table's field declarations.
func (a *AnyDatabase) Schema(table string) ([]Field, error) {
	if a.num != nil {
		t, err := a.num.Table(table)
		if err != nil {
			return nil, err
		}
		return t.Schema(), nil
	}
	t, err := a.str.Table(table)
	if err != nil {
		return nil, err
	}
	return t.Schema(), nil
}

// KeyField returns the key field name of a table.
func (a *AnyDatabase) KeyField(table string) (string, error) {
	if a.num != nil {
		t, err := a.num.Table(table)
		if err != nil {
			return "", err
		}
		return t.KeyField, nil
	}
	t, err := a.str.Table(table)
	if err != nil {
		return "", err
	}
	return t.KeyField, nil
}

// RecordCount returns the number of records in a table.
func (a *AnyDatabase) RecordCount(table string) (int, error) {
	if a.num != nil {
		t, err := a.num.Table(table)
		if err != nil {
			return 0, err
		}
		return t.Len(), nil
	}
	t, err := a.str.Table(table)
	if err != nil {
		return 0, err
	}
	return t.Len(), nil
}
