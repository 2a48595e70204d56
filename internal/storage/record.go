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
	"maps"
	"slices"
	"strings"

	"replaydb/internal/value"
)

// Record maps field names to values. A record may omit declared fields.
type Record map[string]value.Value

// FieldNames returns the record's field names in sorted order.
func (r Record) FieldNames() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// String renders the record as "name=value" pairs sorted by field name.
func (r Record) String() string {
	var sb strings.Builder
	for i, name := range r.FieldNames() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(name)
		sb.WriteByte('=')
		sb.WriteString(r[name].String())
	}
	return sb.String()
}

// Project returns a copy holding only the listed fields the record has.
func (r Record) Project(fields []string) Record {
	out := make(Record, len(fields))
	for _, name := range fields {
		if v, ok := r[name]; ok {
			out[name] = v
		}
	}
	return out
}

// Clone returns a shallow copy. Values are immutable so this is enough
// to keep stored records isolated from callers.
func (r Record) Clone() Record {
	return maps.Clone(r)
}
