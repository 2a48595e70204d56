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

package value

import (
	"cmp"
	"strconv"

	dberrors "replaydb/internal/errors"
)

// Key is the set of scalar types that can serve as a table's primary key.
// Both members are totally ordered.
type Key interface {
	string | int64
}

// KeyTag returns the type tag a key field must be declared with for K.
func KeyTag[K Key]() string {
	var zero K
	if _, ok := any(zero).(string); ok {
		return TagString
	}
	return TagInt
}

// KeyFromValue converts a Value into a key of type K.
// It fails with a ValueParseError if the kinds do not line up.
func KeyFromValue[K Key](v Value) (K, error) {
	var k K
	switch p := any(&k).(type) {
	case *string:
		s, ok := v.AsString()
		if !ok {
			return k, dberrors.ValueParseError(v.String())
		}
		*p = s
	case *int64:
		i, ok := v.AsInt()
		if !ok {
			return k, dberrors.ValueParseError(v.String())
		}
		*p = i
	}
	return k, nil
}

// FormatKey renders a key for display.
func FormatKey[K Key](k K) string {
	switch x := any(k).(type) {
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	}
	return ""
}

// CompareKeys orders two keys by their natural order.
func CompareKeys[K Key](a, b K) int {
	return cmp.Compare(a, b)
}
