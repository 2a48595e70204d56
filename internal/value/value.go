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
Package value defines the scalar values stored in ReplayDB records.

A Value is one of four kinds: Bool, String, Int (64-bit signed) or Float
(64-bit). Values are built from command text with an explicit type tag:

	v, ok := value.FromText("42", "INT")     // Int(42)
	v, ok := value.FromText("\"a\"", "string") // String("a")
	_, ok := value.FromText("x", "INT")      // ok == false

The tag alone decides the kind; the literal's shape is never inspected.
*/
package value

import (
	"strconv"
	"strings"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	KindBool Kind = iota
	KindString
	KindInt
	KindFloat
)

// Type tags accepted in CREATE field declarations.
const (
	TagInt    = "INT"
	TagFloat  = "FLOAT"
	TagString = "STRING"
	TagBool   = "BOOL"
)

// Tags lists the type tags in the order front ends offer them.
var Tags = []string{TagInt, TagString, TagFloat, TagBool}

// String returns the type tag of the kind.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return TagBool
	case KindString:
		return TagString
	case KindInt:
		return TagInt
	case KindFloat:
		return TagFloat
	default:
		return "UNKNOWN"
	}
}

// Value is a tagged scalar. The zero Value is Bool(false).
type Value struct {
	kind Kind
	b    bool
	s    string
	i    int64
	f    float64
}

// Bool returns a Bool value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// String returns a String value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Int returns an Int value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float returns a Float value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// Kind returns the variant of v.
func (v Value) Kind() Kind { return v.kind }

// AsBool returns the payload of a Bool value.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsString returns the payload of a String value.
func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

// AsInt returns the payload of an Int value.
func (v Value) AsInt() (int64, bool) { return v.i, v.kind == KindInt }

// AsFloat returns the payload of a Float value.
func (v Value) AsFloat() (float64, bool) { return v.f, v.kind == KindFloat }

// Equal reports structural equality. Values of different kinds are never equal.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindBool:
		return v.b == o.b
	case KindString:
		return v.s == o.s
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	}
	return false
}

// String renders the payload without quoting.
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindString:
		return v.s
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	}
	return ""
}

// NormalizeTag trims and upper-cases a type tag.
func NormalizeTag(tag string) string {
	return strings.ToUpper(strings.TrimSpace(tag))
}

// IsValidTag reports whether tag names one of the four kinds.
func IsValidTag(tag string) bool {
	switch NormalizeTag(tag) {
	case TagInt, TagFloat, TagString, TagBool:
		return true
	}
	return false
}

// FromText converts raw command text into a Value of the kind named by tag.
// It returns false if the tag is unknown or raw does not parse as that kind.
func FromText(raw, tag string) (Value, bool) {
	switch NormalizeTag(tag) {
	case TagInt:
		i, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Value{}, false
		}
		return Int(i), true
	case TagFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Value{}, false
		}
		return Float(f), true
	case TagString:
		return String(unquote(raw)), true
	case TagBool:
		switch raw {
		case "true":
			return Bool(true), true
		case "false":
			return Bool(false), true
		}
		return Value{}, false
	}
	return Value{}, false
}

// unquote strips one pair of surrounding double quotes.
func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
