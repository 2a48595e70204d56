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
Package condition implements the WHERE clause evaluator used by SELECT.

A condition is a "field op value" triple. The value is converted using
the field's declared type, so "age > 30" on an INT field compares Int
values. Equality operators are defined for every pair of values; the
ordering operators only for two Ints, two Floats or two Strings, and
evaluate to false otherwise.

A record matches a condition list when ANY condition holds.
*/
package condition

import (
	"math"
	"strings"

	dberrors "replaydb/internal/errors"
	"replaydb/internal/value"
)

// Op is a comparison operator.
type Op int

const (
	Eq Op = iota // =
	Ne           // !=
	Lt           // <
	Le           // <=
	Gt           // >
	Ge           // >=
)

var opSymbols = [...]string{"=", "!=", "<", "<=", ">", ">="}

// Ops returns every operator in display order.
func Ops() []Op {
	return []Op{Eq, Ne, Lt, Le, Gt, Ge}
}

// ParseOp maps an operator symbol to an Op.
func ParseOp(s string) (Op, bool) {
	for i, sym := range opSymbols {
		if sym == s {
			return Op(i), true
		}
	}
	return 0, false
}

// String returns the operator symbol.
func (o Op) String() string {
	if o < Eq || o > Ge {
		return "?"
	}
	return opSymbols[o]
}

// Compare applies the operator to a and b.
func (o Op) Compare(a, b value.Value) bool {
	switch o {
	case Eq:
		return a.Equal(b)
	case Ne:
		return !a.Equal(b)
	}

	c, ok := order(a, b)
	if !ok {
		return false
	}
	switch o {
	case Lt:
		return c < 0
	case Le:
		return c <= 0
	case Gt:
		return c > 0
	case Ge:
		return c >= 0
	}
	return false
}

// order compares two values of the same orderable kind.
func order(a, b value.Value) (int, bool) {
	if a.Kind() != b.Kind() {
		return 0, false
	}
	switch a.Kind() {
	case value.KindInt:
		x, _ := a.AsInt()
		y, _ := b.AsInt()
		return three(x < y, x > y), true
	case value.KindFloat:
		x, _ := a.AsFloat()
		y, _ := b.AsFloat()
		if math.IsNaN(x) || math.IsNaN(y) {
			return 0, false
		}
		return three(x < y, x > y), true
	case value.KindString:
		x, _ := a.AsString()
		y, _ := b.AsString()
		return strings.Compare(x, y), true
	}
	return 0, false
}

func three(less, greater bool) int {
	switch {
	case less:
		return -1
	case greater:
		return 1
	}
	return 0
}

// Schema resolves a field name to its declared type tag.
type Schema interface {
	FieldType(name string) (string, bool)
}

// Condition is one parsed "field op value" triple.
type Condition struct {
	Field string
	Op    Op
	Value value.Value
}

// New builds a condition, converting raw with the field's type tag.
func New(field string, op Op, raw, tag string) (Condition, error) {
	v, ok := value.FromText(raw, tag)
	if !ok {
		return Condition{}, dberrors.ConditionParseError("failed to parse value for condition").
			WithDetail("cannot parse '" + raw + "' as " + value.NormalizeTag(tag))
	}
	return Condition{Field: field, Op: op, Value: v}, nil
}

// String renders the condition in command syntax.
func (c Condition) String() string {
	return c.Field + " " + c.Op.String() + " " + c.Value.String()
}

// Matches evaluates the condition against a record's fields.
// A record without the field never matches.
func (c Condition) Matches(fields map[string]value.Value) bool {
	v, ok := fields[c.Field]
	if !ok {
		return false
	}
	return c.Op.Compare(v, c.Value)
}

// MatchAny reports whether at least one condition matches.
func MatchAny(conds []Condition, fields map[string]value.Value) bool {
	for _, c := range conds {
		if c.Matches(fields) {
			return true
		}
	}
	return false
}

// Parse reads a comma-separated list of conditions. Each item must split
// on whitespace into exactly three tokens.
func Parse(text string, schema Schema) ([]Condition, error) {
	parts := strings.Split(text, ",")
	conds := make([]Condition, 0, len(parts))

	for _, part := range parts {
		tokens := strings.Fields(part)
		if len(tokens) != 3 {
			return nil, dberrors.ConditionParseError("invalid condition format").
				WithDetail(strings.TrimSpace(part))
		}

		op, ok := ParseOp(tokens[1])
		if !ok {
			return nil, dberrors.ConditionParseError("unknown operator").WithDetail(tokens[1])
		}

		tag, ok := schema.FieldType(tokens[0])
		if !ok {
			return nil, dberrors.ConditionParseError("field not found").WithDetail(tokens[0])
		}

		cond, err := New(tokens[0], op, tokens[2], tag)
		if err != nil {
			return nil, err
		}
		conds = append(conds, cond)
	}

	return conds, nil
}
