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
Package errors provides the structured error taxonomy for ReplayDB.

Every failure the engine can report is a *DBError carrying:
  - a numeric code identifying the kind of failure
  - a category grouping related kinds
  - a human readable message, with optional detail and hint
  - an optional cause (for example the os error behind an IoError)

Error Categories:
  - SYNTAX: the command text does not follow the grammar
  - EXECUTION: name resolution and key uniqueness failures
  - STORAGE: history snapshot file failures
  - VALIDATION: literals that do not match the declared schema
  - FRONTEND: selection-by-index failures raised by the terminal UI

Callers compare kinds with HasCode or GetCode rather than matching text.
*/
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a unique error identifier.
type ErrorCode int

const (
	// Syntax errors (1000-1999)
	ErrCodeSyntax         ErrorCode = 1000
	ErrCodeMissingKeyword ErrorCode = 1001
	ErrCodeMissingField   ErrorCode = 1002
	ErrCodeUnknownCommand ErrorCode = 1003

	// Execution errors (2000-2999)
	ErrCodeExecution           ErrorCode = 2000
	ErrCodeTableNotFound       ErrorCode = 2001
	ErrCodeTableAlreadyExists  ErrorCode = 2002
	ErrCodeRecordAlreadyExists ErrorCode = 2003
	ErrCodeInvalidKey          ErrorCode = 2004
	ErrCodeUnknownField        ErrorCode = 2005
	ErrCodeWrongKeyType        ErrorCode = 2006

	// Storage errors (5000-5999)
	ErrCodeStorage ErrorCode = 5000
	ErrCodeIO      ErrorCode = 5001

	// Validation errors (6000-6999)
	ErrCodeValidation     ErrorCode = 6000
	ErrCodeFieldParse     ErrorCode = 6001
	ErrCodeValueParse     ErrorCode = 6002
	ErrCodeConditionParse ErrorCode = 6003

	// Front end errors (7000-7999)
	ErrCodeFrontend              ErrorCode = 7000
	ErrCodeInvalidIndex          ErrorCode = 7001
	ErrCodeItemWithIndexNotFound ErrorCode = 7002
)

// Category represents the error category.
type Category string

const (
	CategorySyntax     Category = "SYNTAX"
	CategoryExecution  Category = "EXECUTION"
	CategoryStorage    Category = "STORAGE"
	CategoryValidation Category = "VALIDATION"
	CategoryFrontend   Category = "FRONTEND"
)

// DBError represents a structured error in ReplayDB.
type DBError struct {
	Code     ErrorCode
	Category Category
	Message  string
	Detail   string
	Hint     string
	Cause    error
}

// Error implements the error interface.
func (e *DBError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("ERROR %d (%s): %s - %s", e.Code, e.Category, e.Message, e.Detail)
	}
	return fmt.Sprintf("ERROR %d (%s): %s", e.Code, e.Category, e.Message)
}

// Unwrap returns the underlying cause.
func (e *DBError) Unwrap() error {
	return e.Cause
}

// UserMessage returns a user-friendly error message.
func (e *DBError) UserMessage() string {
	msg := fmt.Sprintf("ERROR: %s", e.Message)
	if e.Detail != "" {
		msg += fmt.Sprintf(" (%s)", e.Detail)
	}
	if e.Hint != "" {
		msg += fmt.Sprintf("\nHINT: %s", e.Hint)
	}
	return msg
}

// WithDetail adds detail to the error.
func (e *DBError) WithDetail(detail string) *DBError {
	e.Detail = detail
	return e
}

// WithHint adds a hint to the error.
func (e *DBError) WithHint(hint string) *DBError {
	e.Hint = hint
	return e
}

// WithCause adds a cause to the error.
func (e *DBError) WithCause(cause error) *DBError {
	e.Cause = cause
	return e
}

// ============================================================================
// Syntax Error Constructors
// ============================================================================

// MissingKeyword reports a required keyword absent from the command.
func MissingKeyword(keyword string) *DBError {
	return &DBError{
		Code:     ErrCodeMissingKeyword,
		Category: CategorySyntax,
		Message:  fmt.Sprintf("missing keyword: %s", keyword),
		Hint:     fmt.Sprintf("Add the '%s' keyword to your command", keyword),
	}
}

// MissingField reports an empty required segment, named by what it should hold.
func MissingField(name string) *DBError {
	return &DBError{
		Code:     ErrCodeMissingField,
		Category: CategorySyntax,
		Message:  fmt.Sprintf("%s is empty", name),
	}
}

// UnknownCommand reports input that matches none of the command keywords.
func UnknownCommand(input string) *DBError {
	return &DBError{
		Code:     ErrCodeUnknownCommand,
		Category: CategorySyntax,
		Message:  fmt.Sprintf("unknown command: %s", input),
		Hint:     "Supported commands: CREATE, INSERT, DELETE, SELECT, SAVE_AS, READ_FROM",
	}
}

// ============================================================================
// Execution Error Constructors
// ============================================================================

// TableNotFound creates an error for missing tables.
func TableNotFound(table string) *DBError {
	return &DBError{
		Code:     ErrCodeTableNotFound,
		Category: CategoryExecution,
		Message:  fmt.Sprintf("table not found: %s", table),
	}
}

// TableAlreadyExists creates an error for duplicate table names.
func TableAlreadyExists(table string) *DBError {
	return &DBError{
		Code:     ErrCodeTableAlreadyExists,
		Category: CategoryExecution,
		Message:  fmt.Sprintf("table already exists: %s", table),
	}
}

// RecordAlreadyExists creates an error for a duplicate primary key.
func RecordAlreadyExists(record string) *DBError {
	return &DBError{
		Code:     ErrCodeRecordAlreadyExists,
		Category: CategoryExecution,
		Message:  fmt.Sprintf("record already exists: %s", record),
	}
}

// InvalidKey creates an error for a key that cannot be converted or found.
func InvalidKey(key string) *DBError {
	return &DBError{
		Code:     ErrCodeInvalidKey,
		Category: CategoryExecution,
		Message:  fmt.Sprintf("invalid key: %s", key),
	}
}

// UnknownField creates an error for a field the schema does not declare.
func UnknownField(field string) *DBError {
	return &DBError{
		Code:     ErrCodeUnknownField,
		Category: CategoryExecution,
		Message:  fmt.Sprintf("unknown field: %s", field),
	}
}

// WrongKeyType reports a key field whose declared type differs from the
// database key type.
func WrongKeyType(declared, expected string) *DBError {
	return &DBError{
		Code:     ErrCodeWrongKeyType,
		Category: CategoryExecution,
		Message:  "invalid key type",
		Detail:   fmt.Sprintf("key field declared as %s, database keys are %s", declared, expected),
	}
}

// ============================================================================
// Storage Error Constructors
// ============================================================================

// IoError wraps a file system failure.
func IoError(op, path string, cause error) *DBError {
	return &DBError{
		Code:     ErrCodeIO,
		Category: CategoryStorage,
		Message:  fmt.Sprintf("failed to %s file: %s", op, path),
		Detail:   causeText(cause),
		Cause:    cause,
	}
}

func causeText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// ============================================================================
// Validation Error Constructors
// ============================================================================

// FieldParseError reports a record or schema segment that cannot be parsed.
func FieldParseError(field string) *DBError {
	return &DBError{
		Code:     ErrCodeFieldParse,
		Category: CategoryValidation,
		Message:  fmt.Sprintf("failed to parse field: %s", field),
	}
}

// ValueParseError reports a value that cannot serve as a key.
func ValueParseError(value string) *DBError {
	return &DBError{
		Code:     ErrCodeValueParse,
		Category: CategoryValidation,
		Message:  fmt.Sprintf("failed to parse value: %s", value),
	}
}

// ConditionParseError reports a malformed WHERE condition.
func ConditionParseError(reason string) *DBError {
	return &DBError{
		Code:     ErrCodeConditionParse,
		Category: CategoryValidation,
		Message:  fmt.Sprintf("failed to parse condition: %s", reason),
	}
}

// ============================================================================
// Front End Error Constructors
// ============================================================================

// InvalidIndex reports a list selection outside the list.
func InvalidIndex(index int) *DBError {
	return &DBError{
		Code:     ErrCodeInvalidIndex,
		Category: CategoryFrontend,
		Message:  fmt.Sprintf("invalid index: %d", index),
	}
}

// ItemWithIndexNotFound reports a picker with no item at the given position.
func ItemWithIndexNotFound(item string, index int) *DBError {
	return &DBError{
		Code:     ErrCodeItemWithIndexNotFound,
		Category: CategoryFrontend,
		Message:  fmt.Sprintf("%s with index %d not found", item, index),
	}
}

// ============================================================================
// Helpers
// ============================================================================

// GetCode returns the error code of err, or 0 if err is not a *DBError.
func GetCode(err error) ErrorCode {
	var dbErr *DBError
	if stderrors.As(err, &dbErr) {
		return dbErr.Code
	}
	return 0
}

// HasCode reports whether err is a *DBError with the given code.
func HasCode(err error, code ErrorCode) bool {
	return err != nil && GetCode(err) == code
}

// IsSyntaxError checks if the error is a syntax error.
func IsSyntaxError(err error) bool {
	var dbErr *DBError
	return stderrors.As(err, &dbErr) && dbErr.Category == CategorySyntax
}

// FormatError formats an error for display to front end users.
func FormatError(err error) string {
	var dbErr *DBError
	if stderrors.As(err, &dbErr) {
		return dbErr.UserMessage()
	}
	return fmt.Sprintf("ERROR: %v", err)
}
