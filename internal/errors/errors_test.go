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

package errors

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"
	"testing"
)

func TestConstructorCodes(t *testing.T) {
	tests := []struct {
		name     string
		err      *DBError
		code     ErrorCode
		category Category
	}{
		{"missing keyword", MissingKeyword("KEY"), ErrCodeMissingKeyword, CategorySyntax},
		{"missing field", MissingField("Table name"), ErrCodeMissingField, CategorySyntax},
		{"unknown command", UnknownCommand("DROP t"), ErrCodeUnknownCommand, CategorySyntax},
		{"table not found", TableNotFound("t"), ErrCodeTableNotFound, CategoryExecution},
		{"table exists", TableAlreadyExists("t"), ErrCodeTableAlreadyExists, CategoryExecution},
		{"record exists", RecordAlreadyExists("id=1"), ErrCodeRecordAlreadyExists, CategoryExecution},
		{"invalid key", InvalidKey("x"), ErrCodeInvalidKey, CategoryExecution},
		{"unknown field", UnknownField("f"), ErrCodeUnknownField, CategoryExecution},
		{"wrong key type", WrongKeyType("FLOAT", "INT"), ErrCodeWrongKeyType, CategoryExecution},
		{"field parse", FieldParseError("f"), ErrCodeFieldParse, CategoryValidation},
		{"value parse", ValueParseError("v"), ErrCodeValueParse, CategoryValidation},
		{"condition parse", ConditionParseError("bad"), ErrCodeConditionParse, CategoryValidation},
		{"invalid index", InvalidIndex(3), ErrCodeInvalidIndex, CategoryFrontend},
		{"item not found", ItemWithIndexNotFound("Type", 9), ErrCodeItemWithIndexNotFound, CategoryFrontend},
		{"io", IoError("open", "x.txt", os.ErrNotExist), ErrCodeIO, CategoryStorage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Expected code %d, got %d", tt.code, tt.err.Code)
			}
			if tt.err.Category != tt.category {
				t.Errorf("Expected category %s, got %s", tt.category, tt.err.Category)
			}
			if !HasCode(tt.err, tt.code) {
				t.Errorf("HasCode(%d) should be true", tt.code)
			}
		})
	}
}

func TestErrorFormatting(t *testing.T) {
	err := MissingKeyword("FROM")
	if got := err.Error(); got != "ERROR 1001 (SYNTAX): missing keyword: FROM" {
		t.Errorf("Unexpected Error(): %q", got)
	}

	msg := err.UserMessage()
	if !strings.HasPrefix(msg, "ERROR: missing keyword: FROM") {
		t.Errorf("Unexpected UserMessage(): %q", msg)
	}
	if !strings.Contains(msg, "HINT:") {
		t.Errorf("Expected hint in UserMessage(), got %q", msg)
	}

	detailed := WrongKeyType("FLOAT", "INT")
	if !strings.Contains(detailed.Error(), "FLOAT") {
		t.Errorf("Expected detail in Error(), got %q", detailed.Error())
	}
}

func TestUnwrapAndWrapping(t *testing.T) {
	err := IoError("open", "missing.txt", os.ErrNotExist)
	if !stderrors.Is(err, os.ErrNotExist) {
		t.Error("IoError should unwrap to its cause")
	}

	wrapped := fmt.Errorf("replay line 3: %w", TableNotFound("t"))
	if GetCode(wrapped) != ErrCodeTableNotFound {
		t.Errorf("Expected code to survive wrapping, got %d", GetCode(wrapped))
	}
	if GetCode(stderrors.New("plain")) != 0 {
		t.Error("Plain errors should have code 0")
	}
	if HasCode(nil, ErrCodeTableNotFound) {
		t.Error("nil should not have a code")
	}
}

func TestIsSyntaxError(t *testing.T) {
	if !IsSyntaxError(UnknownCommand("x")) {
		t.Error("UnknownCommand should be a syntax error")
	}
	if IsSyntaxError(TableNotFound("t")) {
		t.Error("TableNotFound should not be a syntax error")
	}
}

func TestFormatError(t *testing.T) {
	if got := FormatError(TableNotFound("users")); got != "ERROR: table not found: users" {
		t.Errorf("Unexpected FormatError: %q", got)
	}
	if got := FormatError(stderrors.New("boom")); got != "ERROR: boom" {
		t.Errorf("Unexpected FormatError for plain error: %q", got)
	}
}
