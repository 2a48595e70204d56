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
	"os"
	"path/filepath"
	"slices"
	"testing"

	dberrors "replaydb/internal/errors"
	"replaydb/internal/history"
	"replaydb/internal/storage"
)

// run submits each statement and fails the test on the first error.
func run(t *testing.T, db *storage.Database[int64], hist *history.History, stmts ...string) string {
	t.Helper()
	var out string
	for _, stmt := range stmts {
		var err error
		out, err = Handle(stmt, db, hist)
		if err != nil {
			t.Fatalf("%q failed: %v", stmt, err)
		}
	}
	return out
}

func TestEndToEnd(t *testing.T) {
	db := storage.NewDatabase[int64]()
	hist := history.New()

	out := run(t, db, hist, "CREATE t KEY id FIELDS id: Int, name: String")
	if out != MsgTableCreated {
		t.Errorf("Expected %q, got %q", MsgTableCreated, out)
	}
	out = run(t, db, hist, `INSERT id = 1, name = "a" INTO t`)
	if out != MsgDataInserted {
		t.Errorf("Expected %q, got %q", MsgDataInserted, out)
	}

	out = run(t, db, hist, "SELECT id, name FROM t")
	if out != "id=1, name=a" {
		t.Errorf("Expected id=1, name=a, got %q", out)
	}

	out = run(t, db, hist, "DELETE 1 FROM t")
	if out != MsgDataDeleted {
		t.Errorf("Expected %q, got %q", MsgDataDeleted, out)
	}
	if out = run(t, db, hist, "SELECT id, name FROM t"); out != "" {
		t.Errorf("Expected no rows, got %q", out)
	}

	path := filepath.Join(t.TempDir(), "out.txt")
	if out = run(t, db, hist, "SAVE_AS "+path); out != MsgDataSaved {
		t.Errorf("Expected %q, got %q", MsgDataSaved, out)
	}

	freshDB := storage.NewDatabase[int64]()
	freshHist := history.New()
	if out = run(t, freshDB, freshHist, "READ_FROM "+path); out != MsgDataRead {
		t.Errorf("Expected %q, got %q", MsgDataRead, out)
	}

	table, err := freshDB.Table("t")
	if err != nil {
		t.Fatalf("Replayed database is missing table t: %v", err)
	}
	if table.Len() != 0 {
		t.Errorf("Expected no rows after replay, got %d", table.Len())
	}
	if !slices.Equal(table.FieldNames(), []string{"id", "name"}) {
		t.Errorf("Unexpected replayed schema %v", table.FieldNames())
	}
	if !slices.Equal(freshHist.Entries(), hist.Entries()) {
		t.Errorf("Replay should re-record the same history.\nExpected %v\ngot %v", hist.Entries(), freshHist.Entries())
	}
}

func TestHistoryRecording(t *testing.T) {
	db := storage.NewDatabase[int64]()
	hist := history.New()

	run(t, db, hist,
		"CREATE t KEY id FIELDS id: int, name: string",
		"INSERT id=1,name=bob INTO t",
		"SELECT id FROM t WHERE id > 0",
	)
	// Parse failure: not recorded
	if _, err := Handle("INSERT id = 2 INTO missing", db, hist); err == nil {
		t.Fatal("Expected TableNotFound")
	}
	// Execution failure: recorded
	if _, err := Handle("INSERT id = 1 INTO t", db, hist); !dberrors.HasCode(err, dberrors.ErrCodeRecordAlreadyExists) {
		t.Fatalf("Expected RecordAlreadyExists, got %v", err)
	}
	// File commands: not recorded
	run(t, db, hist, "SAVE_AS "+filepath.Join(t.TempDir(), "h.txt"))

	want := []string{
		"CREATE t KEY id FIELDS id: INT, name: STRING",
		"INSERT id = 1, name = bob INTO t",
		"SELECT id FROM t WHERE id > 0",
		"INSERT id = 1 INTO t",
	}
	if !slices.Equal(hist.Entries(), want) {
		t.Errorf("Expected history\n%v\ngot\n%v", want, hist.Entries())
	}
}

func TestParseErrors(t *testing.T) {
	db := storage.NewDatabase[int64]()
	hist := history.New()
	run(t, db, hist, "CREATE t KEY id FIELDS id: INT")

	tests := []struct {
		input string
		code  dberrors.ErrorCode
	}{
		{"DROP t", dberrors.ErrCodeUnknownCommand},
		{"create t KEY id FIELDS id: INT", dberrors.ErrCodeUnknownCommand},
		{"CREATE t FIELDS id: INT", dberrors.ErrCodeMissingKeyword},
		{"CREATE t KEY id", dberrors.ErrCodeMissingKeyword},
		{"CREATE KEY id FIELDS id: INT", dberrors.ErrCodeMissingField},
		{"CREATE u KEY FIELDS id: INT", dberrors.ErrCodeMissingField},
		{"CREATE u KEY id FIELDS", dberrors.ErrCodeMissingField},
		{"CREATE u KEY id FIELDS id INT", dberrors.ErrCodeFieldParse},
		{"CREATE u KEY id FIELDS id: DATE", dberrors.ErrCodeFieldParse},
		{"INSERT id = 1 t", dberrors.ErrCodeMissingKeyword},
		{"INSERT INTO t", dberrors.ErrCodeMissingField},
		{"INSERT id = 1 INTO", dberrors.ErrCodeMissingField},
		{"INSERT id = 1 INTO nope", dberrors.ErrCodeTableNotFound},
		{"DELETE 1 t", dberrors.ErrCodeMissingKeyword},
		{"DELETE FROM t", dberrors.ErrCodeMissingField},
		{"DELETE 1 FROM nope", dberrors.ErrCodeTableNotFound},
		{"SELECT id t", dberrors.ErrCodeMissingKeyword},
		{"SELECT FROM t", dberrors.ErrCodeMissingField},
		{"SELECT , FROM t", dberrors.ErrCodeMissingField},
		{"SELECT id FROM WHERE id = 1", dberrors.ErrCodeMissingField},
		{"SELECT id FROM nope", dberrors.ErrCodeTableNotFound},
		{"SAVE_AS", dberrors.ErrCodeMissingField},
		{"READ_FROM   ", dberrors.ErrCodeMissingField},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := Handle(tt.input, db, hist)
			if !dberrors.HasCode(err, tt.code) {
				t.Errorf("Expected code %d, got %v", tt.code, err)
			}
		})
	}

	if hist.Len() != 1 {
		t.Errorf("Parse failures must not be recorded, history has %d entries", hist.Len())
	}
}

func TestExecutionErrors(t *testing.T) {
	db := storage.NewDatabase[int64]()
	hist := history.New()
	run(t, db, hist, "CREATE t KEY id FIELDS id: INT, ok: BOOL")

	tests := []struct {
		input string
		code  dberrors.ErrorCode
	}{
		{"CREATE t KEY id FIELDS id: INT", dberrors.ErrCodeTableAlreadyExists},
		{"CREATE s KEY id FIELDS id: STRING", dberrors.ErrCodeWrongKeyType},
		{"CREATE s KEY key FIELDS id: INT", dberrors.ErrCodeUnknownField},
		{"INSERT ok = maybe INTO t", dberrors.ErrCodeFieldParse},
		{"INSERT ok = true INTO t", dberrors.ErrCodeMissingField},
		{"DELETE 7 FROM t", dberrors.ErrCodeInvalidKey},
		{"SELECT id FROM t WHERE id => 1", dberrors.ErrCodeConditionParse},
		{"READ_FROM " + filepath.Join(t.TempDir(), "missing.txt"), dberrors.ErrCodeIO},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := Handle(tt.input, db, hist)
			if !dberrors.HasCode(err, tt.code) {
				t.Errorf("Expected code %d, got %v", tt.code, err)
			}
		})
	}

	if names := db.TableNames(); !slices.Equal(names, []string{"t"}) {
		t.Errorf("Failed CREATEs must not add tables, got %v", names)
	}
}

func TestDuplicateInsertLeavesTableUnchanged(t *testing.T) {
	db := storage.NewDatabase[int64]()
	hist := history.New()
	run(t, db, hist,
		"CREATE t KEY id FIELDS id: INT, name: STRING",
		"INSERT id = 1, name = first INTO t",
	)

	_, err := Handle("INSERT id = 1, name = second INTO t", db, hist)
	if !dberrors.HasCode(err, dberrors.ErrCodeRecordAlreadyExists) {
		t.Fatalf("Expected RecordAlreadyExists, got %v", err)
	}
	if out := run(t, db, hist, "SELECT id, name FROM t"); out != "id=1, name=first" {
		t.Errorf("Expected original row, got %q", out)
	}
}

func TestSelectProjectionAndOr(t *testing.T) {
	db := storage.NewDatabase[int64]()
	hist := history.New()
	run(t, db, hist,
		"CREATE t KEY id FIELDS id: INT, a: INT, b: INT, note: STRING",
		"INSERT id = 1, a = 1, b = 9 INTO t",
		"INSERT id = 2, a = 0, b = 2, note = x INTO t",
		"INSERT id = 3, a = 0, b = 0 INTO t",
	)

	if out := run(t, db, hist, "SELECT id, note FROM t"); out != "id=1 | id=2, note=x | id=3" {
		t.Errorf("Unexpected projection %q", out)
	}
	if out := run(t, db, hist, "SELECT id FROM t WHERE a = 1, b = 2"); out != "id=1 | id=2" {
		t.Errorf("Expected OR semantics, got %q", out)
	}
	if out := run(t, db, hist, "SELECT id FROM t WHERE note > 1"); out != "id=2" {
		t.Errorf("Unexpected string comparison result %q", out)
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	db := storage.NewDatabase[int64]()
	hist := history.New()
	run(t, db, hist, "CREATE t KEY id FIELDS id: INT, name: STRING, score: FLOAT")

	inputs := []string{
		"CREATE   u KEY  id FIELDS id:int,name :  string,",
		`INSERT id=4 ,  name= "d" INTO   t`,
		"DELETE   4   FROM t",
		"SELECT id,name FROM t",
		"SELECT id , score FROM   t WHERE score >= 1.5, name = d",
		"SELECT id FROM t WHERE",
	}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			first, err := Parse(input, db, hist)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			canonical := first.Serialize()

			second, err := Parse(canonical, db, hist)
			if err != nil {
				t.Fatalf("Reparse of %q failed: %v", canonical, err)
			}
			if second.Serialize() != canonical {
				t.Errorf("Expected %q, got %q", canonical, second.Serialize())
			}
		})
	}
}

func TestCanonicalForms(t *testing.T) {
	db := storage.NewDatabase[int64]()
	hist := history.New()
	run(t, db, hist, "CREATE t KEY id FIELDS id: INT, name: STRING")

	tests := []struct {
		input string
		want  string
	}{
		{"CREATE u KEY id FIELDS id: int, name: string, id: Int", "CREATE u KEY id FIELDS id: INT, name: STRING"},
		{`INSERT id=1,name="a" INTO t`, `INSERT id = 1, name = "a" INTO t`},
		{"DELETE 1 FROM t", "DELETE 1 FROM t"},
		{"SELECT id,,name FROM t WHERE id = 1", "SELECT id, name FROM t WHERE id = 1"},
		{"SAVE_AS  out.txt", "SAVE_AS out.txt"},
		{"READ_FROM in.txt ", "READ_FROM in.txt"},
	}
	for _, tt := range tests {
		cmd, err := Parse(tt.input, db, hist)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", tt.input, err)
		}
		if got := cmd.Serialize(); got != tt.want {
			t.Errorf("Expected %q, got %q", tt.want, got)
		}
	}
}

func TestReadFromAbortsOnFirstFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "replay.txt")
	content := "CREATE t KEY id FIELDS id: INT\n\nINSERT id = 1 INTO t\nINSERT id = 1 INTO t\nINSERT id = 2 INTO t\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	db := storage.NewDatabase[int64]()
	hist := history.New()
	_, err := Handle("READ_FROM "+path, db, hist)
	if !dberrors.HasCode(err, dberrors.ErrCodeRecordAlreadyExists) {
		t.Fatalf("Expected RecordAlreadyExists from the failing line, got %v", err)
	}

	table, _ := db.Table("t")
	if table.Len() != 1 {
		t.Errorf("Expected lines before the failure to be applied, got %d rows", table.Len())
	}
	if _, ok := table.Get(2); ok {
		t.Error("Lines after the failure must not run")
	}
}

func TestHandleAny(t *testing.T) {
	strDB := storage.NewAnyDatabase(storage.KeyTypeString)
	hist := history.New()

	if _, err := HandleAny("CREATE libs KEY name FIELDS name: STRING, stars: INT", strDB, hist); err != nil {
		t.Fatalf("CREATE failed: %v", err)
	}
	if _, err := HandleAny(`INSERT name = "lib1", stars = 5 INTO libs`, strDB, hist); err != nil {
		t.Fatalf("INSERT failed: %v", err)
	}
	if _, err := HandleAny(`DELETE "lib1" FROM libs`, strDB, hist); err != nil {
		t.Fatalf("DELETE with quoted key failed: %v", err)
	}

	intDB := storage.NewAnyDatabase(storage.KeyTypeInt)
	_, err := HandleAny("CREATE libs KEY name FIELDS name: STRING", intDB, history.New())
	if !dberrors.HasCode(err, dberrors.ErrCodeWrongKeyType) {
		t.Errorf("Expected WrongKeyType, got %v", err)
	}
}

func TestRecorded(t *testing.T) {
	db := storage.NewDatabase[string]()
	hist := history.New()
	for input, want := range map[string]bool{
		"CREATE t KEY id FIELDS id: STRING": true,
		"SAVE_AS x":                         false,
		"READ_FROM x":                       false,
	} {
		cmd, err := Parse(input, db, hist)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", input, err)
		}
		if Recorded(cmd) != want {
			t.Errorf("Recorded(%q): expected %v", input, want)
		}
	}
}
