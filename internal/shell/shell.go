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
Package shell implements the line-oriented ReplayDB front end.

Each input line is one command submitted to the engine. The result or the
formatted error is printed and the loop continues. An empty line or EOF
ends the session.

When stdin is a terminal the shell uses readline for editing, keyword and
table-name completion and a persistent line history. Otherwise it reads
plain lines, which is how scripts and tests drive it:

	echo 'CREATE t KEY id FIELDS id: STRING' | replaydb -ui command

Local commands start with a backslash:

	\q    quit
	\h    help
	\dt   list tables
*/
package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"golang.org/x/term"

	"replaydb/internal/command"
	dberrors "replaydb/internal/errors"
	"replaydb/internal/logging"
)

// Prompt is printed before each command line.
const Prompt = "> "

// Backend is what the shell needs from the engine.
type Backend interface {
	Submit(text string) (string, error)
	TableNames() []string
}

// Options configures a Shell.
type Options struct {
	// HistoryFile stores readline line history. Empty disables it.
	HistoryFile string
	In          io.Reader
	Out         io.Writer
}

// Shell is a read-eval-print loop over a Backend.
type Shell struct {
	backend     Backend
	in          io.Reader
	out         io.Writer
	historyFile string
	logger      *logging.Logger
}

// New creates a shell. Nil In and Out default to stdin and stdout.
func New(backend Backend, opts Options) *Shell {
	s := &Shell{
		backend:     backend,
		in:          opts.In,
		out:         opts.Out,
		historyFile: opts.HistoryFile,
		logger:      logging.NewLogger("shell"),
	}
	if s.in == nil {
		s.in = os.Stdin
	}
	if s.out == nil {
		s.out = os.Stdout
	}
	return s
}

// Run reads commands until an empty line, EOF or \q.
func (s *Shell) Run() error {
	if s.interactive() {
		rl, err := s.newReadline()
		if err == nil {
			defer rl.Close()
			return s.runReadline(rl)
		}
		s.logger.Warn("Line editing unavailable", "error", err)
	}
	return s.runSimple()
}

func (s *Shell) interactive() bool {
	f, ok := s.in.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (s *Shell) newReadline() (*readline.Instance, error) {
	return readline.NewEx(&readline.Config{
		Prompt:          Prompt,
		HistoryFile:     s.historyFile,
		AutoComplete:    s.completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
}

// completer offers command keywords, then clause keywords and table names.
func (s *Shell) completer() *readline.PrefixCompleter {
	tables := readline.PcItemDynamic(func(string) []string {
		return s.backend.TableNames()
	})
	tablesWhere := readline.PcItemDynamic(func(string) []string {
		return s.backend.TableNames()
	}, readline.PcItem(command.KeywordWhere))

	return readline.NewPrefixCompleter(
		readline.PcItem(command.KeywordCreate,
			readline.PcItem(command.KeywordKey),
			readline.PcItem(command.KeywordFields)),
		readline.PcItem(command.KeywordInsert,
			readline.PcItem(command.KeywordInto, tables)),
		readline.PcItem(command.KeywordDelete,
			readline.PcItem(command.KeywordFrom, tables)),
		readline.PcItem(command.KeywordSelect,
			readline.PcItem(command.KeywordFrom, tablesWhere)),
		readline.PcItem(command.KeywordSaveAs),
		readline.PcItem(command.KeywordReadFrom),
		readline.PcItem(`\q`),
		readline.PcItem(`\h`),
		readline.PcItem(`\dt`),
	)
}

// filterInput disables Ctrl+Z so the shell is not suspended mid-line.
func filterInput(r rune) (rune, bool) {
	if r == readline.CharCtrlZ {
		return r, false
	}
	return r, true
}

func (s *Shell) runReadline(rl *readline.Instance) error {
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			fmt.Fprintln(s.out, `(Use \q or an empty line to quit)`)
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if !s.handleLine(line) {
			return nil
		}
	}
}

func (s *Shell) runSimple() error {
	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	prompt := s.interactive()
	for {
		if prompt {
			fmt.Fprint(s.out, Prompt)
		}
		if !scanner.Scan() {
			return scanner.Err()
		}
		if !s.handleLine(scanner.Text()) {
			return nil
		}
	}
}

// handleLine processes one input line and reports whether to continue.
func (s *Shell) handleLine(line string) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return false
	}

	if strings.HasPrefix(input, `\`) {
		return s.handleLocal(input)
	}

	result, err := s.backend.Submit(input)
	if err != nil {
		fmt.Fprintln(s.out, dberrors.FormatError(err))
		return true
	}
	fmt.Fprintln(s.out, result)
	return true
}

func (s *Shell) handleLocal(input string) bool {
	switch input {
	case `\q`, `\quit`:
		return false
	case `\h`, `\help`:
		printHelp(s.out)
	case `\dt`:
		names := s.backend.TableNames()
		if len(names) == 0 {
			fmt.Fprintln(s.out, "No tables")
		}
		for _, name := range names {
			fmt.Fprintln(s.out, name)
		}
	default:
		fmt.Fprintf(s.out, "Unknown local command %s (\\h for help)\n", input)
	}
	return true
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  CREATE <table> KEY <field> FIELDS <name>: <TYPE>, ...")
	fmt.Fprintln(w, "  INSERT <name> = <value>, ... INTO <table>")
	fmt.Fprintln(w, "  DELETE <key> FROM <table>")
	fmt.Fprintln(w, "  SELECT <field>, ... FROM <table> [WHERE <field> <op> <value>, ...]")
	fmt.Fprintln(w, "  SAVE_AS <path>")
	fmt.Fprintln(w, "  READ_FROM <path>")
	fmt.Fprintln(w, "Types: INT, FLOAT, STRING, BOOL   Operators: =, !=, <, >, <=, >=")
	fmt.Fprintln(w, `Local: \q quit, \h help, \dt list tables. An empty line also quits.`)
}
