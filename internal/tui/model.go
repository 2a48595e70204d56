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
Package tui implements the menu-driven terminal front end for ReplayDB.

The wizard walks the user through one command at a time: pick a command
from the menu, fill in the screens it needs, and read the result. The
wizard only builds command text; every command goes through the engine's
Submit like any other front end, so it is recorded and replayable.

Screens per command:

	Create     table name -> field/type pairs -> key field
	Insert     table -> field/value pairs
	Select     table -> fields -> condition (optional)
	Delete     table -> key value
	Save As    file path
	Read From  file path

Pressing ':' on the menu opens a free-form command line. Esc returns to
the menu and Esc on the menu quits.
*/
package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"replaydb/internal/command"
	"replaydb/internal/condition"
	"replaydb/internal/engine"
	dberrors "replaydb/internal/errors"
	"replaydb/internal/storage"
)

// Backend is what the wizard needs from the engine.
type Backend interface {
	Submit(text string) (string, error)
	TableNames() []string
	Schema(table string) ([]storage.Field, error)
	KeyTag() string
	PossibleTypes() []string
	Stats() engine.Stats
}

type screen int

const (
	screenMenu screen = iota
	screenTableName
	screenFieldTypes
	screenKeyField
	screenSelectTable
	screenFieldValues
	screenKeyValue
	screenSelectFields
	screenCondition
	screenFilePath
	screenCommandLine
	screenResults
)

type action int

const (
	actionNone action = iota
	actionCreate
	actionInsert
	actionSelect
	actionDelete
	actionSaveAs
	actionReadFrom
)

var menuItems = []string{"Create", "Insert", "Select", "Delete", "Save As", "Read From"}

// pair is a field name with its type or value text.
type pair struct {
	name  string
	value string
}

// Model is the bubbletea model of the wizard.
type Model struct {
	backend Backend
	keys    keyMap
	help    help.Model
	input   textinput.Model
	results viewport.Model

	width  int
	height int

	screen screen
	action action
	index  int

	table         string
	fields        []pair
	keyCandidates []string
	values        []pair
	pending       pair
	editingValue  bool
	fieldOptions  []string
	selected      []string

	lastCommand string
	result      string
	failed      bool
	statusErr   error
}

// New creates a wizard on the menu screen.
func New(backend Backend) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 4096
	ti.Focus()

	vp := viewport.New(80, 12)

	return Model{
		backend: backend,
		keys:    keys,
		help:    help.New(),
		input:   ti,
		results: vp,
	}
}

// Run starts the wizard on the alternate screen and blocks until it exits.
func Run(backend Backend) error {
	_, err := tea.NewProgram(New(backend), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.results.Width = max(msg.Width-8, 20)
		m.results.Height = max(msg.Height-12, 3)
		return m, nil

	case tea.KeyMsg:
		m.statusErr = nil

		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		if key.Matches(msg, m.keys.Back) {
			if m.screen == screenMenu {
				return m, tea.Quit
			}
			m.reset()
			return m, nil
		}

		switch m.screen {
		case screenMenu:
			return m.updateMenu(msg)
		case screenTableName, screenKeyValue, screenFilePath, screenCommandLine:
			return m.updateTextEntry(msg)
		case screenFieldTypes:
			return m.updateFieldTypes(msg)
		case screenKeyField:
			return m.updateKeyField(msg)
		case screenSelectTable:
			return m.updateSelectTable(msg)
		case screenFieldValues:
			return m.updateFieldValues(msg)
		case screenSelectFields:
			return m.updateSelectFields(msg)
		case screenCondition:
			return m.updateCondition(msg)
		case screenResults:
			return m.updateResults(msg)
		}
	}
	return m, nil
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case m.moveCursor(msg, len(menuItems)):
	case key.Matches(msg, m.keys.Command):
		m.screen = screenCommandLine
		m.input.Reset()
	case key.Matches(msg, m.keys.Select):
		m.startAction(m.index)
	}
	return m, nil
}

// startAction opens the first screen of the menu entry at i.
func (m *Model) startAction(i int) {
	switch i {
	case 0:
		m.action, m.screen = actionCreate, screenTableName
	case 1:
		m.action, m.screen = actionInsert, screenSelectTable
	case 2:
		m.action, m.screen = actionSelect, screenSelectTable
	case 3:
		m.action, m.screen = actionDelete, screenSelectTable
	case 4:
		m.action, m.screen = actionSaveAs, screenFilePath
	case 5:
		m.action, m.screen = actionReadFrom, screenFilePath
	default:
		m.statusErr = dberrors.InvalidIndex(i)
		return
	}
	m.index = 0
	m.input.Reset()
}

func (m Model) updateTextEntry(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !key.Matches(msg, m.keys.Select) {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	text := strings.TrimSpace(m.input.Value())
	switch m.screen {
	case screenTableName:
		m.table = text
		m.screen = screenFieldTypes
		m.index = 0
		m.input.Reset()
	case screenKeyValue:
		m.submit(fmt.Sprintf("%s %s %s %s", command.KeywordDelete, text, command.KeywordFrom, m.table))
	case screenFilePath:
		kw := command.KeywordSaveAs
		if m.action == actionReadFrom {
			kw = command.KeywordReadFrom
		}
		m.submit(kw + " " + text)
	case screenCommandLine:
		m.submit(text)
	}
	return m, nil
}

func (m Model) updateFieldTypes(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	types := m.backend.PossibleTypes()
	switch {
	case m.moveCursor(msg, len(types)):
	case key.Matches(msg, m.keys.Add):
		m.addFieldType(types)
	case key.Matches(msg, m.keys.Select):
		if strings.TrimSpace(m.input.Value()) != "" && !m.addFieldType(types) {
			return m, nil
		}
		tag := m.backend.KeyTag()
		m.keyCandidates = nil
		for _, f := range m.fields {
			if f.value == tag {
				m.keyCandidates = append(m.keyCandidates, f.name)
			}
		}
		m.screen = screenKeyField
		m.index = 0
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// addFieldType declares the typed field name with the highlighted type.
// A name declared again takes the new type.
func (m *Model) addFieldType(types []string) bool {
	name := strings.TrimSpace(m.input.Value())
	if name == "" {
		m.statusErr = dberrors.MissingField("Field name")
		return false
	}
	if m.index < 0 || m.index >= len(types) {
		m.statusErr = dberrors.ItemWithIndexNotFound("Type", m.index)
		return false
	}
	m.fields = setPair(m.fields, pair{name: name, value: types[m.index]})
	m.input.Reset()
	return true
}

func (m Model) updateKeyField(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case m.moveCursor(msg, len(m.keyCandidates)):
	case key.Matches(msg, m.keys.Select):
		if m.index >= len(m.keyCandidates) {
			m.statusErr = dberrors.InvalidIndex(m.index)
			return m, nil
		}
		m.submit(m.createCommand(m.keyCandidates[m.index]))
	}
	return m, nil
}

func (m Model) createCommand(keyField string) string {
	decls := make([]string, len(m.fields))
	for i, f := range m.fields {
		decls[i] = f.name + ": " + f.value
	}
	return fmt.Sprintf("%s %s %s %s %s %s",
		command.KeywordCreate, m.table,
		command.KeywordKey, keyField,
		command.KeywordFields, strings.Join(decls, ", "))
}

func (m Model) updateSelectTable(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	names := m.backend.TableNames()
	switch {
	case m.moveCursor(msg, len(names)):
	case key.Matches(msg, m.keys.Select):
		if m.index >= len(names) {
			m.statusErr = dberrors.InvalidIndex(m.index)
			return m, nil
		}
		m.table = names[m.index]
		m.index = 0
		m.input.Reset()

		switch m.action {
		case actionInsert:
			m.pending = pair{}
			m.editingValue = false
			m.screen = screenFieldValues
		case actionSelect:
			schema, err := m.backend.Schema(m.table)
			if err != nil {
				m.statusErr = err
				return m, nil
			}
			m.fieldOptions = make([]string, len(schema))
			for i, f := range schema {
				m.fieldOptions[i] = f.Name
			}
			m.screen = screenSelectFields
		case actionDelete:
			m.screen = screenKeyValue
		}
	}
	return m, nil
}

func (m Model) updateFieldValues(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Toggle):
		m.toggleEditing()
	case key.Matches(msg, m.keys.Add):
		m.addFieldValue()
	case key.Matches(msg, m.keys.Select):
		m.storeInput()
		if m.pending.name != "" || m.pending.value != "" {
			if !m.addFieldValue() {
				return m, nil
			}
		}
		m.submit(m.insertCommand())
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) addFieldValue() bool {
	m.storeInput()
	name := strings.TrimSpace(m.pending.name)
	if name == "" {
		m.statusErr = dberrors.MissingField("Field name")
		return false
	}
	m.values = setPair(m.values, pair{name: name, value: strings.TrimSpace(m.pending.value)})
	m.pending = pair{}
	m.editingValue = false
	m.input.Reset()
	return true
}

func (m Model) insertCommand() string {
	assigns := make([]string, len(m.values))
	for i, v := range m.values {
		assigns[i] = v.name + " = " + v.value
	}
	return fmt.Sprintf("%s %s %s %s",
		command.KeywordInsert, strings.Join(assigns, ", "), command.KeywordInto, m.table)
}

func (m Model) updateSelectFields(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case m.moveCursor(msg, len(m.fieldOptions)):
	case key.Matches(msg, m.keys.Add):
		if m.index >= len(m.fieldOptions) {
			m.statusErr = dberrors.ItemWithIndexNotFound("Field", m.index)
			return m, nil
		}
		field := m.fieldOptions[m.index]
		if i := slices.Index(m.selected, field); i >= 0 {
			m.selected = slices.Delete(m.selected, i, i+1)
		} else {
			m.selected = append(m.selected, field)
		}
	case key.Matches(msg, m.keys.Select):
		m.screen = screenCondition
		m.index = 0
		m.pending = pair{}
		m.editingValue = false
		m.input.Reset()
	}
	return m, nil
}

func (m Model) updateCondition(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ops := condition.Ops()
	switch {
	case m.moveCursor(msg, len(ops)):
	case key.Matches(msg, m.keys.Toggle):
		m.toggleEditing()
	case key.Matches(msg, m.keys.Select):
		m.storeInput()
		if m.index >= len(ops) {
			m.statusErr = dberrors.ItemWithIndexNotFound("Operator", m.index)
			return m, nil
		}
		m.submit(m.selectCommand(ops[m.index].String()))
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// selectCommand adds a WHERE clause only when field and value are both set.
func (m Model) selectCommand(op string) string {
	text := fmt.Sprintf("%s %s %s %s",
		command.KeywordSelect, strings.Join(m.selected, ", "), command.KeywordFrom, m.table)
	field := strings.TrimSpace(m.pending.name)
	val := strings.TrimSpace(m.pending.value)
	if field != "" && val != "" {
		text += fmt.Sprintf(" %s %s %s %s", command.KeywordWhere, field, op, val)
	}
	return text
}

func (m Model) updateResults(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Select) {
		m.reset()
		return m, nil
	}
	var cmd tea.Cmd
	m.results, cmd = m.results.Update(msg)
	return m, cmd
}

// submit runs one command and shows its outcome.
func (m *Model) submit(text string) {
	m.lastCommand = text
	res, err := m.backend.Submit(text)
	if err != nil {
		m.result = dberrors.FormatError(err)
		m.failed = true
	} else {
		m.result = res
		m.failed = false
	}
	m.results.SetContent(m.result)
	m.results.GotoTop()
	m.screen = screenResults
	m.input.Reset()
}

// moveCursor handles up and down within a list of n items.
func (m *Model) moveCursor(msg tea.KeyMsg, n int) bool {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.index > 0 {
			m.index--
		}
		return true
	case key.Matches(msg, m.keys.Down):
		if m.index < n-1 {
			m.index++
		}
		return true
	}
	return false
}

// storeInput saves the input box into the half of the pending pair being edited.
func (m *Model) storeInput() {
	if m.editingValue {
		m.pending.value = m.input.Value()
	} else {
		m.pending.name = m.input.Value()
	}
}

func (m *Model) toggleEditing() {
	m.storeInput()
	m.editingValue = !m.editingValue
	if m.editingValue {
		m.input.SetValue(m.pending.value)
	} else {
		m.input.SetValue(m.pending.name)
	}
}

// reset clears the wizard state and returns to the menu.
func (m *Model) reset() {
	m.screen = screenMenu
	m.action = actionNone
	m.index = 0
	m.table = ""
	m.fields = nil
	m.keyCandidates = nil
	m.values = nil
	m.pending = pair{}
	m.editingValue = false
	m.fieldOptions = nil
	m.selected = nil
	m.input.Reset()
}

// setPair replaces the entry with the same name or appends p.
func setPair(pairs []pair, p pair) []pair {
	for i := range pairs {
		if pairs[i].name == p.name {
			pairs[i].value = p.value
			return pairs
		}
	}
	return append(pairs, p)
}
