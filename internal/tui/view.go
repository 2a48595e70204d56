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

package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"replaydb/internal/condition"
	dberrors "replaydb/internal/errors"
)

func (m Model) View() string {
	sections := []string{m.renderHeader(), m.renderBody()}

	if m.statusErr != nil {
		sections = append(sections, errorStyle.Render(dberrors.FormatError(m.statusErr)))
	}
	sections = append(sections, m.renderStatusBar())
	sections = append(sections, m.help.ShortHelpView(m.keys.bindings(m.screen)))

	return appStyle.Render(strings.Join(sections, "\n"))
}

func (m Model) renderHeader() string {
	stats := m.backend.Stats()
	title := titleStyle.Render("ReplayDB")
	badge := badgeStyle.Render("KEY " + strings.ToUpper(string(stats.KeyType)))
	counts := mutedStyle.Render(fmt.Sprintf("Tables: %d | Records: %d | History: %d",
		stats.Tables, stats.Records, stats.HistoryLen))
	return lipgloss.JoinHorizontal(lipgloss.Left, title, "  ", badge, "  ", counts) + "\n"
}

func (m Model) renderBody() string {
	switch m.screen {
	case screenMenu:
		return renderList("Menu", menuItems, m.index, "")
	case screenTableName:
		return panel("Create: table name", m.input.View())
	case screenFieldTypes:
		return m.renderFieldTypes()
	case screenKeyField:
		return renderList(fmt.Sprintf("Create %s: key field (%s)", m.table, m.backend.KeyTag()),
			m.keyCandidates, m.index,
			fmt.Sprintf("No field of type %s declared", m.backend.KeyTag()))
	case screenSelectTable:
		return renderList("Select table", m.backend.TableNames(), m.index, "No tables yet")
	case screenFieldValues:
		return m.renderFieldValues()
	case screenKeyValue:
		return panel(fmt.Sprintf("Delete from %s: key value", m.table), m.input.View())
	case screenSelectFields:
		return m.renderSelectFields()
	case screenCondition:
		return m.renderCondition()
	case screenFilePath:
		title := "Save As: file path"
		if m.action == actionReadFrom {
			title = "Read From: file path"
		}
		return panel(title, m.input.View())
	case screenCommandLine:
		return panel("Command", m.input.View())
	case screenResults:
		return m.renderResults()
	}
	return ""
}

func (m Model) renderFieldTypes() string {
	var b strings.Builder
	for _, f := range m.fields {
		fmt.Fprintf(&b, "%s: %s\n", f.name, f.value)
	}
	if len(m.fields) == 0 {
		b.WriteString(mutedStyle.Render("No fields declared") + "\n")
	}
	b.WriteString("\nField name\n" + m.input.View() + "\n\nType\n")
	b.WriteString(listLines(m.backend.PossibleTypes(), m.index))
	return panel("Create "+m.table+": fields", b.String())
}

func (m Model) renderFieldValues() string {
	var b strings.Builder
	if schema, err := m.backend.Schema(m.table); err == nil {
		decls := make([]string, len(schema))
		for i, f := range schema {
			decls[i] = f.Name + ": " + f.Type
		}
		b.WriteString(mutedStyle.Render("Schema: "+strings.Join(decls, ", ")) + "\n\n")
	}
	for _, v := range m.values {
		fmt.Fprintf(&b, "%s = %s\n", v.name, v.value)
	}
	b.WriteString("\n" + m.renderPendingPair("Field", "Value"))
	return panel("Insert into "+m.table, b.String())
}

func (m Model) renderSelectFields() string {
	lines := make([]string, len(m.fieldOptions))
	for i, f := range m.fieldOptions {
		mark := "[ ] "
		if slices.Contains(m.selected, f) {
			mark = "[x] "
		}
		lines[i] = mark + f
	}
	return renderList("Select from "+m.table+": fields", lines, m.index, "No fields")
}

func (m Model) renderCondition() string {
	ops := condition.Ops()
	names := make([]string, len(ops))
	for i, op := range ops {
		names[i] = op.String()
	}
	body := m.renderPendingPair("Field", "Value") + "\nOperator\n" + listLines(names, m.index) +
		"\n" + mutedStyle.Render("Leave field or value empty to select every record")
	return panel("Select from "+m.table+": condition", body)
}

// renderPendingPair shows the half being edited as the input box.
func (m Model) renderPendingPair(nameLabel, valueLabel string) string {
	name := m.pending.name
	val := m.pending.value
	if m.editingValue {
		val = m.input.View()
	} else {
		name = m.input.View()
	}
	return fmt.Sprintf("%s\n%s\n%s\n%s\n", nameLabel, name, valueLabel, val)
}

func (m Model) renderResults() string {
	style := successStyle
	if m.failed {
		style = errorStyle
	}
	content := m.results.View()
	if strings.TrimSpace(m.result) == "" {
		content = mutedStyle.Render("No records")
	}
	body := mutedStyle.Render(m.lastCommand) + "\n\n" + style.Render(content)
	return panel("Result", body)
}

func (m Model) renderStatusBar() string {
	hint := "Esc: menu"
	if m.screen == screenMenu {
		hint = "Esc: quit"
	}
	return statusBarStyle.Render(hint)
}

func panel(title, body string) string {
	return panelStyle.Render(panelTitleStyle.Render(title) + "\n" + body)
}

func renderList(title string, items []string, selected int, empty string) string {
	if len(items) == 0 {
		return panel(title, mutedStyle.Render(empty))
	}
	return panel(title, listLines(items, selected))
}

func listLines(items []string, selected int) string {
	lines := make([]string, len(items))
	for i, item := range items {
		if i == selected {
			lines[i] = selectedItemStyle.Render("> " + item)
		} else {
			lines[i] = itemStyle.Render("  " + item)
		}
	}
	return strings.Join(lines, "\n")
}
