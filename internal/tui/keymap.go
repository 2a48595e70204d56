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

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Select  key.Binding
	Add     key.Binding
	Toggle  key.Binding
	Command key.Binding
	Back    key.Binding
	Quit    key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up"),
		key.WithHelp("↑", "previous"),
	),
	Down: key.NewBinding(
		key.WithKeys("down"),
		key.WithHelp("↓", "next"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "confirm"),
	),
	Add: key.NewBinding(
		key.WithKeys("pgup", "ctrl+a"),
		key.WithHelp("pgup", "add entry"),
	),
	Toggle: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "field/value"),
	),
	Command: key.NewBinding(
		key.WithKeys(":"),
		key.WithHelp(":", "command line"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "menu / quit"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
}

// bindings returns the keys shown in the help line for a screen.
func (k keyMap) bindings(s screen) []key.Binding {
	switch s {
	case screenMenu:
		return []key.Binding{k.Up, k.Down, k.Select, k.Command, k.Back}
	case screenFieldTypes, screenSelectFields:
		return []key.Binding{k.Up, k.Down, k.Add, k.Select, k.Back}
	case screenFieldValues:
		return []key.Binding{k.Toggle, k.Add, k.Select, k.Back}
	case screenCondition:
		return []key.Binding{k.Up, k.Down, k.Toggle, k.Select, k.Back}
	case screenKeyField, screenSelectTable:
		return []key.Binding{k.Up, k.Down, k.Select, k.Back}
	default:
		return []key.Binding{k.Select, k.Back}
	}
}
