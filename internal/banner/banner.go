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
Package banner provides the startup banner display for ReplayDB.

The ASCII art logo is embedded from banner.txt at compile time, so the
binaries carry it without a runtime file dependency.

ANSI Color Codes:
=================

Output uses ANSI escape sequences of the form \033[<code>m:

  - 31: Red foreground
  - 32: Green foreground
  - 33: Yellow foreground
  - 0:  Reset all attributes
  - 1:  Bold text

Usage:
======

The command shell prints the short banner:

	banner.Print()

The UDP server prints the banner with its configuration summary:

	banner.PrintServerWithConfig(cfg)
*/
package banner

import (
	_ "embed" // Required for the //go:embed directive
	"fmt"
	"io"
	"os"
	"strings"

	"replaydb/internal/config"
)

// banner contains the ASCII art logo loaded from banner.txt at compile time.
//
//go:embed banner.txt
var banner string

// ANSI escape codes for terminal text formatting.
const (
	AnsiRed    = "\033[31m"
	AnsiGreen  = "\033[32m"
	AnsiYellow = "\033[33m"
	AnsiCyan   = "\033[36m"
	AnsiReset  = "\033[0m"
	AnsiBold   = "\033[1m"
	AnsiDim    = "\033[2m"
)

// Version information for the ReplayDB application.
const (
	Version   = "01.26.14"
	Copyright = "(c)2026 Firefly Software Solutions Inc"
	License   = "Licensed under Apache 2.0"
)

const lineWidth = 78

// Print writes the startup banner to stdout.
func Print() {
	PrintTo(os.Stdout)
}

// PrintTo writes the startup banner with version and copyright to w.
func PrintTo(w io.Writer) {
	fmt.Fprintln(w, AnsiRed+banner+AnsiReset)
	fmt.Fprintln(w, AnsiRed+AnsiBold+":: ReplayDB ::                  (v"+Version+")"+AnsiReset)
	fmt.Fprintln(w, AnsiGreen+AnsiBold+Copyright+AnsiReset)
	fmt.Fprintln(w, AnsiGreen+AnsiBold+License+AnsiReset)
	fmt.Fprintln(w)
}

// PrintLogSeparator prints a visual separator before logs start.
func PrintLogSeparator() {
	printLogSeparator(os.Stdout)
}

func printLogSeparator(w io.Writer) {
	arrow := "v"
	text := " LOGS START HERE "
	padding := (lineWidth - len(text) - 4) / 2 // 4 for arrows on each side
	if padding < 0 {
		padding = 0
	}
	line := strings.Repeat("-", padding)
	fmt.Fprintf(w, "  %s%s %s%s%s %s%s\n",
		AnsiYellow, arrow+arrow+line,
		AnsiBold, text, AnsiReset+AnsiYellow,
		line+arrow+arrow, AnsiReset)
	fmt.Fprintln(w)
}

// PrintServerWithConfig prints the server banner and configuration to stdout.
func PrintServerWithConfig(cfg *config.Config) {
	PrintServerWithConfigTo(os.Stdout, cfg)
}

// PrintServerWithConfigTo writes the server banner with configuration to w.
func PrintServerWithConfigTo(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, AnsiRed+banner+AnsiReset)
	fmt.Fprintln(w, AnsiRed+AnsiBold+":: ReplayDB Server ::           (v"+Version+")"+AnsiReset)
	fmt.Fprintln(w, AnsiDim+"  Replayable In-Memory Table Store"+AnsiReset)
	fmt.Fprintln(w)

	printConfigSource(w, cfg)
	printCompactConfig(w, cfg)

	fmt.Fprintln(w, AnsiDim+"  "+Copyright+AnsiReset)
	fmt.Fprintln(w)

	printLogSeparator(w)
}

func printConfigSource(w io.Writer, cfg *config.Config) {
	fmt.Fprint(w, "  "+AnsiDim+"Config: "+AnsiReset)
	if cfg.ConfigFile != "" {
		fmt.Fprintln(w, AnsiYellow+cfg.ConfigFile+AnsiReset)
	} else {
		fmt.Fprintln(w, AnsiDim+"defaults + environment"+AnsiReset)
	}
	fmt.Fprintln(w)
}

func printCompactConfig(w io.Writer, cfg *config.Config) {
	printSectionHeader(w, "Server", lineWidth)
	printRow3(w,
		fmtKV("Listen", AnsiGreen+cfg.ListenAddr+AnsiReset),
		fmtKV("Buffer", fmt.Sprintf("%dB", cfg.BufferSize)),
		fmtKV("Log", cfg.LogLevel))
	fmt.Fprintln(w)

	printSectionHeader(w, "Engine", lineWidth)
	printRow2(w,
		fmtKV("Key Type", strings.ToUpper(cfg.KeyType)),
		fmtKV("Storage", "in-memory (replay via SAVE_AS / READ_FROM)"))
	fmt.Fprintln(w)

	printSectionHeader(w, "Discovery", lineWidth)
	if cfg.Advertise {
		printRow2(w,
			fmtKV("mDNS", fmtEnabled("advertising", true)),
			fmtKV("Instance", cfg.InstanceName))
	} else {
		printRow2(w,
			fmtKV("mDNS", fmtEnabled("off", false)),
			AnsiDim+"(enable with -advertise)"+AnsiReset)
	}
	fmt.Fprintln(w)
}

func printSectionHeader(w io.Writer, title string, width int) {
	titleLen := len(title) + 4 // "[ title ]"
	leftPad := 2
	rightPad := width - leftPad - titleLen
	if rightPad < 0 {
		rightPad = 0
	}
	fmt.Fprintf(w, "  %s[ %s%s%s ]%s%s\n",
		AnsiDim+strings.Repeat("-", leftPad),
		AnsiReset+AnsiCyan+AnsiBold, title, AnsiReset+AnsiDim,
		strings.Repeat("-", rightPad),
		AnsiReset)
}

func fmtKV(key, value string) string {
	return fmt.Sprintf("%s%s:%s %s", AnsiDim, key, AnsiReset, value)
}

func fmtEnabled(name string, enabled bool) string {
	if enabled {
		return AnsiGreen + name + AnsiReset
	}
	return AnsiDim + name + AnsiReset
}

func printRow3(w io.Writer, col1, col2, col3 string) {
	fmt.Fprintf(w, "  %-32s %-26s %s\n", col1, col2, col3)
}

func printRow2(w io.Writer, col1, col2 string) {
	fmt.Fprintf(w, "  %-40s %s\n", col1, col2)
}
