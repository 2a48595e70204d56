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
Package main is the entry point for the local ReplayDB front ends.

The binary owns one in-memory engine for the lifetime of the process and
drives it either through the terminal wizard (-ui graphic, the default) or
the line-oriented shell (-ui command).

Configuration precedence: defaults, config file, REPLAYDB_* environment,
then command-line flags.

Usage Examples:
===============

  Start the wizard with string keys:
    ./replaydb

  Start the shell with integer keys:
    ./replaydb -ui command -key-type int

  Replay a snapshot from a script:
    echo 'READ_FROM snapshot.txt' | ./replaydb -ui command
*/
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"replaydb/internal/banner"
	"replaydb/internal/config"
	"replaydb/internal/engine"
	"replaydb/internal/logging"
	"replaydb/internal/shell"
	"replaydb/internal/storage"
	"replaydb/internal/tui"
)

// configFlags are the flags that map onto configuration keys.
var configFlags = map[string]bool{
	"key-type":     true,
	"ui":           true,
	"history-file": true,
	"log-level":    true,
	"log-json":     true,
	"log-file":     true,
}

func printUsage() {
	fmt.Println(banner.AnsiBold + "ReplayDB" + banner.AnsiReset + " - replayable in-memory table store")
	fmt.Println()
	fmt.Println("Usage: replaydb [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -ui <graphic|command>    Front end (default: graphic)")
	fmt.Println("  -key-type <string|int>   Primary key type for every table (default: string)")
	fmt.Println("  -history-file <path>     Shell line history file")
	fmt.Println("  -config <path>           Path to configuration file")
	fmt.Println("  -log-level <level>       Log level: debug, info, warn, error")
	fmt.Println("  -log-json                Enable JSON log output")
	fmt.Println("  -log-file <path>         Write logs to a file")
	fmt.Println("  -version                 Show version information")
	fmt.Println("  -help                    Show this help message")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Printf("  %s, %s, %s, %s, %s\n",
		config.EnvKeyType, config.EnvUI, config.EnvLogLevel, config.EnvLogFile, config.EnvConfigFile)
}

func main() {
	defaults := config.DefaultConfig()

	flag.String("key-type", defaults.KeyType, "Primary key type: string or int")
	flag.String("ui", defaults.UI, "Front end: graphic or command")
	flag.String("history-file", defaults.HistoryFile, "Shell line history file")
	flag.String("log-level", defaults.LogLevel, "Log level: debug, info, warn, error")
	flag.Bool("log-json", defaults.LogJSON, "Enable JSON log output")
	flag.String("log-file", "", "Write logs to this file")
	configFile := flag.String("config", "", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Show version information")
	showHelp := flag.Bool("help", false, "Show help message")

	flag.Usage = printUsage
	flag.Parse()

	if *showVersion {
		fmt.Printf("replaydb version %s\n", banner.Version)
		os.Exit(0)
	}
	if *showHelp {
		printUsage()
		os.Exit(0)
	}

	cfgMgr := config.NewManager()
	if err := cfgMgr.Load(*configFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	cfg := cfgMgr.Get()

	// Only flags set explicitly override file and environment values
	var flagErr error
	flag.Visit(func(f *flag.Flag) {
		if configFlags[f.Name] && flagErr == nil {
			flagErr = cfg.Set(f.Name, f.Value.String())
		}
	})
	if flagErr != nil {
		fmt.Fprintf(os.Stderr, "Invalid flag: %v\n", flagErr)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}
	cfgMgr.Set(cfg)

	// The wizard owns the terminal, so its logs go to a file or nowhere.
	var fallback io.Writer = os.Stderr
	if cfg.UI == config.UIGraphic {
		fallback = io.Discard
	}
	closeLog, err := configureLogging(cfg, fallback)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	log := logging.NewLogger("main")
	if cfg.ConfigFile != "" {
		log.Info("Configuration loaded", "file", cfg.ConfigFile)
	}

	keyType, _ := storage.ParseKeyType(cfg.KeyType)
	eng := engine.New(keyType)
	log.Info("Engine started", "key_type", string(keyType), "ui", cfg.UI)

	if cfg.UI == config.UIGraphic {
		err = tui.Run(eng)
	} else {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			banner.Print()
		}
		err = shell.New(eng, shell.Options{HistoryFile: cfg.ExpandedHistoryFile()}).Run()
	}
	if err != nil {
		log.Error("Front end failed", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		closeLog()
		os.Exit(1)
	}

	stats := eng.Stats()
	log.Info("Session ended", "tables", stats.Tables, "records", stats.Records, "history_len", stats.HistoryLen)
}

// configureLogging applies the logging settings. Logs go to cfg.LogFile
// when set, otherwise to fallback.
func configureLogging(cfg *config.Config, fallback io.Writer) (func(), error) {
	level, _ := logging.ParseLevel(cfg.LogLevel)
	out := fallback
	closeFn := func() {}

	if cfg.LogFile != "" {
		f, err := os.OpenFile(os.ExpandEnv(cfg.LogFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, err
		}
		out = f
		closeFn = func() { f.Close() }
	}

	logging.Configure(logging.Config{Level: level, Output: out, JSONMode: cfg.LogJSON})
	return closeFn, nil
}
