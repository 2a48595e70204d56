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
Package config loads ReplayDB settings from layered sources.

Precedence, highest first:
 1. Command-line flags
 2. Environment variables
 3. Configuration file
 4. Default values

Configuration File Format:
The file uses a flat TOML subset: one key = value per line, # comments,
optional single or double quotes around strings.

	# ReplayDB Configuration
	key_type = "int"
	ui = "command"
	listen_addr = "127.0.0.1:7878"
	buffer_size = 512
	advertise = true
	log_level = "debug"

Environment Variables:
  - REPLAYDB_KEY_TYPE: primary key type (string, int)
  - REPLAYDB_UI: local front end (graphic, command)
  - REPLAYDB_LISTEN_ADDR: UDP listen address
  - REPLAYDB_BUFFER_SIZE: UDP receive buffer in bytes
  - REPLAYDB_ADVERTISE: advertise the UDP server over mDNS (true/false)
  - REPLAYDB_INSTANCE_NAME: mDNS instance name
  - REPLAYDB_HISTORY_FILE: readline history file for the shell
  - REPLAYDB_LOG_LEVEL: log level (debug, info, warn, error)
  - REPLAYDB_LOG_JSON: JSON log output (true/false)
  - REPLAYDB_LOG_FILE: write logs to this file instead of stderr
  - REPLAYDB_CONFIG_FILE: path to the configuration file
*/
package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"replaydb/internal/logging"
	"replaydb/internal/storage"
)

// Environment variable names for configuration.
const (
	EnvKeyType      = "REPLAYDB_KEY_TYPE"
	EnvUI           = "REPLAYDB_UI"
	EnvListenAddr   = "REPLAYDB_LISTEN_ADDR"
	EnvBufferSize   = "REPLAYDB_BUFFER_SIZE"
	EnvAdvertise    = "REPLAYDB_ADVERTISE"
	EnvInstanceName = "REPLAYDB_INSTANCE_NAME"
	EnvHistoryFile  = "REPLAYDB_HISTORY_FILE"
	EnvLogLevel     = "REPLAYDB_LOG_LEVEL"
	EnvLogJSON      = "REPLAYDB_LOG_JSON"
	EnvLogFile      = "REPLAYDB_LOG_FILE"
	EnvConfigFile   = "REPLAYDB_CONFIG_FILE"
)

// Front end names accepted by the ui setting.
const (
	UIGraphic = "graphic"
	UICommand = "command"
)

// MaxBufferSize is the largest UDP payload over IPv4.
const MaxBufferSize = 65507

// DefaultConfigPaths are searched in order when no file is named.
var DefaultConfigPaths = []string{
	"$HOME/.config/replaydb/replaydb.conf",
	"./replaydb.conf",
}

// Config holds all configuration values for ReplayDB.
type Config struct {
	// Engine
	KeyType string `toml:"key_type" json:"key_type"`

	// Local front end
	UI          string `toml:"ui" json:"ui"`
	HistoryFile string `toml:"history_file" json:"history_file"`

	// UDP server
	ListenAddr   string `toml:"listen_addr" json:"listen_addr"`
	BufferSize   int    `toml:"buffer_size" json:"buffer_size"`
	Advertise    bool   `toml:"advertise" json:"advertise"`
	InstanceName string `toml:"instance_name" json:"instance_name"`

	// Logging
	LogLevel string `toml:"log_level" json:"log_level"`
	LogJSON  bool   `toml:"log_json" json:"log_json"`
	LogFile  string `toml:"log_file" json:"log_file"`

	// Metadata
	ConfigFile string `toml:"-" json:"-"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		KeyType:      string(storage.KeyTypeString),
		UI:           UIGraphic,
		HistoryFile:  "$HOME/.replaydb_history",
		ListenAddr:   "127.0.0.1:7878",
		BufferSize:   512,
		Advertise:    false,
		InstanceName: defaultInstanceName(),
		LogLevel:     "info",
		LogJSON:      false,
	}
}

func defaultInstanceName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "replaydb"
	}
	return host
}

// Manager handles configuration loading and access.
type Manager struct {
	config *Config
	mu     sync.RWMutex
}

// NewManager creates a manager holding the default configuration.
func NewManager() *Manager {
	return &Manager{config: DefaultConfig()}
}

// Get returns a copy of the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cfg := *m.config
	return &cfg
}

// Set replaces the configuration.
func (m *Manager) Set(cfg *Config) {
	m.mu.Lock()
	m.config = cfg
	m.mu.Unlock()
}

// Validate checks every setting and reports all problems at once.
func (c *Config) Validate() error {
	var errs []string

	if _, err := storage.ParseKeyType(c.KeyType); err != nil {
		errs = append(errs, fmt.Sprintf("invalid key_type: %s (must be string or int)", c.KeyType))
	}

	switch c.UI {
	case UIGraphic, UICommand:
	default:
		errs = append(errs, fmt.Sprintf("invalid ui: %s (must be graphic or command)", c.UI))
	}

	if _, _, err := net.SplitHostPort(c.ListenAddr); err != nil {
		errs = append(errs, fmt.Sprintf("invalid listen_addr: %s (%v)", c.ListenAddr, err))
	}

	if c.BufferSize < 1 || c.BufferSize > MaxBufferSize {
		errs = append(errs, fmt.Sprintf("invalid buffer_size: %d (must be 1-%d)", c.BufferSize, MaxBufferSize))
	}

	if c.Advertise && c.InstanceName == "" {
		errs = append(errs, "instance_name is required when advertise is enabled")
	}

	if _, ok := logging.ParseLevel(c.LogLevel); !ok {
		errs = append(errs, fmt.Sprintf("invalid log_level: %s (must be debug, info, warn, or error)", c.LogLevel))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// LoadFromFile replaces the configuration with defaults overlaid by the
// file at path.
func (m *Manager) LoadFromFile(path string) error {
	path = os.ExpandEnv(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := parseTOML(string(data), cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ConfigFile = path
	m.Set(cfg)
	return nil
}

// envKeys maps environment variables to configuration keys.
var envKeys = []struct {
	env string
	key string
}{
	{EnvKeyType, "key_type"},
	{EnvUI, "ui"},
	{EnvListenAddr, "listen_addr"},
	{EnvBufferSize, "buffer_size"},
	{EnvAdvertise, "advertise"},
	{EnvInstanceName, "instance_name"},
	{EnvHistoryFile, "history_file"},
	{EnvLogLevel, "log_level"},
	{EnvLogJSON, "log_json"},
	{EnvLogFile, "log_file"},
}

// LoadFromEnv overlays environment variables on the current
// configuration. Malformed numeric values are ignored.
func (m *Manager) LoadFromEnv() {
	cfg := m.Get()
	for _, ek := range envKeys {
		if v := os.Getenv(ek.env); v != "" {
			_ = applyConfigValue(cfg, ek.key, v)
		}
	}
	m.Set(cfg)
}

// FindConfigFile returns the first existing configuration file, checking
// REPLAYDB_CONFIG_FILE before the default paths, or "" if there is none.
func FindConfigFile() string {
	if envPath := os.Getenv(EnvConfigFile); envPath != "" {
		if _, err := os.Stat(os.ExpandEnv(envPath)); err == nil {
			return os.ExpandEnv(envPath)
		}
	}

	for _, path := range DefaultConfigPaths {
		expanded := os.ExpandEnv(path)
		if _, err := os.Stat(expanded); err == nil {
			return expanded
		}
	}
	return ""
}

// Load applies defaults, then the configuration file (explicitPath if
// given, otherwise the first one found), then the environment. Flags are
// applied afterwards by the caller with Config.Set.
func (m *Manager) Load(explicitPath string) error {
	path := explicitPath
	if path == "" {
		path = FindConfigFile()
	}
	if path != "" {
		if err := m.LoadFromFile(path); err != nil {
			return err
		}
	}
	m.LoadFromEnv()
	return nil
}

// Set applies one setting by name. Flag style names with dashes are
// accepted, so "listen-addr" sets listen_addr.
func (c *Config) Set(key, value string) error {
	return applyConfigValue(c, strings.ReplaceAll(key, "-", "_"), value)
}

// parseTOML reads the flat key = value subset used by config files.
func parseTOML(data string, cfg *Config) error {
	for lineNum, line := range strings.Split(data, "\n") {
		if idx := strings.Index(line, "#"); idx != -1 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("line %d: invalid syntax: %s", lineNum+1, line)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		if len(value) >= 2 && ((value[0] == '"' && value[len(value)-1] == '"') ||
			(value[0] == '\'' && value[len(value)-1] == '\'')) {
			value = value[1 : len(value)-1]
		}

		if err := applyConfigValue(cfg, key, value); err != nil {
			return fmt.Errorf("line %d: %w", lineNum+1, err)
		}
	}
	return nil
}

func parseBool(value string) bool {
	return strings.ToLower(value) == "true" || value == "1"
}

// applyConfigValue sets one field. Unknown keys are ignored.
func applyConfigValue(cfg *Config, key, value string) error {
	switch key {
	case "key_type":
		cfg.KeyType = strings.ToLower(value)
	case "ui":
		cfg.UI = strings.ToLower(value)
	case "history_file":
		cfg.HistoryFile = value
	case "listen_addr":
		cfg.ListenAddr = value
	case "buffer_size":
		size, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid buffer_size value: %s", value)
		}
		cfg.BufferSize = size
	case "advertise":
		cfg.Advertise = parseBool(value)
	case "instance_name":
		cfg.InstanceName = value
	case "log_level":
		cfg.LogLevel = value
	case "log_json":
		cfg.LogJSON = parseBool(value)
	case "log_file":
		cfg.LogFile = value
	}
	return nil
}

// ExpandedHistoryFile returns HistoryFile with environment variables and
// a leading ~ expanded.
func (c *Config) ExpandedHistoryFile() string {
	path := os.ExpandEnv(c.HistoryFile)
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	return path
}

// String returns a human-readable summary of the configuration.
func (c *Config) String() string {
	var sb strings.Builder
	sb.WriteString("ReplayDB Configuration:\n")
	fmt.Fprintf(&sb, "  Key Type:         %s\n", c.KeyType)
	fmt.Fprintf(&sb, "  UI:               %s\n", c.UI)
	fmt.Fprintf(&sb, "  Listen Address:   %s\n", c.ListenAddr)
	fmt.Fprintf(&sb, "  Buffer Size:      %d\n", c.BufferSize)
	fmt.Fprintf(&sb, "  Advertise:        %v\n", c.Advertise)
	if c.Advertise {
		fmt.Fprintf(&sb, "  Instance Name:    %s\n", c.InstanceName)
	}
	fmt.Fprintf(&sb, "  Log Level:        %s\n", c.LogLevel)
	fmt.Fprintf(&sb, "  Log JSON:         %v\n", c.LogJSON)
	if c.LogFile != "" {
		fmt.Fprintf(&sb, "  Log File:         %s\n", c.LogFile)
	}
	if c.ConfigFile != "" {
		fmt.Fprintf(&sb, "  Config File:      %s\n", c.ConfigFile)
	}
	return sb.String()
}

// ToTOML returns the configuration in config file format.
func (c *Config) ToTOML() string {
	var sb strings.Builder
	sb.WriteString("# ReplayDB Configuration File\n\n")
	sb.WriteString("# Primary key type: string or int\n")
	fmt.Fprintf(&sb, "key_type = \"%s\"\n\n", c.KeyType)
	sb.WriteString("# Local front end: graphic or command\n")
	fmt.Fprintf(&sb, "ui = \"%s\"\n", c.UI)
	fmt.Fprintf(&sb, "history_file = \"%s\"\n\n", c.HistoryFile)
	sb.WriteString("# UDP server\n")
	fmt.Fprintf(&sb, "listen_addr = \"%s\"\n", c.ListenAddr)
	fmt.Fprintf(&sb, "buffer_size = %d\n", c.BufferSize)
	fmt.Fprintf(&sb, "advertise = %v\n", c.Advertise)
	fmt.Fprintf(&sb, "instance_name = \"%s\"\n\n", c.InstanceName)
	sb.WriteString("# Logging\n")
	fmt.Fprintf(&sb, "log_level = \"%s\"\n", c.LogLevel)
	fmt.Fprintf(&sb, "log_json = %v\n", c.LogJSON)
	if c.LogFile != "" {
		fmt.Fprintf(&sb, "log_file = \"%s\"\n", c.LogFile)
	}
	return sb.String()
}

// SaveToFile writes the configuration to path, creating its directory.
func (c *Config) SaveToFile(path string) error {
	path = os.ExpandEnv(path)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(c.ToTOML()), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
