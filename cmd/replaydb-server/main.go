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
Package main is the entry point for the ReplayDB UDP responder.

Startup Flow:
=============

  1. Load configuration (defaults, file, environment, flags)
  2. Print the banner with the effective configuration
  3. Create the engine for the configured key type
  4. Serve datagrams, and advertise over mDNS when enabled
  5. Stop on SIGINT or SIGTERM

Usage Examples:
===============

  Serve on the default address:
    ./replaydb-server

  Serve integer-keyed tables on all interfaces and advertise:
    ./replaydb-server -key-type int -listen-addr 0.0.0.0:7878 -advertise

  Send a command:
    echo -n 'CREATE t KEY id FIELDS id: STRING' | nc -u -w1 127.0.0.1 7878
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"golang.org/x/sync/errgroup"

	"replaydb/internal/banner"
	"replaydb/internal/config"
	"replaydb/internal/discovery"
	"replaydb/internal/engine"
	"replaydb/internal/logging"
	"replaydb/internal/server"
	"replaydb/internal/storage"
)

var configFlags = map[string]bool{
	"key-type":      true,
	"listen-addr":   true,
	"buffer-size":   true,
	"advertise":     true,
	"instance-name": true,
	"log-level":     true,
	"log-json":      true,
	"log-file":      true,
}

func printUsage() {
	banner.Print()
	fmt.Println("Usage: replaydb-server [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -listen-addr <host:port>  UDP address to bind (default: 127.0.0.1:7878)")
	fmt.Println("  -buffer-size <bytes>      Receive buffer size (default: 512)")
	fmt.Println("  -key-type <string|int>    Primary key type for every table (default: string)")
	fmt.Println("  -advertise                Advertise over mDNS")
	fmt.Println("  -instance-name <name>     mDNS instance name (default: hostname)")
	fmt.Println("  -config <path>            Path to configuration file")
	fmt.Println("  -log-level <level>        Log level: debug, info, warn, error")
	fmt.Println("  -log-json                 Enable JSON log output")
	fmt.Println("  -log-file <path>          Write logs to a file")
	fmt.Println("  -version                  Show version information")
	fmt.Println("  -help                     Show this help message")
}

func main() {
	defaults := config.DefaultConfig()

	flag.String("key-type", defaults.KeyType, "Primary key type: string or int")
	flag.String("listen-addr", defaults.ListenAddr, "UDP address to bind")
	flag.String("buffer-size", strconv.Itoa(defaults.BufferSize), "Receive buffer size in bytes")
	flag.Bool("advertise", defaults.Advertise, "Advertise over mDNS")
	flag.String("instance-name", defaults.InstanceName, "mDNS instance name")
	flag.String("log-level", defaults.LogLevel, "Log level: debug, info, warn, error")
	flag.Bool("log-json", defaults.LogJSON, "Enable JSON log output")
	flag.String("log-file", "", "Write logs to this file")
	configFile := flag.String("config", "", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Show version information")
	showHelp := flag.Bool("help", false, "Show help message")

	flag.Usage = printUsage
	flag.Parse()

	if *showVersion {
		fmt.Printf("replaydb-server version %s\n", banner.Version)
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

	// Suppress mDNS library logging (it logs IPv6 errors that are not critical)
	stdlog.SetOutput(io.Discard)

	level, _ := logging.ParseLevel(cfg.LogLevel)
	logCfg := logging.Config{Level: level, Output: os.Stderr, JSONMode: cfg.LogJSON}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(os.ExpandEnv(cfg.LogFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logCfg.Output = f
	}
	logging.Configure(logCfg)

	banner.PrintServerWithConfig(cfg)

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	log := logging.NewLogger("main")

	keyType, _ := storage.ParseKeyType(cfg.KeyType)
	eng := engine.New(keyType)
	srv := server.New(eng, cfg.ListenAddr, cfg.BufferSize)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Serve(gctx)
	})

	if cfg.Advertise {
		g.Go(func() error {
			select {
			case <-srv.Ready():
			case <-gctx.Done():
				return nil
			}
			adv := discovery.NewAdvertiser(discovery.Config{
				Instance: cfg.InstanceName,
				Addr:     srv.Addr().String(),
				KeyType:  cfg.KeyType,
				Version:  banner.Version,
			})
			// The responder keeps serving without an advertisement.
			if err := adv.Run(gctx); err != nil {
				log.Warn("mDNS advertisement failed", "error", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down ReplayDB server")
		return nil
	})

	log.Info("Starting ReplayDB server",
		"listen_addr", cfg.ListenAddr,
		"key_type", cfg.KeyType,
		"advertise", cfg.Advertise,
	)

	err := g.Wait()
	stats := eng.Stats()
	log.Info("ReplayDB server stopped",
		"tables", stats.Tables, "records", stats.Records, "history_len", stats.HistoryLen)
	return err
}
