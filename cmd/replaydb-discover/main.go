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
replaydb-discover - ReplayDB Responder Discovery Tool

This tool finds ReplayDB UDP responders on the local network using mDNS
(Bonjour/Avahi). Responders are found only when started with -advertise.

Usage:

	replaydb-discover                    # Discover responders (3 second timeout)
	replaydb-discover -timeout 10        # Custom timeout in seconds
	replaydb-discover -json              # Output as JSON
	replaydb-discover -quiet             # Only output addresses (for scripting)
*/
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"os/signal"
	"strings"
	"time"

	"replaydb/internal/banner"
	"replaydb/internal/discovery"
)

func main() {
	timeout := flag.Int("timeout", int(discovery.DefaultTimeout/time.Second), "Discovery timeout in seconds")
	jsonOutput := flag.Bool("json", false, "Output as JSON")
	quiet := flag.Bool("quiet", false, "Only output addresses (for scripting)")
	help := flag.Bool("help", false, "Show help")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(quiet, "q", false, "Only output addresses (for scripting)")
	flag.BoolVar(help, "h", false, "Show help")
	flag.BoolVar(showVersion, "v", false, "Show version information")

	flag.Parse()

	if *help {
		printUsage()
		os.Exit(0)
	}
	if *showVersion {
		fmt.Printf("replaydb-discover version %s\n", banner.Version)
		fmt.Println(banner.Copyright)
		os.Exit(0)
	}

	// Suppress mDNS library logging (it logs IPv6 errors that are not critical)
	stdlog.SetOutput(io.Discard)

	human := !*quiet && !*jsonOutput
	if human {
		banner.Print()
		fmt.Printf("  %sScanning for ReplayDB responders (timeout: %ds)...%s\n\n", banner.AnsiDim, *timeout, banner.AnsiReset)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	instances, err := discovery.Discover(ctx, time.Duration(*timeout)*time.Second)
	if err != nil {
		if !*quiet {
			fmt.Fprintf(os.Stderr, "%sDiscovery failed: %v%s\n", banner.AnsiRed, err, banner.AnsiReset)
		}
		os.Exit(1)
	}

	switch {
	case *jsonOutput:
		outputJSON(os.Stdout, instances)
	case *quiet:
		outputQuiet(os.Stdout, instances)
	default:
		outputHuman(os.Stdout, instances)
	}
}

func printUsage() {
	banner.Print()
	fmt.Printf("  %sFinds ReplayDB UDP responders on the local network using mDNS.%s\n\n", banner.AnsiDim, banner.AnsiReset)

	fmt.Printf("  %s%sUSAGE:%s\n", banner.AnsiBold, banner.AnsiCyan, banner.AnsiReset)
	fmt.Println("    replaydb-discover [options]")
	fmt.Println()

	fmt.Printf("  %s%sOPTIONS:%s\n", banner.AnsiBold, banner.AnsiCyan, banner.AnsiReset)
	fmt.Printf("    %s-timeout%s <n>     Discovery timeout in seconds (default: 3)\n", banner.AnsiGreen, banner.AnsiReset)
	fmt.Printf("    %s-json%s            Output results as JSON\n", banner.AnsiGreen, banner.AnsiReset)
	fmt.Printf("    %s-quiet%s, %s-q%s       Only output addresses (for scripting)\n", banner.AnsiGreen, banner.AnsiReset, banner.AnsiGreen, banner.AnsiReset)
	fmt.Printf("    %s-version%s, %s-v%s     Show version information\n", banner.AnsiGreen, banner.AnsiReset, banner.AnsiGreen, banner.AnsiReset)
	fmt.Printf("    %s-help%s, %s-h%s        Show this help message\n", banner.AnsiGreen, banner.AnsiReset, banner.AnsiGreen, banner.AnsiReset)
	fmt.Println()

	fmt.Printf("  %s%sNETWORK REQUIREMENTS:%s\n", banner.AnsiBold, banner.AnsiCyan, banner.AnsiReset)
	fmt.Printf("    %s•%s mDNS uses UDP port 5353 (multicast)\n", banner.AnsiYellow, banner.AnsiReset)
	fmt.Printf("    %s•%s Responders must be on the same network segment\n", banner.AnsiYellow, banner.AnsiReset)
	fmt.Println()
}

func outputJSON(w io.Writer, instances []discovery.Instance) {
	data, _ := json.MarshalIndent(instances, "", "  ")
	fmt.Fprintln(w, string(data))
}

func outputQuiet(w io.Writer, instances []discovery.Instance) {
	addrs := make([]string, len(instances))
	for i, inst := range instances {
		addrs[i] = inst.Addr
	}
	fmt.Fprintln(w, strings.Join(addrs, ","))
}

func outputHuman(w io.Writer, instances []discovery.Instance) {
	if len(instances) == 0 {
		fmt.Fprintf(w, "  %sNo ReplayDB responders found on the network.%s\n\n", banner.AnsiYellow, banner.AnsiReset)
		fmt.Fprintf(w, "    %sCommon issues:%s\n", banner.AnsiDim, banner.AnsiReset)
		fmt.Fprintf(w, "      %s•%s Responders are not running with -advertise\n", banner.AnsiYellow, banner.AnsiReset)
		fmt.Fprintf(w, "      %s•%s mDNS/Bonjour is blocked by firewall (UDP port 5353)\n", banner.AnsiYellow, banner.AnsiReset)
		fmt.Fprintln(w)
		return
	}

	fmt.Fprintf(w, "  %sFound %d ReplayDB responder(s)%s\n\n", banner.AnsiGreen, len(instances), banner.AnsiReset)
	for i, inst := range instances {
		fmt.Fprintf(w, "  %s[%d]%s %s%s%s\n",
			banner.AnsiDim, i+1, banner.AnsiReset,
			banner.AnsiBold+banner.AnsiCyan, inst.Name, banner.AnsiReset)
		fmt.Fprintf(w, "      %sAddress:%s  %s%s%s\n",
			banner.AnsiDim, banner.AnsiReset, banner.AnsiGreen, inst.Addr, banner.AnsiReset)
		if inst.KeyType != "" {
			fmt.Fprintf(w, "      %sKey Type:%s %s\n", banner.AnsiDim, banner.AnsiReset, inst.KeyType)
		}
		if inst.Version != "" {
			fmt.Fprintf(w, "      %sVersion:%s  %s\n", banner.AnsiDim, banner.AnsiReset, inst.Version)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "  %sTip: Use -json for machine-readable output%s\n\n", banner.AnsiDim, banner.AnsiReset)
}
