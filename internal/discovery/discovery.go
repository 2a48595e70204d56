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
Package discovery provides mDNS/DNS-SD advertisement and lookup of ReplayDB
UDP responders on the local network.

SERVICE TYPE:
=============
ReplayDB advertises itself as: _replaydb._udp.local.

Each responder publishes:
- Instance name: <instance>._replaydb._udp.local.
- Port: UDP listen port (default 7878)
- TXT records: instance, key_type, version

USAGE:
======
	adv := discovery.NewAdvertiser(discovery.Config{
		Instance: "lab",
		Addr:     "0.0.0.0:7878",
		KeyType:  "string",
		Version:  banner.Version,
	})
	if err := adv.Start(); err != nil { ... }
	defer adv.Stop()

	instances, err := discovery.Discover(ctx, 3*time.Second)
*/
package discovery

import (
	"context"
	"fmt"
	"net"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/mdns"

	"replaydb/internal/logging"
)

const (
	// ServiceType is the mDNS service type for ReplayDB.
	ServiceType = "_replaydb._udp"

	// DefaultTimeout is the default lookup duration.
	DefaultTimeout = 3 * time.Second
)

var log = logging.NewLogger("discovery")

// Instance is a responder found on the network.
type Instance struct {
	Name         string    `json:"name"`
	Addr         string    `json:"addr"`
	KeyType      string    `json:"key_type"`
	Version      string    `json:"version"`
	DiscoveredAt time.Time `json:"discovered_at"`
}

// Config describes the responder being advertised.
type Config struct {
	Instance string
	Addr     string // host:port the UDP server is bound to
	KeyType  string
	Version  string
}

// Advertiser publishes one responder over mDNS.
type Advertiser struct {
	config  Config
	mu      sync.Mutex
	server  *mdns.Server
	running bool
}

// NewAdvertiser creates an advertiser. Nothing is sent until Start.
func NewAdvertiser(config Config) *Advertiser {
	return &Advertiser{config: config}
}

// Start begins answering mDNS queries for this responder.
func (a *Advertiser) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.running {
		return nil
	}

	service, err := a.service()
	if err != nil {
		return err
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return fmt.Errorf("failed to create mDNS server: %w", err)
	}
	a.server = server
	a.running = true

	log.Info("mDNS advertisement started",
		"instance", a.config.Instance, "addr", a.config.Addr, "service_type", ServiceType)
	return nil
}

// service builds the mDNS zone for the configured responder.
func (a *Advertiser) service() (*mdns.MDNSService, error) {
	host, portStr, err := net.SplitHostPort(a.config.Addr)
	if err != nil {
		return nil, fmt.Errorf("invalid listen address: %w", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 {
		return nil, fmt.Errorf("invalid listen port %q", portStr)
	}

	service, err := mdns.NewMDNSService(
		a.config.Instance,
		ServiceType,
		"", // .local
		"", // own host name
		port,
		advertisedIPs(host),
		txtRecords(a.config),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}
	return service, nil
}

// Stop withdraws the advertisement.
func (a *Advertiser) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.running {
		return nil
	}
	a.running = false

	var err error
	if a.server != nil {
		err = a.server.Shutdown()
		a.server = nil
	}
	log.Info("mDNS advertisement stopped", "instance", a.config.Instance)
	return err
}

// IsRunning reports whether the advertisement is active.
func (a *Advertiser) IsRunning() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}

// Run advertises until ctx is cancelled.
func (a *Advertiser) Run(ctx context.Context) error {
	if err := a.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	return a.Stop()
}

// Discover queries the local network for responders. The result is sorted
// by instance name with duplicates removed.
func Discover(ctx context.Context, timeout time.Duration) ([]Instance, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	entriesCh := make(chan *mdns.ServiceEntry, 16)
	found := make(map[string]Instance)
	collected := make(chan struct{})

	go func() {
		defer close(collected)
		for entry := range entriesCh {
			if inst, ok := parseServiceEntry(entry); ok {
				found[inst.Name+"@"+inst.Addr] = inst
			}
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- mdns.Query(&mdns.QueryParam{
			Service:             ServiceType,
			Domain:              "local",
			Timeout:             timeout,
			Entries:             entriesCh,
			WantUnicastResponse: true,
		})
		close(entriesCh)
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case err := <-errCh:
		<-collected
		if err != nil {
			return nil, fmt.Errorf("mDNS query failed: %w", err)
		}
	}

	instances := make([]Instance, 0, len(found))
	for _, inst := range found {
		instances = append(instances, inst)
	}
	slices.SortFunc(instances, func(a, b Instance) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.Addr, b.Addr)
	})
	return instances, nil
}

func txtRecords(c Config) []string {
	return []string{
		"instance=" + c.Instance,
		"key_type=" + c.KeyType,
		"version=" + c.Version,
	}
}

// parseServiceEntry converts an mDNS entry. Entries without an address
// are dropped.
func parseServiceEntry(entry *mdns.ServiceEntry) (Instance, bool) {
	if entry == nil {
		return Instance{}, false
	}

	var ip string
	if entry.AddrV4 != nil {
		ip = entry.AddrV4.String()
	} else if entry.AddrV6 != nil {
		ip = entry.AddrV6.String()
	}
	if ip == "" {
		return Instance{}, false
	}

	inst := Instance{
		Addr:         net.JoinHostPort(ip, strconv.Itoa(entry.Port)),
		DiscoveredAt: time.Now(),
	}
	for _, txt := range entry.InfoFields {
		k, v, ok := strings.Cut(txt, "=")
		if !ok {
			continue
		}
		switch k {
		case "instance":
			inst.Name = v
		case "key_type":
			inst.KeyType = v
		case "version":
			inst.Version = v
		}
	}

	// Instance name from the service name as fallback
	if inst.Name == "" {
		inst.Name = strings.TrimSuffix(entry.Name, "."+ServiceType+".local.")
	}
	return inst, true
}

// advertisedIPs returns the bound host, or every non-loopback IPv4
// address when bound to all interfaces.
func advertisedIPs(host string) []net.IP {
	if host != "" && host != "0.0.0.0" && host != "::" {
		if ip := net.ParseIP(host); ip != nil {
			return []net.IP{ip}
		}
	}

	var ips []net.IP
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return ips
	}
	for _, addr := range addrs {
		if ipnet, ok := addr.(*net.IPNet); ok {
			if ipnet.IP.IsLoopback() {
				continue
			}
			if ipnet.IP.To4() != nil {
				ips = append(ips, ipnet.IP)
			}
		}
	}
	return ips
}
