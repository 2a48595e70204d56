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

package server

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"replaydb/internal/engine"
	"replaydb/internal/storage"
)

func startServer(t *testing.T, bufferSize int) (*Server, *engine.Engine) {
	t.Helper()
	eng := engine.New(storage.KeyTypeString)
	srv := New(eng, "127.0.0.1:0", bufferSize)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	select {
	case <-srv.Ready():
	case err := <-done:
		cancel()
		t.Fatalf("Server failed to start: %v", err)
	case <-time.After(2 * time.Second):
		cancel()
		t.Fatal("Server did not become ready")
	}

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("Serve returned error: %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Error("Server did not stop")
		}
	})
	return srv, eng
}

func roundTrip(t *testing.T, conn net.Conn, payload []byte) string {
	t.Helper()
	if _, err := conn.Write(payload); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 4096)
	n, err := conn.Read(buf)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	return string(buf[:n])
}

func dial(t *testing.T, srv *Server) net.Conn {
	t.Helper()
	conn, err := net.Dial("udp", srv.Addr().String())
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestServerCommands(t *testing.T) {
	srv, eng := startServer(t, DefaultBufferSize)
	conn := dial(t, srv)

	tests := []struct {
		payload string
		want    string
	}{
		{"CREATE users KEY name FIELDS name: STRING, age: INT\n", "Table created successfully"},
		{`  INSERT name = "a", age = 3 INTO users  `, "Data inserted successfully"},
		{"SELECT name, age FROM users", "age=3, name=a"},
		{"SELECT name FROM missing", "ERROR: "},
		{"DROP users", "ERROR: "},
	}
	for _, tt := range tests {
		got := roundTrip(t, conn, []byte(tt.payload))
		if !strings.HasPrefix(got, tt.want) {
			t.Errorf("For %q expected prefix %q, got %q", tt.payload, tt.want, got)
		}
	}

	if got := len(eng.History()); got != 3 {
		t.Errorf("Expected 3 history entries, got %d", got)
	}
}

func TestServerRejectsInvalidUTF8(t *testing.T) {
	srv, eng := startServer(t, DefaultBufferSize)
	conn := dial(t, srv)

	got := roundTrip(t, conn, []byte{'S', 'E', 0xff, 0xfe})
	if !strings.HasPrefix(got, "Bad input: ") {
		t.Errorf("Expected Bad input response, got %q", got)
	}
	if !strings.Contains(got, "byte 2") {
		t.Errorf("Expected offset of the bad byte, got %q", got)
	}
	if len(eng.History()) != 0 {
		t.Error("Invalid payload must not reach the engine")
	}
}

func TestServerTruncatesToBuffer(t *testing.T) {
	srv, _ := startServer(t, 16)
	conn := dial(t, srv)

	// Only "CREATE users KEY" fits, so FIELDS is missing.
	got := roundTrip(t, conn, []byte("CREATE users KEY name FIELDS name: STRING"))
	if !strings.Contains(got, "FIELDS") {
		t.Errorf("Expected missing FIELDS error, got %q", got)
	}
}

func TestInvalidOffset(t *testing.T) {
	tests := []struct {
		in   []byte
		want int
	}{
		{[]byte("abc"), 3},
		{[]byte{0xff}, 0},
		{[]byte("é\xff"), 2},
	}
	for _, tt := range tests {
		if got := invalidOffset(tt.in); got != tt.want {
			t.Errorf("invalidOffset(%q): expected %d, got %d", tt.in, tt.want, got)
		}
	}
}

func TestNewDefaults(t *testing.T) {
	srv := New(engine.New(storage.KeyTypeInt), "127.0.0.1:0", 0)
	if srv.bufferSize != DefaultBufferSize {
		t.Errorf("Expected default buffer size, got %d", srv.bufferSize)
	}
	if srv.Addr() != nil {
		t.Error("Expected nil address before Serve")
	}
	if err := srv.Stop(); err != nil {
		t.Errorf("Stop before Serve should be a no-op: %v", err)
	}
}
