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
Package server implements the ReplayDB UDP responder.

Protocol:
=========

Each datagram is one command; each response is one datagram.

  Request:  <COMMAND TEXT>
  Response: <RESULT> or <ERROR MESSAGE>

Payloads are read into a fixed buffer (512 bytes by default); longer
datagrams are truncated by the socket. Payloads that are not valid UTF-8
are answered with "Bad input: ..." and never reach the engine.

Datagrams are processed strictly one at a time. The server stops when its
context is cancelled.
*/
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"unicode/utf8"

	dberrors "replaydb/internal/errors"
	"replaydb/internal/logging"
)

// Package-level logger for the server component.
var log = logging.NewLogger("server")

// DefaultBufferSize is the receive buffer size in bytes.
const DefaultBufferSize = 512

// Handler executes one command.
type Handler interface {
	Submit(text string) (string, error)
}

// Server answers command datagrams on a UDP socket.
type Server struct {
	addr       string
	bufferSize int
	handler    Handler

	mu    sync.Mutex
	conn  net.PacketConn
	ready chan struct{}
}

// New creates a server for addr. A non-positive bufferSize uses
// DefaultBufferSize.
func New(handler Handler, addr string, bufferSize int) *Server {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Server{
		addr:       addr,
		bufferSize: bufferSize,
		handler:    handler,
		ready:      make(chan struct{}),
	}
}

// Ready is closed once the socket is bound.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the bound address, or nil before Ready.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	return s.conn.LocalAddr()
}

// Serve binds the socket and answers datagrams until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	var lc net.ListenConfig
	conn, err := lc.ListenPacket(ctx, "udp", s.addr)
	if err != nil {
		log.Error("Failed to bind UDP socket", "address", s.addr, "error", err)
		return err
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
	close(s.ready)

	log.Info("UDP server listening", "address", conn.LocalAddr().String(), "buffer_size", s.bufferSize)

	stop := context.AfterFunc(ctx, func() {
		conn.Close()
	})
	defer stop()

	buf := make([]byte, s.bufferSize)
	for {
		n, src, err := conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				log.Info("UDP server stopped")
				return nil
			}
			log.Warn("Read error", "error", err)
			continue
		}
		if n == len(buf) {
			log.Warn("Datagram filled the receive buffer and may be truncated",
				"client", src.String(), "buffer_size", s.bufferSize)
		}

		resp := s.handle(buf[:n], src.String())
		if _, err := conn.WriteTo(resp, src); err != nil {
			log.Warn("Failed to send response", "client", src.String(), "error", err)
		}
	}
}

// Stop closes the socket, ending Serve.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// handle turns one request payload into one response payload.
func (s *Server) handle(payload []byte, client string) []byte {
	if !utf8.Valid(payload) {
		err := fmt.Errorf("invalid utf-8 sequence at byte %d", invalidOffset(payload))
		logging.NewRequestContext(client, "").LogError(log, err)
		return []byte("Bad input: " + err.Error() + "\n")
	}

	text := strings.TrimSpace(string(payload))
	req := logging.NewRequestContext(client, verb(text))

	result, err := s.handler.Submit(text)
	if err != nil {
		req.LogError(log, err, "code", int(dberrors.GetCode(err)))
		return []byte(dberrors.FormatError(err))
	}
	req.LogComplete(log, "bytes", len(result))
	return []byte(result)
}

// invalidOffset returns the index of the first byte that does not start a
// valid UTF-8 sequence.
func invalidOffset(p []byte) int {
	for i := 0; i < len(p); {
		r, size := utf8.DecodeRune(p[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return len(p)
}

func verb(text string) string {
	if name, _, _ := strings.Cut(text, " "); name != "" {
		return name
	}
	return text
}
