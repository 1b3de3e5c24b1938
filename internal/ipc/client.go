// -*- Mode: Go; indent-tabs-mode: t -*-

/*
 * Copyright (C) 2026 Osso
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License version 3 as
 * published by the Free Software Foundation.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 *
 */

package ipc

import (
	"fmt"
	"net"

	"github.com/Osso/authd/internal/protocol"
)

// Phase categorizes which step of Call failed, letting the caller
// distinguish "daemon not running" from other faults (spec §4.2).
type Phase string

const (
	PhaseConnect     Phase = "connect"
	PhaseSerialize   Phase = "serialize"
	PhaseWrite       Phase = "write"
	PhaseRead        Phase = "read"
	PhaseDeserialize Phase = "deserialize"
)

// CallError wraps an error with the Phase of Call in which it occurred.
type CallError struct {
	Phase Phase
	Err   error
}

func (e *CallError) Error() string { return fmt.Sprintf("ipc: %s: %v", e.Phase, e.Err) }
func (e *CallError) Unwrap() error { return e.Err }

// Call connects to the socket at path, sends req, and returns the decoded
// response (spec §4.2: "a single call(path, request) -> response that
// connects, serializes, writes, reads until EOF or buffer full,
// deserializes, and returns").
func Call(path string, req protocol.AuthRequest) (protocol.AuthResponse, error) {
	conn, err := net.Dial("unix", path)
	if err != nil {
		return protocol.AuthResponse{}, &CallError{PhaseConnect, err}
	}
	defer conn.Close()

	data, err := protocol.EncodeRequest(req)
	if err != nil {
		return protocol.AuthResponse{}, &CallError{PhaseSerialize, err}
	}

	if err := WriteFrame(conn, data); err != nil {
		return protocol.AuthResponse{}, &CallError{PhaseWrite, err}
	}
	if uc, ok := conn.(*net.UnixConn); ok {
		// Half-close so the daemon's read-to-EOF sees the request as complete
		// without us tearing down the whole connection before reading the
		// response (spec §4.2 framing).
		if err := uc.CloseWrite(); err != nil {
			return protocol.AuthResponse{}, &CallError{PhaseWrite, err}
		}
	}

	respData, err := ReadFrame(conn)
	if err != nil {
		return protocol.AuthResponse{}, &CallError{PhaseRead, err}
	}

	resp, err := protocol.DecodeResponse(respData)
	if err != nil {
		return protocol.AuthResponse{}, &CallError{PhaseDeserialize, err}
	}
	return resp, nil
}
