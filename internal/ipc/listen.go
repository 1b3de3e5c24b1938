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
	"errors"
	"fmt"
	"net"
	"os"

	"github.com/Osso/authd/internal/protocol"
)

// Listen binds the daemon's well-known socket (spec §4.2): removes any
// stale socket file, binds, sets mode 0o666 (trust comes from peer
// credentials, not file mode), and wraps the listener so every Accept
// carries SO_PEERCRED-derived credentials in RemoteAddr.
func Listen(path string) (net.Listener, error) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("ipc: removing stale socket %s: %w", path, err)
	}

	l, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("ipc: listen on %s: %w", path, err)
	}

	if err := os.Chmod(path, 0o666); err != nil {
		l.Close()
		return nil, fmt.Errorf("ipc: chmod %s: %w", path, err)
	}

	return &ucrednetListener{l}, nil
}

// CallerFromConn extracts the authoritative CallerInfo from a connection
// returned by a Listen()-wrapped listener's Accept (spec §4.2, §4.3 step 1).
func CallerFromConn(conn net.Conn) (protocol.CallerInfo, error) {
	pid, uid, gid, _, err := ucrednetGet(conn.RemoteAddr().String())
	if err != nil {
		return protocol.CallerInfo{}, err
	}
	return protocol.CallerInfo{
		UID: uid,
		GID: gid,
		PID: pid,
		Exe: resolveExe(pid),
	}, nil
}
