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

// Package ipc implements the peer-credentialed UNIX socket transport (spec
// §4.2): listener setup, SO_PEERCRED extraction, framed msgpack I/O, and a
// client Call helper.
package ipc

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// ucrednetNoProcess/ucrednetNobody are the sentinel values ucrednetGet
// returns when no credentials were available, mirroring the teacher's
// ucrednet constants.
const (
	ucrednetNoProcess = uint32(0)
	ucrednetNobody    = uint32((1 << 32) - 1)
)

var errNoID = errors.New("no peer credential")

// getUcred is indirected so tests can inject a fake kernel response without
// a real socketpair (mirrors the teacher's daemon/ucrednet_test.go idiom).
var getUcred = func(fd, level, opt int) (*unix.Ucred, error) {
	return unix.GetsockoptUcred(fd, level, opt)
}

// ucrednetAddr embeds the real net.Addr but renders pid/uid/gid into its
// String() so they survive the net.Conn interface boundary.
type ucrednetAddr struct {
	net.Addr
	pid, uid, gid uint32
}

func (a *ucrednetAddr) String() string {
	return fmt.Sprintf("pid=%d;uid=%d;gid=%d;socket=%s", a.pid, a.uid, a.gid, a.Addr.String())
}

// ucrednetConn wraps a net.Conn, replacing RemoteAddr with a ucrednetAddr.
type ucrednetConn struct {
	net.Conn
	remote *ucrednetAddr
}

func (c *ucrednetConn) RemoteAddr() net.Addr { return c.remote }

// ucrednetListener wraps a net.Listener, attaching SO_PEERCRED-derived
// credentials to every accepted connection's RemoteAddr.
type ucrednetListener struct {
	net.Listener
}

func (l *ucrednetListener) Accept() (net.Conn, error) {
	conn, err := l.Listener.Accept()
	if err != nil {
		return nil, err
	}

	addr := &ucrednetAddr{Addr: conn.RemoteAddr(), pid: ucrednetNoProcess, uid: ucrednetNobody}

	unixConn, ok := conn.(*net.UnixConn)
	if !ok {
		return &ucrednetConn{Conn: conn, remote: addr}, nil
	}

	rawConn, err := unixConn.SyscallConn()
	if err != nil {
		conn.Close()
		return nil, err
	}

	var (
		ucred    *unix.Ucred
		credErr  error
	)
	ctlErr := rawConn.Control(func(fd uintptr) {
		ucred, credErr = getUcred(int(fd), unix.SOL_SOCKET, unix.SO_PEERCRED)
	})
	if ctlErr != nil {
		conn.Close()
		return nil, ctlErr
	}
	if credErr != nil {
		conn.Close()
		return nil, credErr
	}

	addr.pid = uint32(ucred.Pid)
	addr.uid = ucred.Uid
	addr.gid = ucred.Gid

	return &ucrednetConn{Conn: conn, remote: addr}, nil
}

// ucrednetGet parses the "pid=;uid=;gid=;socket=" encoding back out of a
// RemoteAddr().String().
func ucrednetGet(remoteAddr string) (pid, uid, gid uint32, socket string, err error) {
	pid, uid, gid = ucrednetNoProcess, ucrednetNobody, ucrednetNobody

	if !strings.HasPrefix(remoteAddr, "pid=") {
		return pid, uid, gid, "", errNoID
	}

	fields := strings.SplitN(remoteAddr, ";", 4)
	for _, f := range fields {
		kv := strings.SplitN(f, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "pid":
			if kv[1] == "" {
				continue
			}
			n, perr := strconv.ParseUint(kv[1], 10, 32)
			if perr != nil {
				return pid, uid, gid, "", perr
			}
			pid = uint32(n)
		case "uid":
			if kv[1] == "" {
				return pid, uid, gid, "", errNoID
			}
			n, perr := strconv.ParseUint(kv[1], 10, 32)
			if perr != nil {
				return pid, uid, gid, "", perr
			}
			uid = uint32(n)
		case "gid":
			if kv[1] == "" {
				continue
			}
			n, perr := strconv.ParseUint(kv[1], 10, 32)
			if perr != nil {
				return pid, uid, gid, "", perr
			}
			gid = uint32(n)
		case "socket":
			socket = kv[1]
		}
	}

	if uid == ucrednetNobody {
		return pid, uid, gid, socket, errNoID
	}

	return pid, uid, gid, socket, nil
}

// resolveExe reads /proc/<pid>/exe, returning the literal "unknown" on any
// failure (spec §4.2: "failure to read yields the literal path unknown,
// which will fail any allow_callers check").
func resolveExe(pid uint32) string {
	path, err := os.Readlink(fmt.Sprintf("/proc/%d/exe", pid))
	if err != nil {
		return "unknown"
	}
	return path
}
