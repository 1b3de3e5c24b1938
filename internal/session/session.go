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

// Package session does best-effort environment enrichment via
// org.freedesktop.login1 (logind): when a client's request omits
// XDG_SESSION_TYPE but the calling uid has exactly one logind session, the
// daemon fills the gap from logind so the confirmation dialog still knows
// whether to expect a Wayland or X11 compositor. This never overrides a
// value the caller already supplied, and never widens the forwardable
// allow-list beyond what spec §4.3.1 already names.
package session

import (
	"github.com/godbus/dbus/v5"
)

const (
	login1Dest = "org.freedesktop.login1"
	login1Path = "/org/freedesktop/login1"
)

// busConn is the subset of *dbus.Conn this package needs, so tests can
// supply a fake without a real system bus connection.
type busConn interface {
	Object(dest string, path dbus.ObjectPath) dbus.BusObject
}

// Lookup queries logind for the session type of uid's sole session. Every
// session ListSessions reports for uid counts, whatever its state. It
// returns ("", false) on any error or ambiguity (no session, more than one
// session) rather than guessing.
func Lookup(uid uint32) (sessionType string, ok bool) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return "", false
	}
	return lookupVia(conn, uid)
}

func lookupVia(conn busConn, uid uint32) (string, bool) {
	manager := conn.Object(login1Dest, dbus.ObjectPath(login1Path))

	var sessions [][]interface{}
	call := manager.Call("org.freedesktop.login1.Manager.ListSessions", 0)
	if call.Err != nil {
		return "", false
	}
	if err := call.Store(&sessions); err != nil {
		return "", false
	}

	var match dbus.ObjectPath
	found := 0
	for _, entry := range sessions {
		// ListSessions returns (id, uid, user, seat, path) tuples.
		if len(entry) < 5 {
			continue
		}
		sessionUID, ok := entry[1].(uint32)
		if !ok || sessionUID != uid {
			continue
		}
		path, ok := entry[4].(dbus.ObjectPath)
		if !ok {
			continue
		}
		match = path
		found++
	}
	if found != 1 {
		return "", false
	}

	sessionObj := conn.Object(login1Dest, match)
	variant, err := sessionObj.GetProperty("org.freedesktop.login1.Session.Type")
	if err != nil {
		return "", false
	}
	sessionType, ok := variant.Value().(string)
	if !ok || sessionType == "" {
		return "", false
	}
	return sessionType, true
}
