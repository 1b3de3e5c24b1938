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

// Package dirs centralizes the well-known filesystem locations authd's
// components agree on, mirroring the teacher's "single source of truth for
// paths, rewritable in tests via SetRootDir" convention.
package dirs

import "path/filepath"

var (
	// RootDir lets tests point every path below at a scratch directory
	// instead of the real filesystem root.
	RootDir = "/"

	// SocketPath is the peer-credentialed UNIX socket the daemon listens
	// on and clients/the setuid helper connect to (spec §6).
	SocketPath = "/run/authd.sock"

	// PolicyDir holds the *.toml rule files the policy engine loads
	// (spec §4.1, §6).
	PolicyDir = "/etc/authd/policies.d"

	// DialogHelper is the program path the daemon execs to render the
	// session-locked confirmation prompt (spec §4.3.1). It is a separate
	// binary, out of this repository's scope (spec §1).
	DialogHelper = "/usr/libexec/authd-dialog"
)

// SetRootDir rewrites every path rooted at "/" to be rooted at dir instead,
// for test isolation. Passing "" or "/" restores the real filesystem paths.
func SetRootDir(dir string) {
	if dir == "" {
		dir = "/"
	}
	RootDir = dir
	SocketPath = filepath.Join(dir, "run/authd.sock")
	PolicyDir = filepath.Join(dir, "etc/authd/policies.d")
	DialogHelper = filepath.Join(dir, "usr/libexec/authd-dialog")
}

// ForwardableEnv is the fixed allow-list of environment variables that may
// travel from an unprivileged caller to the confirmation dialog and to the
// spawned target (spec §3 AuthRequest, §4.3.1, §6).
var ForwardableEnv = []string{
	"WAYLAND_DISPLAY",
	"XDG_RUNTIME_DIR",
	"XDG_SESSION_TYPE",
	"DBUS_SESSION_BUS_ADDRESS",
}

// IsForwardable reports whether key is in the forwardable allow-list.
func IsForwardable(key string) bool {
	for _, k := range ForwardableEnv {
		if k == key {
			return true
		}
	}
	return false
}
