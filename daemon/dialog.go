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

package daemon

import (
	"fmt"
	"os/exec"
	"strings"
	"syscall"

	"github.com/Osso/authd/dirs"
	"github.com/Osso/authd/internal/protocol"
	"github.com/Osso/authd/internal/session"
)

// DialogOutcome is the result of running the confirmation dialog (spec
// §4.3.1: "Exit code 0 = Confirmed; any non-zero exit = Denied; spawn
// failure = Error").
type DialogOutcome int

const (
	Confirmed DialogOutcome = iota
	DialogDenied
	DialogError
)

// runDialog is indirected so tests can stub out process execution.
var runDialog = realRunDialog

// commandString renders target+args as the human-readable string the
// dialog shows the user (spec §4.3.1: "a single positional argument: the
// human-readable command string").
func commandString(target string, args []string) string {
	parts := append([]string{target}, args...)
	return strings.Join(parts, " ")
}

func realRunDialog(caller protocol.CallerInfo, target string, args []string, reqEnv map[string]string) (DialogOutcome, string) {
	home, username, err := passwdEnv(caller.UID)
	if err != nil {
		return DialogError, fmt.Sprintf("resolving caller identity: %v", err)
	}

	env := filterForwardable(reqEnv)
	env["HOME"] = home
	env["USER"] = username

	// If the request omitted XDG_SESSION_TYPE, fill it from logind rather
	// than leaving the dialog without one (spec §6). This only populates
	// an absent key; it never overrides a supplied value and never widens
	// the forwardable set itself.
	if _, ok := env["XDG_SESSION_TYPE"]; !ok {
		if sessionType, ok := session.Lookup(caller.UID); ok {
			env["XDG_SESSION_TYPE"] = sessionType
		}
	}

	envSlice := make([]string, 0, len(env))
	for k, v := range env {
		envSlice = append(envSlice, k+"="+v)
	}

	cmd := exec.Command(dirs.DialogHelper, commandString(target, args))
	cmd.Env = envSlice
	// The dialog must render with the caller's identity and session, never
	// as root (spec §4.3.1). Supplementary groups are cleared; the dialog
	// only needs to draw a prompt, not act as the caller in any other way.
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Credential: &syscall.Credential{
			Uid:    caller.UID,
			Gid:    caller.GID,
			Groups: []uint32{},
		},
	}

	err = cmd.Run()
	if err == nil {
		return Confirmed, ""
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return DialogDenied, fmt.Sprintf("dialog exited %d", exitErr.ExitCode())
	}
	return DialogError, fmt.Sprintf("launching dialog: %v", err)
}
