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

package main

import (
	"github.com/Osso/authd/internal/pamauth"
	"github.com/Osso/authd/internal/policy"
	"github.com/Osso/authd/internal/privdrop"
	"github.com/Osso/authd/internal/protocol"
)

// The Mock* helpers below follow the teacher's export_test.go convention
// (cmd/snap-preseed's MockOsGetuid): each swaps a package-level
// indirection and returns a restore func.

func MockSyscallExec(f func(argv0 string, argv, envv []string) error) (restore func()) {
	orig := syscallExec
	syscallExec = f
	return func() { syscallExec = orig }
}

func MockPrivdropDrop(f func(privdrop.TargetUser) error) (restore func()) {
	orig := privdropDrop
	privdropDrop = f
	return func() { privdropDrop = orig }
}

func MockSeccompLockdown(f func()) (restore func()) {
	orig := seccompLockdown
	seccompLockdown = f
	return func() { seccompLockdown = orig }
}

func MockIPCCall(f func(path string, req protocol.AuthRequest) (protocol.AuthResponse, error)) (restore func()) {
	orig := ipcCall
	ipcCall = f
	return func() { ipcCall = orig }
}

func MockNewAuthenticator(f func() pamauth.Authenticator) (restore func()) {
	orig := newAuthenticator
	newAuthenticator = f
	return func() { newAuthenticator = orig }
}

func MockLoadPolicyEngine(f func() *policy.Engine) (restore func()) {
	orig := loadPolicyEngine
	loadPolicyEngine = f
	return func() { loadPolicyEngine = orig }
}

func MockReadPasswordStdin(f func(prompt string) (string, error)) (restore func()) {
	orig := readPasswordStdin
	readPasswordStdin = f
	return func() { readPasswordStdin = orig }
}

var (
	Run              = run
	ParseArgs        = parseArgs
	ResolveTargetPath = resolveTargetPath
	HasHarmlessArg   = hasHarmlessArg
)
