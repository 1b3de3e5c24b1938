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

// Package daemon implements authd's accept loop and per-connection request
// lifecycle (spec §4.3): peer-credential extraction, policy dispatch,
// confirmation-dialog delegation, and target spawn.
package daemon

import (
	"net"
	"path/filepath"

	"gopkg.in/tomb.v2"

	"github.com/Osso/authd/internal/ipc"
	"github.com/Osso/authd/internal/logger"
	"github.com/Osso/authd/internal/policy"
	"github.com/Osso/authd/internal/protocol"
)

// HelperName is the setuid helper's basename; a confirm_only request whose
// caller's exe basename matches it is trusted to have already performed
// its own policy check (spec §4.3 step 3).
const HelperName = "authsudo"

// Daemon owns the accept loop. Every accepted connection becomes an
// independent goroutine; the only state shared between them is the
// read-only policy.Engine (spec §4.3: "Model ... share only the immutable
// PolicyStore").
type Daemon struct {
	listener net.Listener
	engine   *policy.Engine
	tomb     tomb.Tomb
}

// New wraps listener and engine in a ready-to-run Daemon.
func New(listener net.Listener, engine *policy.Engine) *Daemon {
	return &Daemon{listener: listener, engine: engine}
}

// Start begins accepting connections in the background.
func (d *Daemon) Start() {
	d.tomb.Go(d.acceptLoop)
}

// Stop closes the listener and waits until the accept loop and every
// in-flight connection goroutine have returned. While the daemon runs, a
// misbehaving peer can at worst occupy its own goroutine; the accept loop
// itself stays responsive (spec §5).
func (d *Daemon) Stop() error {
	d.tomb.Kill(nil)
	d.listener.Close()
	return d.tomb.Wait()
}

func (d *Daemon) acceptLoop() error {
	for {
		conn, err := d.listener.Accept()
		if err != nil {
			select {
			case <-d.tomb.Dying():
				return nil
			default:
			}
			logger.Noticef("daemon: accept error: %v", err)
			continue
		}

		d.tomb.Go(func() error {
			d.handleConn(conn)
			return nil
		})
	}
}

func (d *Daemon) handleConn(conn net.Conn) {
	defer conn.Close()

	caller, err := ipc.CallerFromConn(conn)
	if err != nil {
		logger.Noticef("daemon: peer credentials: %v", err)
		return
	}
	logger.Debugf("daemon: connection from uid=%d pid=%d exe=%s", caller.UID, caller.PID, caller.Exe)

	data, err := ipc.ReadFrame(conn)
	if err != nil {
		logger.Noticef("daemon: read request: %v", err)
		return
	}

	req, err := protocol.DecodeRequest(data)
	if err != nil {
		d.respond(conn, protocol.ErrorResponse("invalid request"))
		return
	}

	resp := d.process(caller, req)
	d.respond(conn, resp)
}

func (d *Daemon) respond(conn net.Conn, resp protocol.AuthResponse) {
	data, err := protocol.EncodeResponse(resp)
	if err != nil {
		logger.Errorf("daemon: encode response: %v", err)
		return
	}
	if err := ipc.WriteFrame(conn, data); err != nil {
		logger.Noticef("daemon: write response: %v", err)
	}
}

// process implements the per-request state machine (spec §4.3 steps 3-7).
func (d *Daemon) process(caller protocol.CallerInfo, req protocol.AuthRequest) protocol.AuthResponse {
	// Confirmation-only shortcut: a caller that is itself the setuid
	// helper has already performed its own policy check (it has the
	// invoker's real uid); it asks the daemon only to render the
	// session-locked prompt (spec §4.3 step 3).
	if req.ConfirmOnly && filepath.Base(caller.Exe) == HelperName {
		outcome, msg := runDialog(caller, req.Target, req.Args, req.Env)
		switch outcome {
		case DialogDenied:
			return protocol.Denied("user cancelled")
		case DialogError:
			return protocol.ErrorResponse(msg)
		}
		return protocol.Success(0)
	}

	decision := d.engine.Check(req.Target, caller.UID, []string{caller.Exe})
	switch decision.Kind {
	case policy.Unknown:
		return protocol.UnknownTarget()
	case policy.Denied:
		return protocol.Denied(decision.Reason)
	case policy.RequireAuth:
		return protocol.ErrorResponse("Password auth requires terminal. Use: authsudo")
	case policy.AllowWithConfirm:
		outcome, msg := runDialog(caller, req.Target, req.Args, req.Env)
		switch outcome {
		case DialogDenied:
			return protocol.Denied("user cancelled")
		case DialogError:
			return protocol.ErrorResponse(msg)
		}
		// Confirmed falls through to the spawn/confirm_only handling below.
	case policy.AllowImmediate:
		// proceed
	}

	if req.ConfirmOnly {
		return protocol.Success(0)
	}

	pid, err := spawnTarget(req.Target, req.Args, req.Env)
	if err != nil {
		return protocol.ErrorResponse(err.Error())
	}
	return protocol.Success(uint32(pid))
}
