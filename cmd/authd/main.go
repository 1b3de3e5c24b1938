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

// Command authd is the root daemon: it loads the policy store, listens on
// the peer-credentialed UNIX socket, and serves the request lifecycle in
// daemon.Daemon (spec §4.2, §4.3, §6).
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/coreos/go-systemd/v22/journal"

	authdaemon "github.com/Osso/authd/daemon"
	"github.com/Osso/authd/dirs"
	"github.com/Osso/authd/internal/ipc"
	"github.com/Osso/authd/internal/logger"
	"github.com/Osso/authd/internal/policy"
)

func main() {
	if err := run(); err != nil {
		logger.Errorf("authd: %v", err)
		os.Exit(1)
	}
}

func run() error {
	if err := setupLogging(); err != nil {
		return err
	}

	store, err := policy.LoadDir(dirs.PolicyDir)
	if err != nil {
		// A global loading failure must not prevent startup (spec §7):
		// an empty store yields Unknown for every target, a fail-closed
		// default, not a crash.
		logger.Noticef("authd: policy directory %s unreadable: %v", dirs.PolicyDir, err)
		store = policy.NewStore()
	}
	engine := policy.NewEngine(store)

	listener, err := ipc.Listen(dirs.SocketPath)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", dirs.SocketPath, err)
	}

	d := authdaemon.New(listener, engine)
	d.Start()
	logger.Noticef("authd: listening on %s", dirs.SocketPath)

	if ok, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		logger.Debugf("authd: sd_notify READY failed: %v", err)
	} else if ok {
		logger.Debugf("authd: notified systemd readiness")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Noticef("authd: shutting down")
	daemon.SdNotify(false, daemon.SdNotifyStopping)
	return d.Stop()
}

// setupLogging wires internal/logger to the systemd journal when running
// under a unit (detected via JOURNAL_STREAM, the same signal sd-daemon
// itself uses), falling back to stderr otherwise (spec §1 ambient stack).
func setupLogging() error {
	if os.Getenv("JOURNAL_STREAM") == "" || !journal.Enabled() {
		return nil
	}
	logger.SetLogger(journalLogger{})
	return nil
}

type journalLogger struct{}

func (journalLogger) Debugf(format string, v ...interface{}) {
	journal.Send(fmt.Sprintf(format, v...), journal.PriDebug, nil)
}

func (journalLogger) Noticef(format string, v ...interface{}) {
	journal.Send(fmt.Sprintf(format, v...), journal.PriNotice, nil)
}

func (journalLogger) Errorf(format string, v ...interface{}) {
	journal.Send(fmt.Sprintf(format, v...), journal.PriErr, nil)
}
