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

// Package seccomp installs a best-effort syscall lockdown after the setuid
// helper has dropped privileges and before it execs the target (a
// hardening addition beyond the core spec: losing root does not make the
// handful of syscalls the target needs any less interesting to an
// attacker, but a lockdown failure must never block a legitimate escalation).
package seccomp

import (
	"fmt"

	seccomp "github.com/seccomp/libseccomp-golang"
	"golang.org/x/sys/unix"

	"github.com/Osso/authd/internal/logger"
)

// denylist blocks syscalls that have no business running in a just-dropped
// helper process on the way to exec: module loading, kernel keyrings, BPF,
// ptrace, and namespace/mount manipulation. The filter is loaded with
// no_new_privs set and survives execve, so it also applies to the target
// and every process it spawns.
var denylist = []string{
	"create_module", "init_module", "finit_module", "delete_module",
	"kexec_load", "kexec_file_load",
	"add_key", "request_key", "keyctl",
	"bpf",
	"ptrace", "process_vm_readv", "process_vm_writev",
	"mount", "umount", "umount2", "pivot_root",
	"setns", "unshare",
	"perf_event_open",
	"acct",
}

// LockdownAfterDrop installs the denylist filter with default-allow. Any
// failure — unsupported kernel, missing libseccomp, NNP rejection — is
// logged and swallowed: this is hardening, never a gate on the escalation
// the caller already earned (spec §4.4 surrounds only the drop+exec
// sequence with a hard failure requirement; this addition does not).
func LockdownAfterDrop() {
	if err := lockdown(); err != nil {
		logger.Debugf("seccomp: lockdown not applied: %v", err)
	}
}

func lockdown() error {
	if err := unix.Prctl(unix.PR_SET_NO_NEW_PRIVS, 1, 0, 0, 0); err != nil {
		return fmt.Errorf("prctl(NO_NEW_PRIVS): %w", err)
	}

	filter, err := seccomp.NewFilter(seccomp.ActAllow)
	if err != nil {
		return fmt.Errorf("new filter: %w", err)
	}
	defer filter.Release()

	denyAct := seccomp.ActErrno.SetReturnCode(int16(unix.EPERM))
	for _, name := range denylist {
		sc, err := seccomp.GetSyscallFromName(name)
		if err != nil {
			// Not every kernel/arch exposes every syscall name; skip rather
			// than fail the whole lockdown over one unknown entry.
			continue
		}
		if err := filter.AddRule(sc, denyAct); err != nil {
			continue
		}
	}

	if err := filter.Load(); err != nil {
		return fmt.Errorf("load: %w", err)
	}
	return nil
}
