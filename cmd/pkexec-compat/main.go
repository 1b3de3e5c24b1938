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

// Command pkexec-compat is a drop-in argv-translating shim for scripts
// that still invoke pkexec directly: it strips the handful of
// polkit-specific flags authctl has no equivalent for and re-execs
// authctl with what remains (grounded on
// authctl/src/pkexec_compat.rs from the original implementation; spec.md's
// Non-goals exclude adding authorization surface, and this shim adds
// none — it only translates an invocation).
package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/jessevdk/go-flags"

	"github.com/Osso/authd/internal/i18n"
)

// execAuthctl is indirected so tests can capture the translated argv
// without actually exec'ing a binary.
var execAuthctl = realExecAuthctl

// options enumerates the pkexec flags this shim recognizes well enough to
// consume, so they are never mistaken for the target program. Unknown
// flags before the target are rejected rather than silently forwarded,
// since authctl has no use for them.
type options struct {
	DisableInternalAgent bool   `long:"disable-internal-agent"`
	Version              bool   `long:"version"`
	User                 string `short:"u" long:"user"`
}

// translateArgs drops pkexec-only flags and returns the target program
// plus its own arguments, unchanged, for authctl.
func translateArgs(argv []string) (target string, args []string, err error) {
	var opts options
	parser := flags.NewParser(&opts, flags.PassAfterNonOption)
	remaining, err := parser.ParseArgs(argv)
	if err != nil {
		return "", nil, err
	}
	if len(remaining) == 0 {
		return "", nil, fmt.Errorf(i18n.G("pkexec: missing program"))
	}
	if opts.User != "" {
		// authctl has no user-impersonation flag of its own (that is
		// authsudo's domain); pkexec's -u/--user has no home here, so we
		// drop it rather than fail the whole invocation over it.
		fmt.Fprintln(os.Stderr, i18n.G("pkexec: ignoring unsupported --user, use authsudo -u instead"))
	}
	return remaining[0], remaining[1:], nil
}

func realExecAuthctl(target string, args []string) int {
	cmdArgs := append([]string{target}, args...)
	cmd := exec.Command("authctl", cmdArgs...)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return exitErr.ExitCode()
		}
		fmt.Fprintf(os.Stderr, i18n.G("pkexec: failed to run authctl: %v\n"), err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	target, args, err := translateArgs(argv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pkexec: %v\n", err)
		return 1
	}
	return execAuthctl(target, args)
}
