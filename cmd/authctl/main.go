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

// Command authctl is the daemon-route client: it never touches privilege
// itself, only asks authd to decide and spawn (spec §6: "authctl <command>
// [args...]. Exit 0 on spawn success; 1 otherwise").
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/jessevdk/go-flags"

	"github.com/Osso/authd/dirs"
	"github.com/Osso/authd/internal/i18n"
	"github.com/Osso/authd/internal/ipc"
	"github.com/Osso/authd/internal/protocol"
)

var callDaemon = ipc.Call

type options struct{}

// parseArgs splits argv into the target command and its own arguments;
// authctl itself takes no flags of its own, matching the spec's minimal
// CLI surface — PassAfterNonOption keeps it consistent with authsudo's
// parser even though there is nothing before the first positional here.
func parseArgs(argv []string) (target string, args []string, err error) {
	var opts options
	parser := flags.NewParser(&opts, flags.PassAfterNonOption)
	remaining, err := parser.ParseArgs(argv)
	if err != nil {
		return "", nil, err
	}
	if len(remaining) == 0 {
		return "", nil, fmt.Errorf(i18n.G("authctl: missing command"))
	}
	return remaining[0], remaining[1:], nil
}

func forwardableEnv() map[string]string {
	out := make(map[string]string)
	for _, kv := range os.Environ() {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			continue
		}
		if dirs.IsForwardable(parts[0]) {
			out[parts[0]] = parts[1]
		}
	}
	return out
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	target, args, err := parseArgs(argv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "authctl: %v\n", err)
		return 1
	}

	resp, err := callDaemon(dirs.SocketPath, protocol.AuthRequest{
		Target: target,
		Args:   args,
		Env:    forwardableEnv(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, i18n.G("authctl: %v\n"), err)
		return 1
	}

	switch resp.Kind {
	case protocol.RespSuccess:
		return 0
	case protocol.RespDenied:
		fmt.Fprintln(os.Stderr, "authctl: "+resp.Reason)
	case protocol.RespUnknownTarget:
		fmt.Fprintf(os.Stderr, i18n.G("authctl: no policy for %s\n"), target)
	case protocol.RespAuthFailed:
		fmt.Fprintln(os.Stderr, i18n.G("authctl: authentication failed"))
	case protocol.RespError:
		fmt.Fprintln(os.Stderr, "authctl: "+resp.Message)
	}
	return 1
}
