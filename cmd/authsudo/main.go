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

// Command authsudo is the setuid trust boundary (spec §4.4). Installed
// mode 4755 owned by root, it is the only component in this repository
// that actually changes privilege: everything before its fixed-order drop
// (internal/privdrop) runs as root; everything after runs, and execs, as
// the resolved target user.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"os/user"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/jessevdk/go-flags"
	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/Osso/authd/dirs"
	"github.com/Osso/authd/internal/ancestry"
	"github.com/Osso/authd/internal/i18n"
	"github.com/Osso/authd/internal/ipc"
	"github.com/Osso/authd/internal/logger"
	"github.com/Osso/authd/internal/pamauth"
	"github.com/Osso/authd/internal/policy"
	"github.com/Osso/authd/internal/privdrop"
	"github.com/Osso/authd/internal/protocol"
	"github.com/Osso/authd/internal/seccomp"
)

// harmlessArgs short-circuits the policy check entirely so a gated command
// can always be discovered, never locking a user out of --help (spec §4.4
// step 4).
var harmlessArgs = map[string]bool{
	"--help": true, "-h": true, "--version": true, "-V": true,
}

// The indirections below are overridden in tests, mirroring the teacher's
// "override the package-level syscall var" idiom (privdrop_test.go,
// ipc_test.go).
var (
	syscallExec       = syscall.Exec
	privdropDrop      = privdrop.Drop
	seccompLockdown   = seccomp.LockdownAfterDrop
	ipcCall           = ipc.Call
	newAuthenticator  = pamauth.New
	loadPolicyEngine  = loadEngine
	readPasswordStdin = readPassword
)

type options struct {
	User string `short:"u" long:"user" description:"run command as this user (name or #uid)"`
}

// parseArgs parses argv with go-flags in PassAfterNonOption mode: once the
// first non-option argument (the target command) is seen, everything
// after it is returned verbatim, flags and all, since those belong to the
// target, not to authsudo (spec §4.4 step 2).
func parseArgs(argv []string) (userSpec, target string, rest []string, err error) {
	var opts options
	parser := flags.NewParser(&opts, flags.PassAfterNonOption)
	remaining, err := parser.ParseArgs(argv)
	if err != nil {
		return "", "", nil, err
	}
	if len(remaining) == 0 {
		return "", "", nil, fmt.Errorf(i18n.G("authsudo: missing command"))
	}
	return opts.User, remaining[0], remaining[1:], nil
}

// resolveTargetPath implements spec §4.4 step 3's three-way resolution.
func resolveTargetPath(raw string) (string, error) {
	switch {
	case filepath.IsAbs(raw):
		if _, err := os.Stat(raw); err != nil {
			return "", fmt.Errorf(i18n.G("authsudo: command not found: %s"), raw)
		}
		return raw, nil
	case strings.ContainsRune(raw, filepath.Separator):
		abs, err := filepath.Abs(raw)
		if err != nil {
			return "", fmt.Errorf(i18n.G("authsudo: command not found: %s"), raw)
		}
		abs = filepath.Clean(abs)
		if _, err := os.Stat(abs); err != nil {
			return "", fmt.Errorf(i18n.G("authsudo: command not found: %s"), raw)
		}
		return abs, nil
	default:
		resolved, err := exec.LookPath(raw)
		if err != nil {
			return "", fmt.Errorf(i18n.G("authsudo: command not found: %s"), raw)
		}
		return resolved, nil
	}
}

func hasHarmlessArg(args []string) bool {
	for _, a := range args {
		if harmlessArgs[a] {
			return true
		}
	}
	return false
}

func loadEngine() *policy.Engine {
	store, err := policy.LoadDir(dirs.PolicyDir)
	if err != nil {
		logger.Noticef("authsudo: policy directory %s unreadable: %v", dirs.PolicyDir, err)
		store = policy.NewStore()
	}
	return policy.NewEngine(store)
}

// realUID returns getuid()'s result — the only trustworthy identity this
// binary has on entry (spec §4.4 step 1).
func realUID() uint32 {
	return uint32(unix.Getuid())
}

// resolveUsername looks up uid's passwd entry, needed only when a decision
// requires a PAM prompt (the policy engine resolves its own username
// internally; nothing else here needs one).
func resolveUsername(uid uint32) (string, error) {
	u, err := user.LookupId(strconv.FormatUint(uint64(uid), 10))
	if err != nil {
		return "", err
	}
	return u.Username, nil
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

func readPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	data, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run implements spec §4.4 end to end, returning the process exit code
// rather than calling os.Exit itself so tests can assert on it.
func run(argv []string) int {
	uid := realUID()

	userSpec, rawTarget, args, err := parseArgs(argv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "authsudo: %v\n", err)
		return 1
	}

	target, err := resolveTargetPath(rawTarget)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 127
	}

	var decision policy.Decision
	if hasHarmlessArg(args) {
		decision = policy.Decision{Kind: policy.AllowImmediate}
	} else {
		chain := ancestry.Walk(os.Getpid())
		engine := loadPolicyEngine()
		decision = engine.Check(target, uid, chain.Paths())
	}

	switch decision.Kind {
	case policy.Unknown:
		fmt.Fprintf(os.Stderr, i18n.G("authsudo: no policy for %s\n"), target)
		return 1
	case policy.Denied:
		fmt.Fprintln(os.Stderr, "authsudo: "+decision.Reason)
		return 1
	case policy.AllowWithConfirm:
		resp, err := ipcCall(dirs.SocketPath, protocol.AuthRequest{
			Target: target, Args: args, Env: forwardableEnv(), ConfirmOnly: true,
		})
		if err != nil || resp.Kind != protocol.RespSuccess {
			fmt.Fprintln(os.Stderr, i18n.G("authsudo: confirmation denied"))
			return 1
		}
	case policy.RequireAuth:
		username, err := resolveUsername(uid)
		if err != nil {
			fmt.Fprintln(os.Stderr, i18n.G("authsudo: cannot resolve invoking user"))
			return 1
		}
		password, err := readPasswordStdin(fmt.Sprintf(i18n.G("[authsudo] password for %s: "), username))
		if err != nil {
			fmt.Fprintln(os.Stderr, i18n.G("authsudo: failed to read password"))
			return 1
		}
		if err := newAuthenticator().Authenticate(username, password); err != nil {
			fmt.Fprintln(os.Stderr, i18n.G("authsudo: authentication failure"))
			return 1
		}
	case policy.AllowImmediate:
		// proceed
	}

	targetUser, err := privdrop.ResolveTargetUser(userSpec)
	if err != nil {
		fmt.Fprintf(os.Stderr, "authsudo: %v\n", err)
		return 1
	}
	if err := privdropDrop(targetUser); err != nil {
		fmt.Fprintf(os.Stderr, "authsudo: %v\n", err)
		return 1
	}
	seccompLockdown()

	execArgv := append([]string{target}, args...)
	if err := syscallExec(target, execArgv, os.Environ()); err != nil {
		fmt.Fprintf(os.Stderr, i18n.G("authsudo: exec failed: %v\n"), err)
		return 126
	}
	// unreachable: a successful Exec replaces this process image.
	return 0
}
