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

// Package policy implements the decision engine described in spec §4.1:
// a pure, lock-free function over an immutable rule set that decides what
// interaction (if any) a caller needs before a target may run.
package policy

import (
	"fmt"
	"os/user"
	"strconv"

	"github.com/Osso/authd/internal/protocol"
)

// Decision is the outcome of Engine.Check (spec §4.1).
type Decision struct {
	Kind   DecisionKind
	Reason string
}

// DecisionKind enumerates the possible decisions.
type DecisionKind int

const (
	// Unknown means no rule, exact or wildcard, named this target.
	Unknown DecisionKind = iota
	// AllowImmediate means the caller may run the target without interaction.
	AllowImmediate
	// AllowWithConfirm means the caller must pass the confirmation dialog.
	AllowWithConfirm
	// RequireAuth means the caller must authenticate with a password.
	RequireAuth
	// Denied means the request is refused; Reason explains why.
	Denied
)

func denied(reason string) Decision { return Decision{Kind: Denied, Reason: reason} }

// Store is an immutable, process-scoped map from target path to the rules
// that named it, plus an implicit list under the wildcard key (spec §3).
// A Store is never mutated after it is built by LoadDir; that
// immutability is what lets Engine.Check run lock-free (spec §4.1, §5, §8).
type Store struct {
	byTarget map[string][]protocol.PolicyRule
}

// NewStore builds an empty Store, useful for tests that add rules directly.
func NewStore() *Store {
	return &Store{byTarget: make(map[string][]protocol.PolicyRule)}
}

// AddRule appends rule to the per-target list (spec §3: "multiple rules may
// share the same target").
func (s *Store) AddRule(rule protocol.PolicyRule) {
	s.byTarget[rule.Target] = append(s.byTarget[rule.Target], rule)
}

// Rules returns the rules registered for target (no wildcard expansion).
func (s *Store) Rules(target string) []protocol.PolicyRule {
	return s.byTarget[target]
}

// Engine is the pure, concurrency-safe decision function over a Store
// (spec §4.1: "performs no I/O after load and holds no locks in its hot
// path; safe to call concurrently from many threads").
type Engine struct {
	store *Store

	// resolveUser and groupMembers are indirected for testability,
	// mirroring the teacher's "override the syscall var, restore in
	// TearDown" pattern for anything that talks to the OS.
	resolveUser  func(uid uint32) (string, bool)
	groupMembers func(uid uint32) ([]string, bool)
}

// NewEngine wraps store in a ready-to-use Engine backed by the real
// passwd/group database.
func NewEngine(store *Store) *Engine {
	return &Engine{
		store:        store,
		resolveUser:  osUsername,
		groupMembers: osGroups,
	}
}

// Store returns the engine's backing rule store.
func (e *Engine) Store() *Store { return e.store }

func osUsername(uid uint32) (string, bool) {
	u, err := user.LookupId(strconv.FormatUint(uint64(uid), 10))
	if err != nil {
		return "", false
	}
	return u.Username, true
}

func osGroups(uid uint32) ([]string, bool) {
	u, err := user.LookupId(strconv.FormatUint(uint64(uid), 10))
	if err != nil {
		return nil, false
	}
	gids, err := u.GroupIds()
	if err != nil {
		return nil, false
	}
	names := make([]string, 0, len(gids))
	for _, gid := range gids {
		if g, err := user.LookupGroupId(gid); err == nil {
			names = append(names, g.Name)
		}
	}
	return names, true
}

// Check implements spec §4.1 end to end: collect exact+wildcard rules,
// discard rules whose subject predicate fails, and return the decision for
// the least-restrictive surviving auth mode. callerChain holds every
// ancestor's resolved path (both exe and cmdline-arg0 entries are expected
// to already be flattened into this slice by the caller, per spec §4.4's
// "either may match allow_callers").
func (e *Engine) Check(target string, uid uint32, callerChain []string) Decision {
	rules := e.collect(target)
	if len(rules) == 0 {
		return Decision{Kind: Unknown}
	}

	username, haveUser := e.resolveUser(uid)
	groups, haveGroups := e.groupMembers(uid)

	var (
		survived bool
		best     protocol.AuthMode = protocol.AuthDeny + 1 // worse than any real mode
	)

	for _, rule := range rules {
		if !e.subjectMatches(rule, uid, username, haveUser, groups, haveGroups, callerChain) {
			continue
		}
		survived = true

		if rule.Auth == protocol.AuthNone {
			// Can't do better than None; short-circuit (spec §4.1).
			return Decision{Kind: AllowImmediate}
		}
		if rule.Auth < best {
			best = rule.Auth
		}
	}

	if !survived {
		return denied("user not authorized")
	}

	switch best {
	case protocol.AuthNone:
		return Decision{Kind: AllowImmediate}
	case protocol.AuthConfirm:
		return Decision{Kind: AllowWithConfirm}
	case protocol.AuthPassword:
		return Decision{Kind: RequireAuth}
	case protocol.AuthDeny:
		return denied("target denied by policy")
	default:
		return denied("target denied by policy")
	}
}

// collect gathers every rule whose target equals target exactly plus every
// wildcard rule, per spec §4.1: "Exact rules do not suppress wildcard
// rules; both are considered together."
func (e *Engine) collect(target string) []protocol.PolicyRule {
	exact := e.store.byTarget[target]
	wildcard := e.store.byTarget[protocol.WildcardTarget]
	if len(exact) == 0 {
		return wildcard
	}
	if len(wildcard) == 0 {
		return exact
	}
	out := make([]protocol.PolicyRule, 0, len(exact)+len(wildcard))
	out = append(out, exact...)
	out = append(out, wildcard...)
	return out
}

func (e *Engine) subjectMatches(
	rule protocol.PolicyRule,
	uid uint32,
	username string, haveUser bool,
	groups []string, haveGroups bool,
	callerChain []string,
) bool {
	if haveUser {
		for _, u := range rule.AllowUsers {
			if u == username {
				return true
			}
		}
	}

	if haveGroups {
		for _, want := range rule.AllowGroups {
			for _, have := range groups {
				if want == have {
					return true
				}
			}
		}
	}

	for _, allowed := range rule.AllowCallers {
		for _, c := range callerChain {
			if c == allowed {
				return true
			}
		}
	}

	return false
}

// SetResolvers overrides an Engine's uid->username and uid->groups lookups.
// Exported for tests in this package's _test package; production code never
// needs it since NewEngine already wires the real passwd/group database.
func SetResolvers(e *Engine, resolveUser func(uint32) (string, bool), groupMembers func(uint32) ([]string, bool)) {
	e.resolveUser = resolveUser
	e.groupMembers = groupMembers
}

// String renders a decision for logging.
func (d Decision) String() string {
	switch d.Kind {
	case Unknown:
		return "unknown"
	case AllowImmediate:
		return "allow-immediate"
	case AllowWithConfirm:
		return "allow-with-confirm"
	case RequireAuth:
		return "require-auth"
	case Denied:
		return fmt.Sprintf("denied: %s", d.Reason)
	default:
		return "invalid"
	}
}
