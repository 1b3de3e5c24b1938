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

// Package privdrop implements the setuid helper's fixed-order privilege
// drop and the target-user resolution that precedes it (spec §4.4 steps
// 8-9). Changing supplementary groups requires privilege; doing it after
// setuid would silently fail or leave the process over-privileged, so the
// order here is load-bearing: initgroups/setgroups, then setgid, then
// setuid (spec §4.4: "Why this order matters").
package privdrop

import (
	"fmt"
	"os/user"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// TargetUser is the resolved identity the setuid helper drops into before
// exec (spec §4.4 step 8: "resolve target user (default root)").
type TargetUser struct {
	Name        string // empty when resolved purely by uid
	UID         int
	GID         int
	KnownByName bool
}

// DefaultTargetUser is "root" per spec §4.4 step 8's default.
const DefaultTargetUser = "root"

// ResolveTargetUser resolves the -u/--user argument (spec §4.4 step 2): a
// bare name, or "#<uid>" for a numeric uid, whose passwd entry (if any) is
// consulted only for its primary gid. An empty spec resolves to root.
func ResolveTargetUser(spec string) (TargetUser, error) {
	if spec == "" {
		spec = DefaultTargetUser
	}

	if strings.HasPrefix(spec, "#") {
		uid, err := strconv.Atoi(spec[1:])
		if err != nil {
			return TargetUser{}, fmt.Errorf("privdrop: invalid uid %q", spec)
		}
		// A bare uid is not resolved to a name, so no group list is derived
		// from it and Drop clears supplementary groups explicitly. The gid
		// is the uid's primary group when a passwd entry exists, falling
		// back to the uid itself.
		gid := uid
		if u, err := user.LookupId(strconv.Itoa(uid)); err == nil {
			if g, err := strconv.Atoi(u.Gid); err == nil {
				gid = g
			}
		}
		return TargetUser{UID: uid, GID: gid, KnownByName: false}, nil
	}

	u, err := user.Lookup(spec)
	if err != nil {
		return TargetUser{}, fmt.Errorf("privdrop: unknown user %q: %w", spec, err)
	}
	uid, err := strconv.Atoi(u.Uid)
	if err != nil {
		return TargetUser{}, fmt.Errorf("privdrop: malformed uid for %q: %w", spec, err)
	}
	gid, err := strconv.Atoi(u.Gid)
	if err != nil {
		return TargetUser{}, fmt.Errorf("privdrop: malformed gid for %q: %w", spec, err)
	}
	return TargetUser{Name: u.Username, UID: uid, GID: gid, KnownByName: true}, nil
}

// The four calls below are indirected through package-level vars so tests
// can record call order instead of touching real process credentials,
// mirroring the teacher's "override the package-level syscall var, restore
// in TearDown" idiom (see daemon/ucrednet_test.go's treatment of net.Listener).
var (
	syscallInitgroups = realInitgroups
	syscallSetgroups  = unix.Setgroups
	syscallSetgid     = unix.Setgid
	syscallSetuid     = unix.Setuid
)

// realInitgroups rebuilds the supplementary group list from the
// passwd/group database for the named user (spec §4.4 step 8).
func realInitgroups(name string) error {
	u, err := user.Lookup(name)
	if err != nil {
		return err
	}
	gidStrs, err := u.GroupIds()
	if err != nil {
		return err
	}
	gids := make([]int, 0, len(gidStrs))
	for _, s := range gidStrs {
		if g, err := strconv.Atoi(s); err == nil {
			gids = append(gids, g)
		}
	}
	return unix.Setgroups(gids)
}

// Drop performs the fixed-order privilege change (spec §4.4 step 8): if
// target is known by name, (re)build supplementary groups from the
// passwd/group database; otherwise clear them explicitly. Then setgid,
// then setuid. Any failure is fatal to the caller (spec §4.4: "Any failure
// in this sequence is fatal").
func Drop(target TargetUser) error {
	if target.KnownByName {
		if err := syscallInitgroups(target.Name); err != nil {
			return fmt.Errorf("privdrop: initgroups(%s): %w", target.Name, err)
		}
	} else {
		if err := syscallSetgroups(nil); err != nil {
			return fmt.Errorf("privdrop: setgroups(nil): %w", err)
		}
	}

	if err := syscallSetgid(target.GID); err != nil {
		return fmt.Errorf("privdrop: setgid(%d): %w", target.GID, err)
	}

	if err := syscallSetuid(target.UID); err != nil {
		return fmt.Errorf("privdrop: setuid(%d): %w", target.UID, err)
	}

	return nil
}
