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

package privdrop

// SetSyscalls overrides the four privilege-drop primitives for tests and
// returns a restore function (spec §8's syscall-order test requirement).
func SetSyscalls(
	initgroups func(name string) error,
	setgroups func(gids []int) error,
	setgid func(gid int) error,
	setuid func(uid int) error,
) (restore func()) {
	prevInit, prevGroups, prevGid, prevUid := syscallInitgroups, syscallSetgroups, syscallSetgid, syscallSetuid
	syscallInitgroups = initgroups
	syscallSetgroups = setgroups
	syscallSetgid = setgid
	syscallSetuid = setuid
	return func() {
		syscallInitgroups = prevInit
		syscallSetgroups = prevGroups
		syscallSetgid = prevGid
		syscallSetuid = prevUid
	}
}
