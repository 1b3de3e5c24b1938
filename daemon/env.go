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

package daemon

import (
	"os/user"
	"strconv"

	"github.com/Osso/authd/dirs"
)

// filterForwardable keeps only the fixed allow-list of variables from env,
// and only those actually present (spec §4.3.1: "only when supplied by the
// request"). The wire AuthRequest.Env field is untrusted client data; this
// is the one place it is allowed to influence anything, and only through
// this narrow filter.
func filterForwardable(env map[string]string) map[string]string {
	out := make(map[string]string)
	for _, key := range dirs.ForwardableEnv {
		if v, ok := env[key]; ok {
			out[key] = v
		}
	}
	return out
}

// passwdEnv resolves HOME and USER for uid from the passwd database (spec
// §4.3.1: "HOME and USER set to the caller's passwd entry").
func passwdEnv(uid uint32) (home, username string, err error) {
	u, err := user.LookupId(strconv.FormatUint(uint64(uid), 10))
	if err != nil {
		return "", "", err
	}
	return u.HomeDir, u.Username, nil
}
