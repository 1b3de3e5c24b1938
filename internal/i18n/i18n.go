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

// Package i18n wraps github.com/snapcore/go-gettext for the handful of
// user-facing strings authsudo and authctl print (ambient stack, spec §1:
// "translatable user-facing CLI strings, matching the teacher's i18n
// convention" — see i18n_test.go's G/NG/TEXTDOMAIN shape).
package i18n

import (
	"os"

	"github.com/snapcore/go-gettext"
)

// TEXTDOMAIN is the gettext domain authsudo/authctl's messages are
// registered under; tests may override it before calling bindTextDomain.
var TEXTDOMAIN = "authd"

// localeDir is where compiled .mo catalogs are installed; overridable only
// through bindTextDomain (there is no runtime relocation of an installed
// system).
const localeDir = "/usr/share/locale"

var locale *gettext.Locale

func init() {
	bindTextDomain(TEXTDOMAIN, localeDir)
}

// bindTextDomain loads dir's locale tree for domain under the process's
// current LANG/LC_MESSAGES.
func bindTextDomain(domain, dir string) {
	locale = gettext.NewLocale(dir, currentLang())
	locale.AddDomain(domain)
}

func currentLang() string {
	if lc := os.Getenv("LC_MESSAGES"); lc != "" {
		return lc
	}
	return os.Getenv("LANG")
}

// G translates a singular message, returning msgid unchanged when no
// catalog entry exists.
func G(msgid string) string {
	return locale.Get(msgid)
}

// NG translates a plural message for count n.
func NG(msgid, msgidPlural string, n int) string {
	return locale.GetN(msgid, msgidPlural, n)
}
