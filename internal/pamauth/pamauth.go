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

// Package pamauth wraps github.com/msteinert/pam as the opaque password
// authentication collaborator the setuid helper calls into (spec §4.4 step
// 7: "prompt the user for a password on the controlling terminal,
// authenticate via PAM using the real user's name"). The spec treats PAM's
// internals as opaque; this package is the concrete binding, nothing more.
package pamauth

import (
	"fmt"

	"github.com/msteinert/pam"
)

// ServiceName is the PAM service file this binary authenticates against.
const ServiceName = "authsudo"

// Authenticator authenticates a single username/password pair via PAM.
// Exposed as an interface so the setuid helper and tests can supply a fake
// without linking libpam.
type Authenticator interface {
	Authenticate(username, password string) error
}

type pamAuthenticator struct {
	service string
}

// New returns the real PAM-backed Authenticator.
func New() Authenticator {
	return &pamAuthenticator{service: ServiceName}
}

// Authenticate opens a transaction against a.service with a conversation
// function that answers every prompt with password, then runs the
// authenticate and account-validity checks. It never calls open_session:
// the helper only needs a yes/no verdict, not a full PAM session.
func (a *pamAuthenticator) Authenticate(username, password string) error {
	tx, err := pam.StartFunc(a.service, username, func(style pam.Style, _ string) (string, error) {
		switch style {
		case pam.PromptEchoOff, pam.PromptEchoOn:
			return password, nil
		default:
			return "", nil
		}
	})
	if err != nil {
		return fmt.Errorf("pamauth: start transaction: %w", err)
	}

	if err := tx.Authenticate(0); err != nil {
		return fmt.Errorf("pamauth: authenticate: %w", err)
	}

	if err := tx.AcctMgmt(0); err != nil {
		return fmt.Errorf("pamauth: account management: %w", err)
	}

	return nil
}
