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

// Package protocol defines the wire types shared by authd, authsudo and
// authctl: the request/response shapes, the policy rule schema, and the
// caller-info record. Everything here is serializable and carries no
// behavior (spec §3, §4.5).
package protocol

import "time"

// AuthMode is the interaction a matched rule requires, ordered from least
// to most restrictive (spec §3, §4.1): None < Confirm < Password < Deny.
type AuthMode int

const (
	// AuthNone allows immediate execution, no interaction.
	AuthNone AuthMode = iota
	// AuthConfirm requires the session-locked confirmation dialog.
	AuthConfirm
	// AuthPassword requires a PAM password prompt (default, spec §4.5).
	AuthPassword
	// AuthDeny denies the target when it is the least restrictive mode among
	// the rules whose subject matches.
	AuthDeny
)

// String renders the TOML spelling of the mode, matching spec §6.
func (m AuthMode) String() string {
	switch m {
	case AuthNone:
		return "none"
	case AuthConfirm:
		return "confirm"
	case AuthPassword:
		return "password"
	case AuthDeny:
		return "deny"
	default:
		return "unknown"
	}
}

// ParseAuthMode maps a TOML string to an AuthMode. An empty string defaults
// to AuthPassword (spec §4.5: "auth defaults to Password").
func ParseAuthMode(s string) (AuthMode, bool) {
	switch s {
	case "", "password":
		return AuthPassword, true
	case "none":
		return AuthNone, true
	case "confirm":
		return AuthConfirm, true
	case "deny":
		return AuthDeny, true
	default:
		return 0, false
	}
}

// DefaultCacheTimeout is the advisory cache_timeout default (spec §3, §4.5).
const DefaultCacheTimeout = 300 * time.Second

// WildcardTarget is the literal token a rule uses to match any target not
// matched exactly (spec §3, §4.1).
const WildcardTarget = "*"

// PolicyRule is the authoritative unit of authorization (spec §3).
type PolicyRule struct {
	Target       string
	AllowUsers   []string
	AllowGroups  []string
	AllowCallers []string
	Auth         AuthMode
	CacheTimeout time.Duration
}

// CallerInfo is derived from the accepted socket, never from request bytes
// (spec §3): authoritative uid/gid/pid plus the resolved /proc/<pid>/exe.
type CallerInfo struct {
	UID uint32
	GID uint32
	PID uint32
	Exe string
}

// AuthRequest is the wire request sent by authsudo/authctl to authd
// (spec §3, §6).
type AuthRequest struct {
	Target      string
	Args        []string
	Env         map[string]string
	Password    string
	ConfirmOnly bool
}

// ResponseKind discriminates the AuthResponse tagged union over the wire
// (spec §3: "tagged variant").
type ResponseKind int

const (
	RespSuccess ResponseKind = iota
	RespDenied
	RespUnknownTarget
	RespAuthFailed
	RespError
)

// AuthResponse is the tagged-union wire response (spec §3, §4.5).
type AuthResponse struct {
	Kind    ResponseKind
	Pid     uint32
	Reason  string
	Message string
}

// Success builds a Success{pid} response.
func Success(pid uint32) AuthResponse { return AuthResponse{Kind: RespSuccess, Pid: pid} }

// Denied builds a Denied{reason} response.
func Denied(reason string) AuthResponse { return AuthResponse{Kind: RespDenied, Reason: reason} }

// UnknownTarget builds an UnknownTarget response.
func UnknownTarget() AuthResponse { return AuthResponse{Kind: RespUnknownTarget} }

// AuthFailed builds an AuthFailed response.
func AuthFailed() AuthResponse { return AuthResponse{Kind: RespAuthFailed} }

// ErrorResponse builds an Error{message} response.
func ErrorResponse(message string) AuthResponse {
	return AuthResponse{Kind: RespError, Message: message}
}
