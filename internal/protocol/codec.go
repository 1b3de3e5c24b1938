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

package protocol

import "github.com/vmihailenco/msgpack/v5"

// wireRequest/wireResponse are the on-the-wire shapes. They exist
// separately from AuthRequest/AuthResponse so the public types can use Go
// idioms (AuthMode as an int, ResponseKind as an int) while the wire form
// stays a flat, schema-stable msgpack map (spec §4.2, §6: "compact,
// self-delimited binary record").
type wireRequest struct {
	Target      string            `msgpack:"target"`
	Args        []string          `msgpack:"args"`
	Env         map[string]string `msgpack:"env"`
	Password    string            `msgpack:"password"`
	ConfirmOnly bool              `msgpack:"confirm_only"`
}

type wireResponse struct {
	Kind    string `msgpack:"kind"`
	Pid     uint32 `msgpack:"pid,omitempty"`
	Reason  string `msgpack:"reason,omitempty"`
	Message string `msgpack:"message,omitempty"`
}

var kindNames = map[ResponseKind]string{
	RespSuccess:       "success",
	RespDenied:        "denied",
	RespUnknownTarget: "unknown_target",
	RespAuthFailed:    "auth_failed",
	RespError:         "error",
}

var kindValues = func() map[string]ResponseKind {
	m := make(map[string]ResponseKind, len(kindNames))
	for k, v := range kindNames {
		m[v] = k
	}
	return m
}()

// EncodeRequest serializes an AuthRequest to its wire form.
func EncodeRequest(req AuthRequest) ([]byte, error) {
	return msgpack.Marshal(wireRequest{
		Target:      req.Target,
		Args:        req.Args,
		Env:         req.Env,
		Password:    req.Password,
		ConfirmOnly: req.ConfirmOnly,
	})
}

// DecodeRequest deserializes an AuthRequest from its wire form.
func DecodeRequest(data []byte) (AuthRequest, error) {
	var w wireRequest
	if err := msgpack.Unmarshal(data, &w); err != nil {
		return AuthRequest{}, err
	}
	return AuthRequest{
		Target:      w.Target,
		Args:        w.Args,
		Env:         w.Env,
		Password:    w.Password,
		ConfirmOnly: w.ConfirmOnly,
	}, nil
}

// EncodeResponse serializes an AuthResponse to its tagged wire form.
func EncodeResponse(resp AuthResponse) ([]byte, error) {
	name, ok := kindNames[resp.Kind]
	if !ok {
		name = "error"
	}
	return msgpack.Marshal(wireResponse{
		Kind:    name,
		Pid:     resp.Pid,
		Reason:  resp.Reason,
		Message: resp.Message,
	})
}

// DecodeResponse deserializes an AuthResponse from its tagged wire form.
func DecodeResponse(data []byte) (AuthResponse, error) {
	var w wireResponse
	if err := msgpack.Unmarshal(data, &w); err != nil {
		return AuthResponse{}, err
	}
	kind, ok := kindValues[w.Kind]
	if !ok {
		kind = RespError
		if w.Message == "" {
			w.Message = "unrecognized response kind: " + w.Kind
		}
	}
	return AuthResponse{
		Kind:    kind,
		Pid:     w.Pid,
		Reason:  w.Reason,
		Message: w.Message,
	}, nil
}
