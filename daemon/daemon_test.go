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
	"net"
	"path/filepath"
	"testing"

	. "gopkg.in/check.v1"

	"github.com/Osso/authd/internal/ipc"
	"github.com/Osso/authd/internal/policy"
	"github.com/Osso/authd/internal/protocol"
)

func Test(t *testing.T) { TestingT(t) }

type daemonSuite struct {
	restoreDialog func()
	restoreSpawn  func()
}

var _ = Suite(&daemonSuite{})

func (s *daemonSuite) SetUpTest(c *C) {
	origDialog := runDialog
	origSpawn := spawnTarget
	s.restoreDialog = func() { runDialog = origDialog }
	s.restoreSpawn = func() { spawnTarget = origSpawn }
}

func (s *daemonSuite) TearDownTest(c *C) {
	s.restoreDialog()
	s.restoreSpawn()
}

func (s *daemonSuite) TestUnknownTargetWhenNoRuleMatches(c *C) {
	d := New(nil, policy.NewEngine(policy.NewStore()))
	resp := d.process(protocol.CallerInfo{UID: 1000, Exe: "/usr/bin/whatever"}, protocol.AuthRequest{Target: "/usr/bin/nope"})
	c.Check(resp.Kind, Equals, protocol.RespUnknownTarget)
}

func (s *daemonSuite) TestAllowImmediateSpawnsAndReturnsPid(c *C) {
	spawnTarget = func(target string, args []string, env map[string]string) (int, error) {
		c.Check(target, Equals, "/usr/bin/apt")
		return 4242, nil
	}

	store := policy.NewStore()
	store.AddRule(protocol.PolicyRule{Target: "/usr/bin/apt", AllowUsers: []string{"alice"}, Auth: protocol.AuthNone})
	e := policy.NewEngine(store)
	policy.SetResolvers(e, func(uid uint32) (string, bool) { return "alice", true }, func(uint32) ([]string, bool) { return nil, false })

	d := New(nil, e)
	resp := d.process(protocol.CallerInfo{UID: 1000, Exe: "/usr/bin/apt-client"}, protocol.AuthRequest{Target: "/usr/bin/apt"})
	c.Check(resp.Kind, Equals, protocol.RespSuccess)
	c.Check(resp.Pid, Equals, uint32(4242))
}

func (s *daemonSuite) TestDeniedTargetReturnsReason(c *C) {
	store := policy.NewStore()
	store.AddRule(protocol.PolicyRule{Target: "/usr/bin/rm", AllowUsers: []string{"alice"}, Auth: protocol.AuthDeny})
	e := policy.NewEngine(store)
	policy.SetResolvers(e, func(uint32) (string, bool) { return "alice", true }, func(uint32) ([]string, bool) { return nil, false })

	d := New(nil, e)
	resp := d.process(protocol.CallerInfo{UID: 1000}, protocol.AuthRequest{Target: "/usr/bin/rm"})
	c.Check(resp.Kind, Equals, protocol.RespDenied)
	c.Check(resp.Reason, Equals, "target denied by policy")
}

func (s *daemonSuite) TestRequireAuthIsRejectedOverIPC(c *C) {
	store := policy.NewStore()
	store.AddRule(protocol.PolicyRule{Target: "/usr/bin/passwd", AllowUsers: []string{"alice"}, Auth: protocol.AuthPassword})
	e := policy.NewEngine(store)
	policy.SetResolvers(e, func(uint32) (string, bool) { return "alice", true }, func(uint32) ([]string, bool) { return nil, false })

	d := New(nil, e)
	resp := d.process(protocol.CallerInfo{UID: 1000}, protocol.AuthRequest{Target: "/usr/bin/passwd"})
	c.Check(resp.Kind, Equals, protocol.RespError)
	c.Check(resp.Message, Equals, "Password auth requires terminal. Use: authsudo")
}

func (s *daemonSuite) TestAllowWithConfirmDispatchesDialogThenSpawns(c *C) {
	runDialog = func(caller protocol.CallerInfo, target string, args []string, env map[string]string) (DialogOutcome, string) {
		return Confirmed, ""
	}
	spawnTarget = func(target string, args []string, env map[string]string) (int, error) {
		return 555, nil
	}

	store := policy.NewStore()
	store.AddRule(protocol.PolicyRule{Target: "/usr/bin/gparted", AllowUsers: []string{"alice"}, Auth: protocol.AuthConfirm})
	e := policy.NewEngine(store)
	policy.SetResolvers(e, func(uint32) (string, bool) { return "alice", true }, func(uint32) ([]string, bool) { return nil, false })

	d := New(nil, e)
	resp := d.process(protocol.CallerInfo{UID: 1000}, protocol.AuthRequest{Target: "/usr/bin/gparted"})
	c.Check(resp.Kind, Equals, protocol.RespSuccess)
	c.Check(resp.Pid, Equals, uint32(555))
}

func (s *daemonSuite) TestAllowWithConfirmCancelledByUser(c *C) {
	runDialog = func(caller protocol.CallerInfo, target string, args []string, env map[string]string) (DialogOutcome, string) {
		return DialogDenied, "dialog exited 1"
	}

	store := policy.NewStore()
	store.AddRule(protocol.PolicyRule{Target: "/usr/bin/gparted", AllowUsers: []string{"alice"}, Auth: protocol.AuthConfirm})
	e := policy.NewEngine(store)
	policy.SetResolvers(e, func(uint32) (string, bool) { return "alice", true }, func(uint32) ([]string, bool) { return nil, false })

	d := New(nil, e)
	resp := d.process(protocol.CallerInfo{UID: 1000}, protocol.AuthRequest{Target: "/usr/bin/gparted"})
	c.Check(resp.Kind, Equals, protocol.RespDenied)
	c.Check(resp.Reason, Equals, "user cancelled")
}

func (s *daemonSuite) TestConfirmOnlyShortcutForTrustedHelperSkipsPolicy(c *C) {
	runDialog = func(caller protocol.CallerInfo, target string, args []string, env map[string]string) (DialogOutcome, string) {
		return Confirmed, ""
	}
	spawnCalled := false
	spawnTarget = func(target string, args []string, env map[string]string) (int, error) {
		spawnCalled = true
		return 1, nil
	}

	// Empty store: if policy were consulted this would resolve Unknown.
	e := policy.NewEngine(policy.NewStore())
	d := New(nil, e)

	caller := protocol.CallerInfo{UID: 1000, Exe: filepath.Join("/usr/bin", HelperName)}
	resp := d.process(caller, protocol.AuthRequest{Target: "/usr/bin/anything", ConfirmOnly: true})
	c.Check(resp.Kind, Equals, protocol.RespSuccess)
	c.Check(resp.Pid, Equals, uint32(0))
	c.Check(spawnCalled, Equals, false)
}

func (s *daemonSuite) TestConfirmOnlyWithoutTrustedHelperStillConsultsPolicy(c *C) {
	e := policy.NewEngine(policy.NewStore())
	d := New(nil, e)

	resp := d.process(protocol.CallerInfo{UID: 1000, Exe: "/usr/bin/some-other-app"}, protocol.AuthRequest{Target: "/usr/bin/anything", ConfirmOnly: true})
	c.Check(resp.Kind, Equals, protocol.RespUnknownTarget)
}

func (s *daemonSuite) TestProcessAndRespondRoundTrip(c *C) {
	spawnTarget = func(target string, args []string, env map[string]string) (int, error) { return 99, nil }

	store := policy.NewStore()
	store.AddRule(protocol.PolicyRule{Target: "/usr/bin/apt", AllowUsers: []string{"alice"}, Auth: protocol.AuthNone})
	e := policy.NewEngine(store)
	policy.SetResolvers(e, func(uint32) (string, bool) { return "alice", true }, func(uint32) ([]string, bool) { return nil, false })

	d := New(nil, e)

	server, client := net.Pipe()
	defer client.Close()

	go func() {
		// handleConn expects a RemoteAddr-carrying conn; net.Pipe's Addr is
		// not ucrednet-encoded, so we exercise process() + respond()
		// directly here and leave the accept-path wiring to ipc's own tests.
		req := protocol.AuthRequest{Target: "/usr/bin/apt"}
		resp := d.process(protocol.CallerInfo{UID: 1000, Exe: "/usr/bin/apt-client"}, req)
		d.respond(server, resp)
		server.Close()
	}()

	data, err := ipc.ReadFrame(client)
	c.Assert(err, IsNil)
	resp, err := protocol.DecodeResponse(data)
	c.Assert(err, IsNil)
	c.Check(resp.Kind, Equals, protocol.RespSuccess)
	c.Check(resp.Pid, Equals, uint32(99))
}
