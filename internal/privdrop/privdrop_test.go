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

package privdrop_test

import (
	"errors"
	"testing"

	. "gopkg.in/check.v1"

	"github.com/Osso/authd/internal/privdrop"
)

func Test(t *testing.T) { TestingT(t) }

type privdropSuite struct {
	calls   []string
	restore func()
}

var _ = Suite(&privdropSuite{})

func (s *privdropSuite) SetUpTest(c *C) {
	s.calls = nil
	s.restore = privdrop.SetSyscalls(
		func(name string) error { s.calls = append(s.calls, "initgroups:"+name); return nil },
		func(gids []int) error { s.calls = append(s.calls, "setgroups"); return nil },
		func(gid int) error { s.calls = append(s.calls, "setgid"); return nil },
		func(uid int) error { s.calls = append(s.calls, "setuid"); return nil },
	)
}

func (s *privdropSuite) TearDownTest(c *C) {
	s.restore()
}

func (s *privdropSuite) TestDropOrderWithKnownUser(c *C) {
	target := privdrop.TargetUser{Name: "alice", UID: 1000, GID: 1000, KnownByName: true}
	err := privdrop.Drop(target)
	c.Assert(err, IsNil)
	c.Check(s.calls, DeepEquals, []string{"initgroups:alice", "setgid", "setuid"})
}

func (s *privdropSuite) TestDropOrderWithBareUID(c *C) {
	target := privdrop.TargetUser{UID: 1000, GID: 1000, KnownByName: false}
	err := privdrop.Drop(target)
	c.Assert(err, IsNil)
	c.Check(s.calls, DeepEquals, []string{"setgroups", "setgid", "setuid"})
}

func (s *privdropSuite) TestSetgidFailureAbortsBeforeSetuid(c *C) {
	s.restore()
	s.restore = privdrop.SetSyscalls(
		func(name string) error { s.calls = append(s.calls, "initgroups"); return nil },
		func(gids []int) error { s.calls = append(s.calls, "setgroups"); return nil },
		func(gid int) error { s.calls = append(s.calls, "setgid"); return errors.New("boom") },
		func(uid int) error { s.calls = append(s.calls, "setuid"); return nil },
	)

	err := privdrop.Drop(privdrop.TargetUser{UID: 1000, GID: 1000})
	c.Check(err, ErrorMatches, "privdrop: setgid.*boom")
	c.Check(s.calls, DeepEquals, []string{"setgroups", "setgid"})
}

func (s *privdropSuite) TestInitgroupsFailureAbortsBeforeSetgid(c *C) {
	s.restore()
	s.restore = privdrop.SetSyscalls(
		func(name string) error { return errors.New("no such user") },
		func(gids []int) error { s.calls = append(s.calls, "setgroups"); return nil },
		func(gid int) error { s.calls = append(s.calls, "setgid"); return nil },
		func(uid int) error { s.calls = append(s.calls, "setuid"); return nil },
	)

	err := privdrop.Drop(privdrop.TargetUser{Name: "ghost", UID: 1000, GID: 1000, KnownByName: true})
	c.Check(err, ErrorMatches, "privdrop: initgroups.*no such user")
	c.Check(s.calls, HasLen, 0)
}

func (s *privdropSuite) TestResolveTargetUserDefaultsToRoot(c *C) {
	// root (uid 0) is guaranteed to exist in any passwd database this
	// test runs against.
	target, err := privdrop.ResolveTargetUser("")
	c.Assert(err, IsNil)
	c.Check(target.UID, Equals, 0)
	c.Check(target.KnownByName, Equals, true)
}

func (s *privdropSuite) TestResolveTargetUserByBareUID(c *C) {
	target, err := privdrop.ResolveTargetUser("#1234")
	c.Assert(err, IsNil)
	c.Check(target.UID, Equals, 1234)
	c.Check(target.KnownByName, Equals, false)
}

func (s *privdropSuite) TestResolveTargetUserInvalidBareUID(c *C) {
	_, err := privdrop.ResolveTargetUser("#notanumber")
	c.Check(err, ErrorMatches, "privdrop: invalid uid.*")
}

func (s *privdropSuite) TestResolveTargetUserUnknownName(c *C) {
	_, err := privdrop.ResolveTargetUser("definitely-not-a-real-user-xyz")
	c.Check(err, ErrorMatches, "privdrop: unknown user.*")
}
