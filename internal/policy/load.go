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

package policy

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/Osso/authd/internal/logger"
	"github.com/Osso/authd/internal/protocol"
)

// tomlFile is the on-disk shape of a single policy file (spec §4.5, §6):
//
//	[[rules]]
//	target = "/usr/bin/apt"
//	allow_users = ["alice"]
//	allow_groups = ["sudo"]
//	allow_callers = ["/usr/bin/nautilus"]
//	auth = "password"
//	cache_timeout = 300
type tomlFile struct {
	Rules []tomlRule `toml:"rules"`
}

type tomlRule struct {
	Target       string   `toml:"target"`
	AllowUsers   []string `toml:"allow_users"`
	AllowGroups  []string `toml:"allow_groups"`
	AllowCallers []string `toml:"allow_callers"`
	Auth         string   `toml:"auth"`
	CacheTimeout *int64   `toml:"cache_timeout"`
}

// LoadDir reads every *.toml file in dir, in lexical order, and merges their
// rules into a single Store. A file that fails to parse is logged and
// skipped rather than aborting the load (spec §4.5, §7: "a malformed policy
// file must not prevent the rest of the policy set from loading").
func LoadDir(dir string) (*Store, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("policy: read dir %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, ent := range entries {
		if ent.IsDir() || !strings.HasSuffix(ent.Name(), ".toml") {
			continue
		}
		names = append(names, ent.Name())
	}
	sort.Strings(names)

	store := NewStore()
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := loadFile(store, path); err != nil {
			logger.Noticef("policy: skipping %s: %v", path, err)
		}
	}
	return store, nil
}

func loadFile(store *Store, path string) error {
	var parsed tomlFile
	if _, err := toml.DecodeFile(path, &parsed); err != nil {
		return err
	}

	rules := make([]protocol.PolicyRule, 0, len(parsed.Rules))
	for i, r := range parsed.Rules {
		if r.Target == "" {
			return fmt.Errorf("rule %d: missing target", i)
		}
		mode, ok := protocol.ParseAuthMode(r.Auth)
		if !ok {
			return fmt.Errorf("rule %d (%s): invalid auth %q", i, r.Target, r.Auth)
		}

		timeout := protocol.DefaultCacheTimeout
		if r.CacheTimeout != nil {
			timeout = time.Duration(*r.CacheTimeout) * time.Second
		}

		rules = append(rules, protocol.PolicyRule{
			Target:       r.Target,
			AllowUsers:   r.AllowUsers,
			AllowGroups:  r.AllowGroups,
			AllowCallers: r.AllowCallers,
			Auth:         mode,
			CacheTimeout: timeout,
		})
	}
	for _, rule := range rules {
		store.AddRule(rule)
	}
	return nil
}
