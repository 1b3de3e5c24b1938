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
	"fmt"
	"os/exec"
)

// spawnTarget is indirected for tests.
var spawnTarget = realSpawnTarget

// realSpawnTarget launches target through the system service manager so it
// lands in its own transient scope outside the daemon's cgroup and
// lifetime (spec §4.3.2). The daemon records the child pid but never
// waits: the scope detaches from the daemon's own lifecycle.
func realSpawnTarget(target string, args []string, env map[string]string) (pid int, err error) {
	runnerArgs := []string{"--scope", "--quiet", "--collect"}
	for k, v := range filterForwardable(env) {
		runnerArgs = append(runnerArgs, fmt.Sprintf("--setenv=%s=%s", k, v))
	}
	runnerArgs = append(runnerArgs, "--")
	runnerArgs = append(runnerArgs, target)
	runnerArgs = append(runnerArgs, args...)

	cmd := exec.Command("systemd-run", runnerArgs...)
	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("spawn: systemd-run: %w", err)
	}

	pid = cmd.Process.Pid
	// systemd-run itself exits quickly once the scope is handed off; we
	// reap it in the background so it never becomes a zombie, without
	// blocking the caller on the target's own lifetime.
	go cmd.Wait()

	return pid, nil
}
