// Copyright (C) 2021-2026 the bcm43602-mbp-linux Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package status

import (
	"os"
	fp "path/filepath"
	"testing"

	"github.com/nilz90/bcm43602-mbp-linux/pkg/log/testlog"
)

func fake(m testlog.CmdMap, ok bool, args ...string) testlog.Key {
	k := testlog.CmdKey(append([]string{"systemctl", "--system"}, args...))
	m[k] = testlog.HijackerData{
		Result: testlog.Result{Success: ok},
		NoRun:  true,
	}
	return k
}

func TestQueries(t *testing.T) {
	tlog := testlog.NewTestLog(t, true, false)
	defer tlog.Freeze()
	m := make(testlog.CmdMap)
	fake(m, true, "is-active", "-q", "iwd.service")
	fake(m, false, "is-active", "-q", "wpa_supplicant.service")
	fake(m, false, "is-enabled", "-q", "iwd.service")
	fake(m, true, "cat", "iwd.service")
	fake(m, false, "cat", "nonsense.service")
	tlog.UseMappedCmdHijacker(m)

	if !IsActive("iwd.service") {
		t.Errorf("IsActive: want true")
	}
	if IsActive("wpa_supplicant.service") {
		t.Errorf("IsActive: want false")
	}
	if IsEnabled("iwd.service") {
		t.Errorf("IsEnabled: want false")
	}
	if !UnitExists("iwd.service") {
		t.Errorf("UnitExists: want true")
	}
	if UnitExists("nonsense.service") {
		t.Errorf("UnitExists: want false")
	}
}

func TestActions(t *testing.T) {
	tlog := testlog.NewTestLog(t, true, false)
	defer tlog.Freeze()
	m := make(testlog.CmdMap)
	start := fake(m, true, "start", "-q", "iwd.service")
	stop := fake(m, false, "stop", "-q", "iwd.service")
	tlog.UseMappedCmdHijacker(m)

	if err := Start("iwd.service"); err != nil {
		t.Errorf("Start: %s", err)
	}
	if err := Stop("iwd.service"); err == nil {
		t.Errorf("Stop: expected error")
	}
	if m[start].RunCount != 1 || m[stop].RunCount != 1 {
		t.Errorf("unexpected run counts: %#v", m)
	}
}

func TestUserContext(t *testing.T) {
	tlog := testlog.NewTestLog(t, true, false)
	defer tlog.Freeze()
	m := make(testlog.CmdMap)
	k := testlog.CmdKey([]string{"systemctl", "--user", "is-active", "-q", "pipewire.service"})
	m[k] = testlog.HijackerData{
		Result: testlog.Result{Success: true},
		NoRun:  true,
	}
	tlog.UseMappedCmdHijacker(m)

	if !UserContext().IsActive("pipewire.service") {
		t.Errorf("IsActive: want true")
	}
	if m[k].RunCount != 1 {
		t.Errorf("--user command not issued")
	}
}

//func IsSystemd() bool
func TestIsSystemd(t *testing.T) {
	orig := initCmdline
	defer func() { initCmdline = orig }()

	dir := t.TempDir()
	for _, td := range []struct {
		cmdline string
		want    bool
	}{
		{"/usr/lib/systemd/systemd\x00--switched-root\x00", true},
		{"/sbin/init\x00", false},
	} {
		p := fp.Join(dir, "cmdline")
		if err := os.WriteFile(p, []byte(td.cmdline), 0644); err != nil {
			t.Fatal(err)
		}
		initCmdline = p
		if got := IsSystemd(); got != td.want {
			t.Errorf("%q: want %v", td.cmdline, td.want)
		}
	}

	initCmdline = fp.Join(dir, "missing")
	if IsSystemd() {
		t.Errorf("unreadable cmdline must not report systemd")
	}
}
