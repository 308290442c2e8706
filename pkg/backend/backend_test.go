// Copyright (C) 2021-2026 the bcm43602-mbp-linux Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package backend

import (
	"os"
	fp "path/filepath"
	"strings"
	"testing"

	"github.com/nilz90/bcm43602-mbp-linux/pkg/log/testlog"
)

//func Decide(mode Mode, iwd IwdState) Kind
func TestDecide(t *testing.T) {
	for i, td := range []struct {
		mode Mode
		iwd  IwdState
		want Kind
	}{
		//absent unit: wpa_supplicant, regardless of anything else
		{Auto, IwdState{}, Supplicant},
		{Auto, IwdState{Active: true, Enabled: true}, Supplicant},
		//present + active or enabled: iwd
		{Auto, IwdState{Present: true, Active: true}, Iwd},
		{Auto, IwdState{Present: true, Enabled: true}, Iwd},
		{Auto, IwdState{Present: true, Active: true, Enabled: true}, Iwd},
		//present but neither active nor enabled: wpa_supplicant
		{Auto, IwdState{Present: true}, Supplicant},
		//forced modes ignore live state
		{ForceIwd, IwdState{}, Iwd},
		{ForceSupplicant, IwdState{Present: true, Active: true, Enabled: true}, Supplicant},
	} {
		if got := Decide(td.mode, td.iwd); got != td.want {
			t.Errorf("%d: want %s, got %s", i, td.want, got)
		}
	}
}

//func ParseMode(s string) (Mode, error)
func TestParseMode(t *testing.T) {
	for _, td := range []struct {
		in   string
		want Mode
		ok   bool
	}{
		{"auto", Auto, true},
		{"", Auto, true},
		{"iwd", ForceIwd, true},
		{"IWD", ForceIwd, true},
		{"wpa_supplicant", ForceSupplicant, true},
		{"wpa", ForceSupplicant, true},
		{"networkd", Auto, false},
	} {
		got, err := ParseMode(td.in)
		if td.ok != (err == nil) {
			t.Errorf("%q: err = %v", td.in, err)
			continue
		}
		if err == nil && got != td.want {
			t.Errorf("%q: want %v, got %v", td.in, td.want, got)
		}
	}
}

//func Current(confPath string) Kind
func TestCurrent(t *testing.T) {
	dir := t.TempDir()
	p := fp.Join(dir, ConfName)
	if got := Current(p); got != Unknown {
		t.Errorf("missing file: want Unknown, got %s", got)
	}
	for _, td := range []struct {
		content string
		want    Kind
	}{
		{"[device]\nwifi.backend=iwd\n", Iwd},
		{"[device]\nwifi.backend=wpa_supplicant\n", Supplicant},
		{"# comment only\n", Unknown},
		{"[device]\nwifi.backend=dhcpcd\n", Unknown},
	} {
		if err := os.WriteFile(p, []byte(td.content), 0644); err != nil {
			t.Fatal(err)
		}
		if got := Current(p); got != td.want {
			t.Errorf("%q: want %s, got %s", td.content, td.want, got)
		}
	}
}

func sysctl(args ...string) testlog.Key {
	return testlog.CmdKey(append([]string{"systemctl", "--system"}, args...))
}

func fakeSystemctl(m testlog.CmdMap, ok bool, args ...string) {
	m[sysctl(args...)] = testlog.HijackerData{
		Result: testlog.Result{Success: ok},
		NoRun:  true,
	}
}

func allServiceCmds(m testlog.CmdMap, target Kind) {
	fakeSystemctl(m, true, "enable", "-q", target.Unit())
	fakeSystemctl(m, true, "start", "-q", target.Unit())
	fakeSystemctl(m, true, "disable", "-q", target.other().Unit())
	fakeSystemctl(m, true, "stop", "-q", target.other().Unit())
	fakeSystemctl(m, true, "restart", "-q", "NetworkManager.service")
}

//func Configure(confDir string, k Kind) (bool, error)
func TestConfigureFresh(t *testing.T) {
	tlog := testlog.NewTestLog(t, true, false)
	defer tlog.Freeze()
	m := make(testlog.CmdMap)
	allServiceCmds(m, Iwd)
	tlog.UseMappedCmdHijacker(m)

	dir := t.TempDir()
	changed, err := Configure(dir, Iwd)
	if err != nil {
		t.Fatal(err)
	}
	if !changed {
		t.Errorf("fresh config reported unchanged")
	}
	got, err := os.ReadFile(fp.Join(dir, ConfName))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "[device]\nwifi.backend=iwd\n" {
		t.Errorf("stanza = %q", got)
	}
	for _, k := range []testlog.Key{
		sysctl("enable", "-q", "iwd.service"),
		sysctl("start", "-q", "iwd.service"),
		sysctl("disable", "-q", "wpa_supplicant.service"),
		sysctl("stop", "-q", "wpa_supplicant.service"),
		sysctl("restart", "-q", "NetworkManager.service"),
	} {
		if m[k].RunCount != 1 {
			t.Errorf("%s: run %d times, want 1", k, m[k].RunCount)
		}
	}
}

func TestConfigureNoOp(t *testing.T) {
	tlog := testlog.NewTestLog(t, true, false)
	defer tlog.Freeze()
	m := make(testlog.CmdMap)
	allServiceCmds(m, Supplicant)
	tlog.UseMappedCmdHijacker(m)

	dir := t.TempDir()
	if err := os.WriteFile(fp.Join(dir, ConfName), Stanza(Supplicant), 0644); err != nil {
		t.Fatal(err)
	}
	changed, err := Configure(dir, Supplicant)
	if err != nil {
		t.Fatal(err)
	}
	if changed {
		t.Errorf("no-op reported as change")
	}
	for k, d := range m {
		if d.RunCount != 0 {
			t.Errorf("%s invoked on a no-op run", k)
		}
	}
	//no backups either
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.Contains(e.Name(), ".bak.") {
			t.Errorf("backup created on no-op: %s", e.Name())
		}
	}
}

func TestConfigureSwitch(t *testing.T) {
	tlog := testlog.NewTestLog(t, true, false)
	defer tlog.Freeze()
	m := make(testlog.CmdMap)
	allServiceCmds(m, Supplicant)
	tlog.UseMappedCmdHijacker(m)

	dir := t.TempDir()
	if err := os.WriteFile(fp.Join(dir, ConfName), Stanza(Iwd), 0644); err != nil {
		t.Fatal(err)
	}
	changed, err := Configure(dir, Supplicant)
	if err != nil {
		t.Fatal(err)
	}
	if !changed {
		t.Errorf("switch reported unchanged")
	}
	got, _ := os.ReadFile(fp.Join(dir, ConfName))
	if string(got) != "[device]\nwifi.backend=wpa_supplicant\n" {
		t.Errorf("stanza = %q", got)
	}
	var backups int
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.Contains(e.Name(), ".bak.") {
			backups++
		}
	}
	if backups != 1 {
		t.Errorf("want one backup of the old stanza, got %d", backups)
	}
}
