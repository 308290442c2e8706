// Copyright (C) 2021-2026 the bcm43602-mbp-linux Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package install

import (
	"os"
	fp "path/filepath"
	"strings"
	"testing"

	"github.com/nilz90/bcm43602-mbp-linux/pkg/log/testlog"
)

func backups(t *testing.T, dir, base string) (found []string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), base+".bak.") {
			found = append(found, e.Name())
		}
	}
	return
}

//func Install(candidate, dest string) (Outcome, string, error)
func TestInstallBackupBeforeOverwrite(t *testing.T) {
	tlog := testlog.NewTestLog(t, true, false)
	defer tlog.Freeze()
	dir := t.TempDir()
	dest := fp.Join(dir, "conf.txt")
	cand := fp.Join(dir, ".conf.txt.new")
	if err := os.WriteFile(dest, []byte("X"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cand, []byte("Y"), 0644); err != nil {
		t.Fatal(err)
	}
	outcome, backup, err := Install(cand, dest)
	if err != nil {
		t.Fatal(err)
	}
	if outcome != Installed {
		t.Errorf("want Installed, got %s", outcome)
	}
	got, _ := os.ReadFile(dest)
	if string(got) != "Y" {
		t.Errorf("dest = %q, want Y", got)
	}
	bk := backups(t, dir, "conf.txt")
	if len(bk) != 1 {
		t.Fatalf("want exactly one backup, got %v", bk)
	}
	old, _ := os.ReadFile(fp.Join(dir, bk[0]))
	if string(old) != "X" {
		t.Errorf("backup = %q, want X", old)
	}
	if backup != fp.Join(dir, bk[0]) {
		t.Errorf("reported backup %s, found %s", backup, bk[0])
	}
	if _, err := os.Stat(cand); !os.IsNotExist(err) {
		t.Errorf("candidate still present")
	}
}

func TestInstallNoOpOnIdenticalContent(t *testing.T) {
	tlog := testlog.NewTestLog(t, true, false)
	defer tlog.Freeze()
	dir := t.TempDir()
	dest := fp.Join(dir, "conf.txt")
	cand := fp.Join(dir, ".conf.txt.new")
	if err := os.WriteFile(dest, []byte("X"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cand, []byte("X"), 0644); err != nil {
		t.Fatal(err)
	}
	outcome, backup, err := Install(cand, dest)
	if err != nil {
		t.Fatal(err)
	}
	if outcome != Unchanged || backup != "" {
		t.Errorf("want Unchanged and no backup, got %s %q", outcome, backup)
	}
	got, _ := os.ReadFile(dest)
	if string(got) != "X" {
		t.Errorf("dest = %q, want X", got)
	}
	if bk := backups(t, dir, "conf.txt"); len(bk) != 0 {
		t.Errorf("unexpected backups %v", bk)
	}
	if _, err := os.Stat(cand); !os.IsNotExist(err) {
		t.Errorf("candidate not discarded")
	}
}

func TestInstallFreshDest(t *testing.T) {
	tlog := testlog.NewTestLog(t, true, false)
	defer tlog.Freeze()
	dir := t.TempDir()
	dest := fp.Join(dir, "conf.txt")
	cand := fp.Join(dir, ".conf.txt.new")
	if err := os.WriteFile(cand, []byte("Y"), 0644); err != nil {
		t.Fatal(err)
	}
	outcome, backup, err := Install(cand, dest)
	if err != nil {
		t.Fatal(err)
	}
	if outcome != Installed || backup != "" {
		t.Errorf("want Installed and no backup, got %s %q", outcome, backup)
	}
	if bk := backups(t, dir, "conf.txt"); len(bk) != 0 {
		t.Errorf("backup created with no prior dest: %v", bk)
	}
}

func TestInstallIdempotent(t *testing.T) {
	tlog := testlog.NewTestLog(t, true, false)
	defer tlog.Freeze()
	dir := t.TempDir()
	dest := fp.Join(dir, "conf.txt")
	for i := 0; i < 3; i++ {
		cand := fp.Join(dir, ".conf.txt.new")
		if err := os.WriteFile(cand, []byte("same"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, _, err := Install(cand, dest); err != nil {
			t.Fatal(err)
		}
	}
	if bk := backups(t, dir, "conf.txt"); len(bk) != 0 {
		t.Errorf("repeated identical installs made backups: %v", bk)
	}
}
