// Copyright (C) 2021-2026 the bcm43602-mbp-linux Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Package pkgmgr detects which of a closed set of package managers is
// present and installs distro firmware packages through it.
package pkgmgr

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/google/shlex"

	"github.com/nilz90/bcm43602-mbp-linux/pkg/log"
)

// Env var overriding the install command line, e.g.
// "apt-get install -y --reinstall". Parsed with shlex, so quoting works as
// in a shell.
const InstallCmdEnv = "BCM43602_INSTALL_CMD"

// A detected package manager and the argv prefix that installs packages
// non-interactively through it.
type Manager struct {
	Name    string
	install []string
}

// The closed set of supported managers, in detection order. Firmware maps
// the distro family's name for the Broadcom firmware package.
var known = []Manager{
	{Name: "apt-get", install: []string{"apt-get", "install", "-y"}},
	{Name: "dnf", install: []string{"dnf", "install", "-y"}},
	{Name: "yum", install: []string{"yum", "install", "-y"}},
	{Name: "zypper", install: []string{"zypper", "--non-interactive", "install"}},
	{Name: "pacman", install: []string{"pacman", "-S", "--noconfirm"}},
}

// FirmwarePackages returns the distro packages expected to carry brcmfmac
// firmware for the given manager.
func FirmwarePackages(name string) []string {
	switch name {
	case "apt-get":
		return []string{"firmware-brcm80211"}
	default:
		return []string{"linux-firmware"}
	}
}

// Detect returns the first known manager found in PATH, or nil. A nil
// result is not an error - a later step decides whether the gap matters.
func Detect() *Manager {
	if cmdline := os.Getenv(InstallCmdEnv); cmdline != "" {
		args, err := shlex.Split(cmdline)
		if err != nil || len(args) == 0 {
			log.Logf("ignoring unparseable %s=%q: %s", InstallCmdEnv, cmdline, err)
		} else {
			return &Manager{Name: args[0], install: args}
		}
	}
	for _, m := range known {
		if _, err := exec.LookPath(m.Name); err == nil {
			mgr := m
			return &mgr
		}
	}
	return nil
}

// Install installs the named packages. Output goes through log.Cmd.
func (m *Manager) Install(pkgs ...string) error {
	if m == nil {
		return fmt.Errorf("no supported package manager found")
	}
	args := append(append([]string{}, m.install...), pkgs...)
	cmd := exec.Command(args[0])
	cmd.Args = args
	if _, success := log.Cmd(cmd); !success {
		return fmt.Errorf("%s failed to install %v", m.Name, pkgs)
	}
	return nil
}
