// Copyright (C) 2021-2026 the bcm43602-mbp-linux Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Package kmod unloads/reloads kernel modules and reads driver-related
// kernel log lines for diagnostics. All execs go through log.Cmd.
package kmod

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/nilz90/bcm43602-mbp-linux/pkg/log"
)

// Unload removes the named modules, dependents first. Order matters:
// brcmfmac must go before brcmutil.
func Unload(modules ...string) error {
	args := append([]string{"modprobe", "-r"}, modules...)
	cmd := exec.Command(args[0])
	cmd.Args = args
	if _, success := log.Cmd(cmd); !success {
		return fmt.Errorf("unloading %v failed", modules)
	}
	return nil
}

// Load inserts the named module.
func Load(module string) error {
	if _, success := log.Cmd(exec.Command("modprobe", module)); !success {
		return fmt.Errorf("loading %s failed", module)
	}
	return nil
}

// Reload unloads then reloads. The driver re-reads firmware and NVRAM on
// load, which is the whole point.
func Reload(module string, deps ...string) error {
	if err := Unload(append([]string{module}, deps...)...); err != nil {
		return err
	}
	return Load(module)
}

// DriverMessages returns recent kernel log lines mentioning the driver.
// Diagnostic only; empty on any failure.
func DriverMessages(driver string) (lines []string) {
	out, success := log.Cmd(exec.Command("dmesg"))
	if !success {
		return nil
	}
	for _, l := range strings.Split(out, "\n") {
		if strings.Contains(l, driver) {
			lines = append(lines, l)
		}
	}
	const max = 30
	if len(lines) > max {
		lines = lines[len(lines)-max:]
	}
	return
}
