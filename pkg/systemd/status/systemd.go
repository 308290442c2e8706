// Copyright (C) 2021-2026 the bcm43602-mbp-linux Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Package status queries and manipulates service state. Shells out to
// 'systemctl' through log.Cmd, so tests can fake every interaction.
// Defaults to the system service manager; use UserContext() for user
// services.
package status

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/nilz90/bcm43602-mbp-linux/pkg/log"
)

//Methods called on this operate in system context.
func SystemContext() (ctx sysdCtx) {
	return
}

//Methods called on this operate in user context.
func UserContext() (ctx sysdCtx) {
	ctx.user = true
	return
}

//True if systemctl reports the service is active.
func IsActive(service string) bool { return SystemContext().IsActive(service) }
func (ctx sysdCtx) IsActive(service string) bool {
	return ctx.sysctlCmdBool("is-active", service)
}

//True if systemctl reports the service is enabled for boot.
func IsEnabled(service string) bool { return SystemContext().IsEnabled(service) }
func (ctx sysdCtx) IsEnabled(service string) bool {
	return ctx.sysctlCmdBool("is-enabled", service)
}

// True if a unit file for the service exists on the host. `systemctl cat`
// exits non-zero for unknown units (and takes no -q).
func UnitExists(service string) bool { return SystemContext().UnitExists(service) }
func (ctx sysdCtx) UnitExists(service string) bool {
	sysctl := exec.Command("systemctl", ctx.arg(), "cat", service)
	_, success := log.Cmd(sysctl)
	return success
}

//Start a service, returning any error.
func Start(service string) error { return SystemContext().Start(service) }
func (ctx sysdCtx) Start(service string) error {
	return ctx.sysctlCmdErr("start", service)
}

//Stop a service, returning any error.
func Stop(service string) error { return SystemContext().Stop(service) }
func (ctx sysdCtx) Stop(service string) error {
	return ctx.sysctlCmdErr("stop", service)
}

//Restart a service, returning any error.
func Restart(service string) error { return SystemContext().Restart(service) }
func (ctx sysdCtx) Restart(service string) error {
	return ctx.sysctlCmdErr("restart", service)
}

//Enable a service for future boots.
func Enable(service string) error { return SystemContext().Enable(service) }
func (ctx sysdCtx) Enable(service string) error {
	return ctx.sysctlCmdErr("enable", service)
}

//Disable a service for future boots.
func Disable(service string) error { return SystemContext().Disable(service) }
func (ctx sysdCtx) Disable(service string) error {
	return ctx.sysctlCmdErr("disable", service)
}

//overridden in tests
var initCmdline = "/proc/1/cmdline"

//Is the current init system systemd?
func IsSystemd() bool {
	data, err := os.ReadFile(initCmdline)
	if err != nil {
		log.Logf("error determining init system: %s", err)
	}
	return strings.Contains(string(data), "systemd")
}

type sysdCtx struct {
	user bool
}

func (ctx sysdCtx) arg() string {
	if ctx.user {
		return "--user"
	}
	return "--system"
}

func (ctx sysdCtx) sysctlCmdBool(cmd, arg string) bool {
	return ctx.sysctlCmdErr(cmd, arg) == nil
}

func (ctx sysdCtx) sysctlCmdErr(cmd, arg string) error {
	sysctl := exec.Command("systemctl", ctx.arg(), cmd, "-q", arg)
	if _, success := log.Cmd(sysctl); !success {
		return fmt.Errorf("systemctl %s %s failed", cmd, arg)
	}
	return nil
}
