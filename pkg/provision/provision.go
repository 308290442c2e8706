// Copyright (C) 2021-2026 the bcm43602-mbp-linux Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Package provision implements the provisioning procedure as an ordered
// pipeline of named steps. Each step returns a tagged result; the driver
// decides whether to continue or abort. The whole run holds one lock, and
// every mutating step is idempotent - rerun, not rollback, is the recovery
// mechanism.
package provision

import (
	"fmt"

	"github.com/nilz90/bcm43602-mbp-linux/pkg/backend"
	"github.com/nilz90/bcm43602-mbp-linux/pkg/hw/wifi"
	"github.com/nilz90/bcm43602-mbp-linux/pkg/kmod"
	"github.com/nilz90/bcm43602-mbp-linux/pkg/lockfile"
	"github.com/nilz90/bcm43602-mbp-linux/pkg/log"
	"github.com/nilz90/bcm43602-mbp-linux/pkg/pkgmgr"
)

// Fixed names for the BCM43602 on MacBook Pro hardware.
const (
	Blob      = "brcmfmac43602-pcie.bin"
	Nvram     = "brcmfmac43602-pcie.txt"
	Module    = "brcmfmac"
	ModuleDep = "brcmutil"

	DefaultFirmwareDir = "/lib/firmware/brcm"
	DefaultConfDir     = "/etc/NetworkManager/conf.d"
	DefaultLockPath    = "/run/lock/bcm43602-install.lock"
	DefaultCountry     = "US"
)

// Opts carries the invocation flags plus path overrides (the latter exist
// for tests; production runs use the defaults).
type Opts struct {
	Offline     bool //never invoke the package manager
	Reload      bool //reload module + services instead of recommending a restart
	SkipRegdom  bool
	Country     string
	Mode        backend.Mode
	Iface       string //explicit interface, used when detection finds nothing
	FirmwareDir string
	VendorDir   string //dir holding vendored blob + NVRAM template
	ConfDir     string
	LockPath    string
}

// Defaults fills zero-valued paths.
func (o Opts) Defaults() Opts {
	if o.FirmwareDir == "" {
		o.FirmwareDir = DefaultFirmwareDir
	}
	if o.VendorDir == "" {
		o.VendorDir = "firmware"
	}
	if o.ConfDir == "" {
		o.ConfDir = DefaultConfDir
	}
	if o.LockPath == "" {
		o.LockPath = DefaultLockPath
	}
	if o.Country == "" {
		o.Country = DefaultCountry
	}
	return o
}

// Snapshot of live system state, captured once by the probe and threaded
// through the later steps so their decisions are a function of explicit
// inputs.
type Snapshot struct {
	Mgr   *pkgmgr.Manager //nil if no supported manager found
	Iface string
	Mac   string
	Iwd   backend.IwdState
}

// Result tags a step outcome for the driver.
type Result int

const (
	Done Result = iota
	NoOp
	SoftFail //logged, run continues, final recommendation adjusts
	Fatal    //abort the run
)

type Step struct {
	Name string
	Run  func(ctx *Context) (Result, error)
}

// Context is the pipeline's mutable state.
type Context struct {
	Opts
	Snap     Snapshot
	Backend  backend.Kind
	reloaded bool
	soft     []string
}

// Run executes the whole procedure: lock, probe, regulatory domain,
// firmware staging, NVRAM install, backend config, activation. The lock is
// released on every exit path.
func Run(opts Opts) error {
	opts = opts.Defaults()
	lk, err := lockfile.Acquire(opts.LockPath)
	if err != nil {
		return err
	}
	defer lk.Release()

	ctx := &Context{Opts: opts}
	for _, s := range steps {
		res, err := s.Run(ctx)
		switch res {
		case Fatal:
			return fmt.Errorf("%s: %w", s.Name, err)
		case SoftFail:
			ctx.soft = append(ctx.soft, s.Name)
			log.Logf("%s: continuing despite: %s", s.Name, err)
		case NoOp:
			log.Logf("%s: nothing to do", s.Name)
		}
	}

	diagnostics()
	if ctx.reloaded && len(ctx.soft) == 0 {
		log.Msg("Done. The wireless stack was reloaded; Wi-Fi should be available now.")
	} else {
		log.Msg("Done. Restart the machine to make sure all changes take effect.")
	}
	return nil
}

var steps = []Step{
	{Name: "probe", Run: probeStep},
	{Name: "regulatory domain", Run: regdomStep},
	{Name: "firmware", Run: firmwareStep},
	{Name: "nvram", Run: nvramStep},
	{Name: "backend", Run: backendStep},
	{Name: "activation", Run: activationStep},
}

func regdomStep(ctx *Context) (Result, error) {
	if ctx.SkipRegdom {
		return NoOp, nil
	}
	if !wifi.SetRegDomain(ctx.Country) {
		return SoftFail, fmt.Errorf("setting regulatory domain %s failed", ctx.Country)
	}
	log.Logf("regulatory domain set to %s", ctx.Country)
	return Done, nil
}

// Read-only closing dump: recent driver messages and the interface list.
func diagnostics() {
	for _, l := range kmod.DriverMessages(Module) {
		log.Logf("dmesg: %s", l)
	}
	if out := wifi.Interfaces(); out != "" {
		log.Logf("interfaces:\n%s", out)
	}
}
