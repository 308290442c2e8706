// Copyright (C) 2021-2026 the bcm43602-mbp-linux Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package provision

import (
	"fmt"
	fp "path/filepath"

	"github.com/nilz90/bcm43602-mbp-linux/pkg/backend"
	"github.com/nilz90/bcm43602-mbp-linux/pkg/hw/wifi"
	"github.com/nilz90/bcm43602-mbp-linux/pkg/install"
	"github.com/nilz90/bcm43602-mbp-linux/pkg/kmod"
	"github.com/nilz90/bcm43602-mbp-linux/pkg/log"
	"github.com/nilz90/bcm43602-mbp-linux/pkg/nvram"
	"github.com/nilz90/bcm43602-mbp-linux/pkg/pkgmgr"
	"github.com/nilz90/bcm43602-mbp-linux/pkg/stage"
	"github.com/nilz90/bcm43602-mbp-linux/pkg/systemd/status"
)

// Hookable like log.Cmd, as netlink and /sys aren't fakeable from tests.
var (
	listWifis = wifi.List
	liveMac   = wifi.LiveMac
	linkDown  = wifi.LinkDown
)

// probeStep captures live system state into the snapshot. Read-only.
// Detection gaps degrade to empty values, except the interface: without one
// there is nothing to calibrate, so its absence is fatal and names the flag
// that resolves it.
func probeStep(ctx *Context) (Result, error) {
	if !status.IsSystemd() {
		log.Logf("init does not appear to be systemd; service management may fail")
	}
	ctx.Snap.Mgr = pkgmgr.Detect()
	if ctx.Snap.Mgr == nil {
		log.Logf("no supported package manager found; online install unavailable")
	} else {
		log.Logf("package manager: %s", ctx.Snap.Mgr.Name)
	}

	ctx.Snap.Iface = ctx.Iface
	if ctx.Snap.Iface == "" {
		if wifis := listWifis(); len(wifis) > 0 {
			ctx.Snap.Iface = wifis[0].Name()
		}
	}
	if ctx.Snap.Iface == "" {
		return Fatal, fmt.Errorf("no wireless interface detected; pass one with -iface")
	}
	mac, err := liveMac(ctx.Snap.Iface)
	if err != nil {
		return Fatal, err
	}
	ctx.Snap.Mac = mac
	log.Msgf("Using interface %s (%s)", ctx.Snap.Iface, ctx.Snap.Mac)

	ctx.Snap.Iwd = backend.IwdState{
		Present: status.UnitExists(backend.Iwd.Unit()),
	}
	if ctx.Snap.Iwd.Present {
		ctx.Snap.Iwd.Active = status.IsActive(backend.Iwd.Unit())
		ctx.Snap.Iwd.Enabled = status.IsEnabled(backend.Iwd.Unit())
	}
	return Done, nil
}

func firmwareStep(ctx *Context) (Result, error) {
	err := stage.Stage(stage.Source{
		SystemDir: ctx.FirmwareDir,
		Blob:      Blob,
		VendorDir: ctx.VendorDir,
		Offline:   ctx.Offline,
		Mgr:       ctx.Snap.Mgr,
	})
	if err != nil {
		return Fatal, err
	}
	return Done, nil
}

// nvramStep materializes the calibration candidate with the live MAC and
// swaps it in if it differs from what's installed.
func nvramStep(ctx *Context) (Result, error) {
	template := fp.Join(ctx.VendorDir, Nvram)
	dest := fp.Join(ctx.FirmwareDir, Nvram)
	candidate := fp.Join(ctx.FirmwareDir, "."+Nvram+".new")
	if err := nvram.Materialize(template, candidate, ctx.Snap.Mac); err != nil {
		return Fatal, err
	}
	outcome, _, err := install.Install(candidate, dest)
	if err != nil {
		return Fatal, err
	}
	if outcome == install.Unchanged {
		return NoOp, nil
	}
	log.Msgf("NVRAM calibration installed at %s", dest)
	return Done, nil
}

func backendStep(ctx *Context) (Result, error) {
	ctx.Backend = backend.Decide(ctx.Mode, ctx.Snap.Iwd)
	log.Msgf("Wi-Fi backend: %s", ctx.Backend)
	changed, err := backend.Configure(ctx.ConfDir, ctx.Backend)
	if err != nil {
		return Fatal, err
	}
	if !changed {
		return NoOp, nil
	}
	return Done, nil
}

// activationStep reloads the module and dependent services when requested.
// Without -reload it mutates nothing; the driver's closing message then
// recommends a restart.
func activationStep(ctx *Context) (Result, error) {
	if !ctx.Reload {
		return NoOp, nil
	}
	for _, svc := range []string{"NetworkManager.service", backend.Iwd.Unit(), backend.Supplicant.Unit()} {
		if err := status.Stop(svc); err != nil {
			log.Logf("%s", err)
		}
	}
	if err := linkDown(ctx.Snap.Iface); err != nil {
		log.Logf("bringing %s down: %s", ctx.Snap.Iface, err)
	}
	reloadErr := kmod.Reload(Module, ModuleDep)
	//services come back up even if the reload failed - the machine must not
	//be left without network management until the operator reboots
	if err := status.Start(ctx.Backend.Unit()); err != nil {
		log.Logf("%s", err)
	}
	if err := status.Start("NetworkManager.service"); err != nil {
		log.Logf("%s", err)
	}
	if reloadErr != nil {
		return SoftFail, reloadErr
	}
	ctx.reloaded = true
	return Done, nil
}
