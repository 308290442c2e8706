// Copyright (C) 2021-2026 the bcm43602-mbp-linux Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Installer for BCM43602 firmware and NVRAM calibration data on MacBook
// Pro hardware. Safe to rerun; a second run with nothing to do changes
// nothing.
package main

import (
	"flag"
	"os"

	"github.com/nilz90/bcm43602-mbp-linux/pkg/backend"
	"github.com/nilz90/bcm43602-mbp-linux/pkg/log"
	"github.com/nilz90/bcm43602-mbp-linux/pkg/log/flags"
	"github.com/nilz90/bcm43602-mbp-linux/pkg/provision"
)

var buildId string

func main() {
	var (
		offline    = flag.Bool("offline", false, "never invoke the package manager; fail if the vendored firmware is missing")
		reload     = flag.Bool("reload", false, "reload the kernel module and services instead of recommending a restart")
		skipRegdom = flag.Bool("skip-regdomain", false, "do not set the wireless regulatory domain")
		country    = flag.String("country", provision.DefaultCountry, "regulatory domain country code")
		mode       = flag.String("backend", "auto", "wifi backend: auto, iwd, or wpa_supplicant")
		iface      = flag.String("iface", "", "wireless interface to calibrate (default: first detected)")
		fwDir      = flag.String("fw-dir", provision.DefaultFirmwareDir, "system firmware directory")
		vendorDir  = flag.String("vendor-dir", "firmware", "directory holding the vendored blob and NVRAM template")
		logfile    = flag.String("logfile", "", "also log to this file; a directory gets a timestamped file inside it")
	)
	flag.Parse()

	log.SetPrefix("bcm43602-install.")
	log.AddConsoleLog(flags.NA)
	if *logfile != "" {
		var name string
		var err error
		if fi, serr := os.Stat(*logfile); serr == nil && fi.IsDir() {
			name, err = log.AddFileLog(*logfile)
		} else {
			name, err = log.AddNamedFileLog(*logfile)
		}
		if err != nil {
			log.Fatalf("opening %s: %s", *logfile, err)
		}
		log.Logf("logging to %s", name)
	}
	log.FlushMemLog()
	if buildId != "" {
		log.Logf("build: %s", buildId)
	}

	if os.Geteuid() != 0 {
		log.Fatalf("must run as root: firmware and config paths are not writable otherwise")
	}
	m, err := backend.ParseMode(*mode)
	if err != nil {
		log.Fatalf("%s", err)
	}

	err = provision.Run(provision.Opts{
		Offline:     *offline,
		Reload:      *reload,
		SkipRegdom:  *skipRegdom,
		Country:     *country,
		Mode:        m,
		Iface:       *iface,
		FirmwareDir: *fwDir,
		VendorDir:   *vendorDir,
	})
	if err != nil {
		log.Fatalf("%s", err)
	}
	log.Finalize()
}
