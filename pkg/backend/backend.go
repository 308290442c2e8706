// Copyright (C) 2021-2026 the bcm43602-mbp-linux Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Package backend decides between the two mutually exclusive Wi-Fi backends
// NetworkManager can delegate to - iwd and wpa_supplicant - and writes the
// one config stanza reflecting the decision.
package backend

import (
	"fmt"
	fp "path/filepath"
	"strings"

	"github.com/nilz90/bcm43602-mbp-linux/pkg/fileutil"
	"github.com/nilz90/bcm43602-mbp-linux/pkg/install"
	"github.com/nilz90/bcm43602-mbp-linux/pkg/log"
	"github.com/nilz90/bcm43602-mbp-linux/pkg/systemd/status"
)

type Kind int

const (
	Unknown Kind = iota
	Iwd
	Supplicant
)

func (k Kind) String() string {
	switch k {
	case Iwd:
		return "iwd"
	case Supplicant:
		return "wpa_supplicant"
	}
	return "unknown"
}

// Unit returns the systemd unit implementing the backend.
func (k Kind) Unit() string {
	if k == Iwd {
		return "iwd.service"
	}
	return "wpa_supplicant.service"
}

// other returns the backend we must shut off.
func (k Kind) other() Kind {
	if k == Iwd {
		return Supplicant
	}
	return Iwd
}

type Mode int

const (
	Auto Mode = iota
	ForceIwd
	ForceSupplicant
)

// ParseMode translates the -backend flag value.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "auto", "automatic", "":
		return Auto, nil
	case "iwd":
		return ForceIwd, nil
	case "wpa_supplicant", "supplicant", "wpa":
		return ForceSupplicant, nil
	}
	return Auto, fmt.Errorf("unknown backend mode %q (want auto, iwd, or wpa_supplicant)", s)
}

// IwdState is the live iwd unit state captured by the capability probe.
type IwdState struct {
	Present bool
	Active  bool
	Enabled bool
}

// Decide picks the backend. Auto prefers iwd when its unit exists and is
// either running now or enabled for future boots; absent that,
// wpa_supplicant. Forced modes ignore live state.
func Decide(mode Mode, iwd IwdState) Kind {
	switch mode {
	case ForceIwd:
		return Iwd
	case ForceSupplicant:
		return Supplicant
	}
	if iwd.Present && (iwd.Active || iwd.Enabled) {
		return Iwd
	}
	return Supplicant
}

const (
	ConfName = "wifi_backend.conf"
	nmUnit   = "NetworkManager.service"
	confKey  = "wifi.backend"
)

// Stanza renders the NetworkManager config naming the chosen backend.
func Stanza(k Kind) []byte {
	return []byte("[device]\n" + confKey + "=" + k.String() + "\n")
}

// Current reads which backend an existing stanza names, or Unknown.
func Current(confPath string) Kind {
	lines, err := fileutil.ReadConfigLines(confPath, 50)
	if err != nil {
		return Unknown
	}
	for _, l := range lines {
		key, val, found := strings.Cut(l, "=")
		if !found || strings.TrimSpace(key) != confKey {
			continue
		}
		switch strings.TrimSpace(val) {
		case "iwd":
			return Iwd
		case "wpa_supplicant":
			return Supplicant
		}
	}
	return Unknown
}

// Configure writes the stanza for k under confDir (compare, backup, atomic
// swap - same mechanism as any other install) and flips services when the
// decision changed: enable+start the chosen backend, disable+stop the
// other, restart NetworkManager to pick up the stanza. A failed restart is
// reported but non-fatal - the written config takes effect on the next
// manager start regardless.
func Configure(confDir string, k Kind) (changed bool, err error) {
	confPath := fp.Join(confDir, ConfName)
	prior := Current(confPath)

	cand := fp.Join(confDir, "."+ConfName+".new")
	if err := fileutil.WriteReplace(cand, Stanza(k), 0644); err != nil {
		return false, fmt.Errorf("writing backend candidate: %w", err)
	}
	outcome, _, err := install.Install(cand, confPath)
	if err != nil {
		return false, err
	}
	if prior == k && outcome == install.Unchanged {
		log.Logf("backend already %s, nothing to do", k)
		return false, nil
	}

	if err := status.Enable(k.Unit()); err != nil {
		log.Logf("%s", err)
	}
	if err := status.Start(k.Unit()); err != nil {
		log.Logf("%s", err)
	}
	if err := status.Disable(k.other().Unit()); err != nil {
		log.Logf("%s", err)
	}
	if err := status.Stop(k.other().Unit()); err != nil {
		log.Logf("%s", err)
	}
	if err := status.Restart(nmUnit); err != nil {
		log.Msgf("NetworkManager restart failed; config is in place and applies on its next start")
	}
	return true, nil
}
