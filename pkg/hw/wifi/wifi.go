// Copyright (C) 2021-2026 the bcm43602-mbp-linux Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Package wifi detects wireless interfaces and reads/manipulates their
// state: hardware address, admin up/down, regulatory domain.
package wifi

import (
	"fmt"
	"net"
	"os"
	"os/exec"
	fp "path/filepath"
	"regexp"
	"strings"

	"github.com/vishvananda/netlink"

	"github.com/nilz90/bcm43602-mbp-linux/pkg/log"
)

//overridden in tests
var sysClassNet = "/sys/class/net"

type Wifi struct {
	device string
	mac    net.HardwareAddr
}

func (w Wifi) String() string        { return w.device }
func (w Wifi) Name() string          { return w.device }
func (w Wifi) Mac() net.HardwareAddr { return w.mac }

// List returns all wireless interfaces. An interface is wireless if its
// /sys/class/net entry has a phy80211 link - the convention the mac80211
// stack (brcmfmac included) follows.
func List() (wifis []Wifi) {
	contents, err := os.ReadDir(sysClassNet)
	if err != nil {
		log.Logf("err reading dir %s: %s", sysClassNet, err)
		return nil
	}
	for _, f := range contents {
		name := f.Name()
		if _, err := os.Stat(fp.Join(sysClassNet, name, "phy80211")); err != nil {
			continue
		}
		w := Wifi{device: name}
		if i, err := net.InterfaceByName(name); err == nil {
			w.mac = i.HardwareAddr
		}
		wifis = append(wifis, w)
	}
	return
}

// Live hardware addresses must be six lowercase hex octets, colon-separated.
// Anything else means a non-functional or virtual interface was selected,
// and writing it would silently produce a broken calibration file.
var macPattern = regexp.MustCompile(`^[0-9a-f]{2}(:[0-9a-f]{2}){5}$`)

func ValidMac(mac string) bool { return macPattern.MatchString(mac) }

// LiveMac reads the current hardware address of the named interface via
// netlink and validates it.
func LiveMac(device string) (string, error) {
	link, err := netlink.LinkByName(device)
	if err != nil {
		return "", fmt.Errorf("interface %s: %w", device, err)
	}
	mac := strings.ToLower(link.Attrs().HardwareAddr.String())
	if !ValidMac(mac) {
		return "", fmt.Errorf("interface %s has unusable hardware address %q", device, mac)
	}
	return mac, nil
}

// LinkDown brings the named interface administratively down.
func LinkDown(device string) error {
	link, err := netlink.LinkByName(device)
	if err != nil {
		return fmt.Errorf("interface %s: %w", device, err)
	}
	return netlink.LinkSetDown(link)
}

// SetRegDomain sets the wireless regulatory domain to the given country
// code. Best-effort; the caller treats failure as non-fatal.
func SetRegDomain(cc string) bool {
	_, success := log.Cmd(exec.Command("iw", "reg", "set", cc))
	return success
}

// Interfaces returns `iw dev` output for diagnostics.
func Interfaces() string {
	out, _ := log.Cmd(exec.Command("iw", "dev"))
	return out
}
