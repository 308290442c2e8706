// Copyright (C) 2021-2026 the bcm43602-mbp-linux Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Package nvram turns the vendored NVRAM calibration template into an
// installable candidate file: line endings normalized, the device's live
// hardware address injected. The template and the installed file are never
// touched in place.
package nvram

import (
	"fmt"
	"os"
	"strings"

	"github.com/nilz90/bcm43602-mbp-linux/pkg/fileutil"
	"github.com/nilz90/bcm43602-mbp-linux/pkg/hw/wifi"
)

const macKey = "macaddr"

// Materialize reads the template, substitutes mac, and writes the result to
// candidate. Output is byte-identical across runs given the same inputs.
func Materialize(template, candidate, mac string) error {
	data, err := os.ReadFile(template)
	if err != nil {
		return fmt.Errorf("reading NVRAM template: %w", err)
	}
	out, err := Substitute(data, mac)
	if err != nil {
		return err
	}
	return fileutil.WriteReplace(candidate, out, 0644)
}

// Substitute normalizes line endings and replaces the value of the first
// macaddr= line (case-insensitive key). Later duplicates are dropped so
// exactly one such line survives; if the template has none, one is
// appended. An address not matching the strict lowercase-hex-colon pattern
// is rejected before anything is written.
func Substitute(template []byte, mac string) ([]byte, error) {
	if !wifi.ValidMac(mac) {
		return nil, fmt.Errorf("refusing to write invalid hardware address %q", mac)
	}
	lines := strings.Split(string(template), "\n")
	//vendor templates ship with DOS line endings
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, "\r")
	}
	//drop trailing blank line so the append path can't produce doubles
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	var out []string
	replaced := false
	for _, l := range lines {
		key, _, found := strings.Cut(l, "=")
		if found && strings.EqualFold(strings.TrimSpace(key), macKey) {
			if replaced {
				continue
			}
			out = append(out, macKey+"="+mac)
			replaced = true
			continue
		}
		out = append(out, l)
	}
	if !replaced {
		out = append(out, macKey+"="+mac)
	}
	return []byte(strings.Join(out, "\n") + "\n"), nil
}
