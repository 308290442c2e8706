// Copyright (C) 2021-2026 the bcm43602-mbp-linux Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Package stage guarantees the firmware blob exists at the system path,
// sourcing it from the vendored copy, a compressed system-side copy, or a
// package install - in that preference order. The blob is opaque and never
// modified once staged.
package stage

import (
	"fmt"
	"io"
	"os"
	fp "path/filepath"

	"github.com/ulikunitz/xz"

	"github.com/nilz90/bcm43602-mbp-linux/pkg/fileutil"
	"github.com/nilz90/bcm43602-mbp-linux/pkg/log"
	"github.com/nilz90/bcm43602-mbp-linux/pkg/pkgmgr"
)

// Source describes where the blob may come from.
type Source struct {
	SystemDir string //firmware dir the driver loads from
	Blob      string //blob file name
	VendorDir string //dir holding the vendored copy
	Offline   bool   //never invoke the package manager
	Mgr       *pkgmgr.Manager
}

func (s Source) sysPath() string    { return fp.Join(s.SystemDir, s.Blob) }
func (s Source) vendorPath() string { return fp.Join(s.VendorDir, s.Blob) }
func (s Source) xzPath() string     { return s.sysPath() + ".xz" }

// Stage ensures the blob is present at the system path. Each source is a
// no-op if an earlier one already succeeded; a package install is followed
// by one retry of the local sources.
func Stage(s Source) error {
	if staged, err := s.tryLocal(); staged || err != nil {
		return err
	}
	if s.Offline || s.Mgr == nil {
		return s.missing()
	}
	pkgs := pkgmgr.FirmwarePackages(s.Mgr.Name)
	log.Msgf("Firmware not found locally; installing %v via %s", pkgs, s.Mgr.Name)
	if err := s.Mgr.Install(pkgs...); err != nil {
		log.Logf("%s", err)
	}
	if staged, err := s.tryLocal(); staged || err != nil {
		return err
	}
	return s.missing()
}

// tryLocal attempts the three non-network sources. staged is true if the
// blob is now at the system path.
func (s Source) tryLocal() (staged bool, err error) {
	if _, err := os.Stat(s.sysPath()); err == nil {
		log.Logf("firmware already present at %s", s.sysPath())
		return true, nil
	}
	if _, err := os.Stat(s.vendorPath()); err == nil {
		log.Msgf("Staging vendored firmware %s", s.Blob)
		if err := fileutil.CopyReplace(s.vendorPath(), s.sysPath(), 0644); err != nil {
			return false, fmt.Errorf("staging vendored firmware: %w", err)
		}
		return true, nil
	}
	if _, err := os.Stat(s.xzPath()); err == nil {
		if !fileutil.IsXZ(s.xzPath()) {
			log.Logf("%s exists but lacks xz magic, skipping", s.xzPath())
			return false, nil
		}
		log.Msgf("Decompressing %s", s.xzPath())
		if err := unxz(s.xzPath(), s.sysPath()); err != nil {
			return false, fmt.Errorf("decompressing %s: %w", s.xzPath(), err)
		}
		return true, nil
	}
	return false, nil
}

// unxz decompresses src to dest via a temp file and rename, so a partial
// decompress never lands at the blob path. Native decompression; the blob
// is binary, so piping through an external xz is not worth the trouble.
func unxz(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	rdr, err := xz.NewReader(in)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(fp.Dir(dest), "."+fp.Base(dest)+".tmp")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err = io.Copy(tmp, rdr); err == nil {
		err = tmp.Chmod(0644)
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(name, dest)
	}
	if err != nil {
		os.Remove(name)
	}
	return err
}

func (s Source) missing() error {
	return fmt.Errorf("firmware %s not found; place the vendored blob at %s, or rerun without -offline to install it via the package manager",
		s.Blob, s.vendorPath())
}
