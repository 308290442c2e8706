// Copyright (C) 2021-2026 the bcm43602-mbp-linux Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Package install swaps a candidate file into place: compare, back up the
// old version, rename. Rerunning with unchanged inputs never touches the
// destination or creates a backup.
package install

import (
	"fmt"
	"os"
	"time"

	"github.com/nilz90/bcm43602-mbp-linux/pkg/fileutil"
	"github.com/nilz90/bcm43602-mbp-linux/pkg/log"
)

type Outcome int

const (
	// Candidate matched the installed file; nothing written.
	Unchanged Outcome = iota
	// Candidate swapped in (previous version backed up first, if any).
	Installed
)

func (o Outcome) String() string {
	if o == Unchanged {
		return "unchanged"
	}
	return "installed"
}

// Install compares candidate against dest byte-for-byte. Identical: the
// candidate is discarded and nothing else happens. Different: the existing
// dest (if any) is copied to a timestamped sibling, then the candidate is
// renamed over dest in a single filesystem operation. The candidate must
// live on the same filesystem as dest for the rename to be atomic - callers
// create it in dest's directory.
//
// Returns the backup path when one was made.
func Install(candidate, dest string) (Outcome, string, error) {
	same, err := fileutil.SameContent(candidate, dest)
	if err != nil {
		return Unchanged, "", fmt.Errorf("comparing %s to %s: %w", candidate, dest, err)
	}
	if same {
		if err := os.Remove(candidate); err != nil {
			log.Logf("discarding identical candidate %s: %s", candidate, err)
		}
		log.Logf("%s already up to date", dest)
		return Unchanged, "", nil
	}
	var backup string
	if fi, err := os.Stat(dest); err == nil {
		backup = fileutil.BackupPath(dest, time.Now())
		if err := fileutil.CopyReplace(dest, backup, fi.Mode().Perm()); err != nil {
			return Unchanged, "", fmt.Errorf("backing up %s: %w", dest, err)
		}
		log.Logf("backed up %s to %s", dest, backup)
	}
	if err := os.Rename(candidate, dest); err != nil {
		return Unchanged, backup, fmt.Errorf("installing %s: %w", dest, err)
	}
	log.Logf("installed %s", dest)
	return Installed, backup, nil
}
