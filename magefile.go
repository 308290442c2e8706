// Copyright (C) 2021-2026 the bcm43602-mbp-linux Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

//go:build mage
// +build mage

package main

import (
	"fmt"
	"time"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Build compiles the installer into bin/.
func Build() error {
	buildId := fmt.Sprintf("%s@%s", gitRev(), time.Now().Format("20060102_1504"))
	return sh.Run("go", "build",
		"-ldflags", "-X main.buildId="+buildId,
		"-o", "bin/bcm43602-install",
		"./cmd/bcm43602-install")
}

// Test runs all unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Vet runs go vet across the module.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// All builds after vetting and testing.
func All() {
	mg.SerialDeps(Vet, Test, Build)
}

func gitRev() string {
	rev, err := sh.Output("git", "rev-parse", "--short", "HEAD")
	if err != nil {
		return "unknown"
	}
	return rev
}
