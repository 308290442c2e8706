// Copyright (C) 2021-2026 the bcm43602-mbp-linux Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Provisions firmware and NVRAM calibration data for the Broadcom BCM43602
// (brcmfmac) wireless chipset found in MacBook Pro models, and nudges the
// wireless stack - kernel module, NetworkManager, iwd/wpa_supplicant - into
// a working state.
//
// The provisioning procedure itself lives in pkg/provision; the other
// subpackages implement its collaborators. cmd/bcm43602-install is the
// installer binary.
//
// Use `mage` to build and test.
package bcm43602
