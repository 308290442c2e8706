// Copyright (C) 2021-2026 the bcm43602-mbp-linux Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Package flags holds event flags for the log package, in a separate package
// to avoid an import cycle with log sinks.
package flags

import (
	"fmt"
	"strings"
)

type Flag int

const (
	NA Flag = 0

	//suitable for display to the end user
	EndUser Flag = 1 << (iota - 1)
	//logging a fatal error
	Fatal
	//do not write to the file sink
	NotFile
)

func (f Flag) String() string {
	switch f {
	case NA:
		return ""
	case EndUser:
		return "user"
	case Fatal:
		return "fatal"
	case NotFile:
		return "not file"
	}
	for _, bit := range []Flag{EndUser, Fatal, NotFile} {
		if f&bit > 0 {
			return strings.Join([]string{bit.String(), (f &^ bit).String()}, "|")
		}
	}
	return fmt.Sprintf("0x%x", int(f))
}
