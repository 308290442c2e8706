// Copyright (C) 2021-2026 the bcm43602-mbp-linux Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Package log is a small stackable logging mechanism in which one or more
// sinks (console, file, memory) can be layered. By default events are
// retained in memory so they can be replayed into sinks added later on.
package log

import (
	"github.com/nilz90/bcm43602-mbp-linux/pkg/log/flags"
)

var logPrefix string

// Sets the log prefix, used in the file sink's name. Must be set before
// calling AddFileLog().
func SetPrefix(pfx string) { logPrefix = pfx }

// Gets the log prefix.
func GetPrefix() string { return logPrefix }

// Msgf is for messages suitable for display to the user: short,
// non-technical, infrequent.
func Msgf(f string, va ...interface{}) { FlaggedLogf(flags.EndUser, f, va...) }

// See Msgf
func Msg(message string) { Msgf(message) }

// Logf is for technical or trivial messages.
func Logf(f string, va ...interface{}) { FlaggedLogf(flags.NA, f, va...) }

// See Logf
func Log(message string) { Logf(message) }
