// Copyright (C) 2021-2026 the bcm43602-mbp-linux Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package log

import (
	"os"
	"strings"

	"github.com/nilz90/bcm43602-mbp-linux/pkg/log/flags"
)

// Called after a fatal event has been logged, to exit the process.
type FatalFunc func()

// Like FatalFunc, but runs before Finalize() - i.e. while the log is still
// writable.
type PreFunc func(f string, va ...interface{})

// Actions taken when log.Fatalf() is called. The event itself is logged
// automatically.
type FailAction struct {
	// Prefix to add to the message.
	MsgPfx string
	// Runs before Finalize(), while the log is still writable.
	Pre PreFunc
	// Exits the process. Logs are no longer writable at this point.
	Terminator FatalFunc
}

var fatalAction = DefaultFatal

// Sets up actions to take when a fatal event is logged; see FailAction.
func SetFatalAction(act FailAction) { fatalAction = act }

// Default fatal action is to call os.Exit(1).
var DefaultFatal = FailAction{Terminator: DefaultFatalAction}

func DefaultFatalAction() {
	if strings.HasSuffix(os.Args[0], "test") {
		panic("generic fatal called from test")
	}
	os.Exit(1)
}

// Like Msgf or Logf, but does not return - the process is terminated.
// Behavior modified by SetFatalAction().
func Fatalf(f string, va ...interface{}) {
	if logStack.Next() == nil && logStack.Ident() == MemLogIdent {
		//save some headscratching if no sink is configured for the process
		AddConsoleLog(0)
		Log("Fatalf: logging unconfigured")
	}
	FlaggedLogf(flags.Fatal, fatalAction.MsgPfx+f, va...)
	if fatalAction.Pre != nil {
		fatalAction.Pre(fatalAction.MsgPfx+f, va...)
	}
	Finalize()
	fatalAction.Terminator()
}
