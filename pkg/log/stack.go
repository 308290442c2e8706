// Copyright (C) 2021-2026 the bcm43602-mbp-linux Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package log

import (
	"fmt"
	"sync"
	"time"

	"github.com/nilz90/bcm43602-mbp-linux/pkg/log/flags"
)

// A logger which can be chained with others, each adding a different sink -
// console, file, or just memory. Normal logging goes through the non-member
// functions in this package (Logf, Msgf, Fatalf); callers do not interact
// with the stack directly.
type StackableLogger interface {
	// Add an entry to the log. Must call the same method on the next logger
	// in the stack, if not nil.
	AddEntry(e Entry)
	// Chain another logger below this one. It is an error to call this on a
	// logger which already forwards elsewhere.
	ForwardTo(StackableLogger)
	// Identifies the logger type, to reject duplicates in the stack.
	Ident() string
	// Next logger in the stack, or nil.
	Next() StackableLogger
	// Flush/close any resources. Must call the same method on the next
	// logger in the stack, if not nil.
	Finalize()
}

// Entry is the record type passed down the stack.
type Entry struct {
	Time  time.Time
	Msg   string
	Args  []interface{}
	Flags flags.Flag
}

func (e *Entry) String() string {
	var div string
	switch {
	case e.Flags&flags.EndUser != 0:
		div = "-- "
	case e.Flags&flags.Fatal != 0:
		div = "!! "
	case e.Flags == 0:
		div = "*- "
	default:
		div = "?? "
	}
	f := div + e.Time.Format(TimestampLayout) + " " + div + e.Msg
	return fmt.Sprintf(f, e.Args...)
}

// Topmost logger. Any access must hold stackMtx.
var logStack StackableLogger = &memLog{}
var stackMtx sync.Mutex

// Flushes data, closes files, etc.
func Finalize() {
	stackMtx.Lock()
	defer stackMtx.Unlock()
	logStack.Finalize()
}

// Restores the stack to its initial state: finalizes existing loggers, then
// replaces them with a bare memLog.
func DefaultLogStack() { NewLogStack(&memLog{}) }

// Finalizes existing loggers, then sets newLog as the topmost (and only)
// logger.
func NewLogStack(newLog StackableLogger) {
	stackMtx.Lock()
	defer stackMtx.Unlock()
	if logStack != nil {
		logStack.Finalize()
	}
	logStack = newLog
}

// Push a logger onto the stack. If replay is true, events already captured
// by a memLog are inserted into the new logger first. Returns an error if a
// logger with the same Ident is already present.
func AddLogger(sl StackableLogger, replay bool) error {
	stackMtx.Lock()
	defer stackMtx.Unlock()
	for l := logStack; l != nil; l = l.Next() {
		if l.Ident() == sl.Ident() {
			return fmt.Errorf("duplicate logger %s in stack", sl.Ident())
		}
	}
	if replay {
		if ml, ok := findLocked(MemLogIdent).(*memLog); ok {
			for _, e := range ml.Entries() {
				sl.AddEntry(e)
			}
		}
	}
	sl.ForwardTo(logStack)
	logStack = sl
	return nil
}

// Remove the logger with the given id from the stack, if present.
func RemoveLogger(id string) {
	stackMtx.Lock()
	defer stackMtx.Unlock()
	var prev StackableLogger
	for l := logStack; l != nil; l = l.Next() {
		next := l.Next()
		if l.Ident() == id {
			l.ForwardTo(nil)
			l.Finalize()
			if prev != nil {
				prev.ForwardTo(next)
			} else {
				logStack = next
			}
			return
		}
		prev = l
	}
}

// Backend of Logf, Msgf, Fatalf. Translates args into an Entry and inserts
// it at the top of the stack.
func FlaggedLogf(opts flags.Flag, f string, va ...interface{}) {
	stackMtx.Lock()
	defer stackMtx.Unlock()
	logStack.AddEntry(Entry{
		Time:  time.Now(),
		Flags: opts,
		Msg:   f,
		Args:  va,
	})
}

// Return true if a logger in the stack matches the given id.
func InStack(id string) bool {
	stackMtx.Lock()
	defer stackMtx.Unlock()
	return findLocked(id) != nil
}

// Return the StackableLogger matching id, or nil.
func FindInStack(id string) StackableLogger {
	stackMtx.Lock()
	defer stackMtx.Unlock()
	return findLocked(id)
}

func findLocked(id string) StackableLogger {
	for l := logStack; l != nil; l = l.Next() {
		if l.Ident() == id {
			return l
		}
	}
	return nil
}
