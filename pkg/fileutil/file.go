// Copyright (C) 2021-2026 the bcm43602-mbp-linux Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Package fileutil implements the file primitives the installer's safety
// guarantees rest on: streaming byte comparison, write-to-temp-then-rename
// replacement, and timestamped backups whose names sort chronologically.
package fileutil

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	fp "path/filepath"
	"strings"
	"time"

	"github.com/nilz90/bcm43602-mbp-linux/pkg/log"
)

var (
	xzId = [6]byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00} // fd 37 7a 58 5a 00 -> xz archive
)

//return n bytes from beginning of file
func ReadHeader(fname string, n int64) (head []byte, err error) {
	f, err := os.Open(fname)
	if err != nil {
		return
	}
	defer f.Close()
	head, err = io.ReadAll(io.LimitReader(f, n))
	if int64(len(head)) < n {
		return nil, io.ErrUnexpectedEOF
	}
	return
}

//checks for XZ header
func IsXZ(fname string) bool {
	head, err := ReadHeader(fname, int64(len(xzId)))
	if err != nil {
		log.Logf("failed to read head bytes from %s: %s", fname, err)
		return false
	}
	return bytes.Equal(head, xzId[:])
}

// SameContent compares two files byte-for-byte, streaming so large firmware
// blobs don't land in memory. A missing file is not an error - it simply
// compares unequal to any existing file.
func SameContent(a, b string) (same bool, err error) {
	fa, err := os.Open(a)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return
	}
	defer fa.Close()
	fb, err := os.Open(b)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return
	}
	defer fb.Close()
	var bufa, bufb [32 * 1024]byte
	for {
		na, erra := io.ReadFull(fa, bufa[:])
		nb, errb := io.ReadFull(fb, bufb[:])
		if na != nb || !bytes.Equal(bufa[:na], bufb[:nb]) {
			return false, nil
		}
		if erra == io.EOF || erra == io.ErrUnexpectedEOF {
			if errb == io.EOF || errb == io.ErrUnexpectedEOF {
				return true, nil
			}
			return false, nil
		}
		if erra != nil {
			return false, erra
		}
		if errb != nil {
			return false, errb
		}
	}
}

// WriteReplace writes data to a temp file in dest's directory, then renames
// it over dest. An observer sees either the old content or the new, never a
// partial write.
func WriteReplace(dest string, data []byte, mode os.FileMode) error {
	tmp, err := os.CreateTemp(fp.Dir(dest), "."+fp.Base(dest)+".tmp")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err = tmp.Write(data); err == nil {
		err = tmp.Chmod(mode)
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

// CopyReplace copies src over dest with WriteReplace's atomicity guarantee.
func CopyReplace(src, dest string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	tmp, err := os.CreateTemp(fp.Dir(dest), "."+fp.Base(dest)+".tmp")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err = io.Copy(tmp, in); err == nil {
		err = tmp.Chmod(mode)
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

// Stamp format for backup names. Lexical order matches chronological order,
// and nanosecond precision keeps repeated runs within a second from
// colliding.
const BackupStampLayout = "20060102-150405.000000000"

// BackupPath returns the sibling path a backup of dest goes to.
func BackupPath(dest string, now time.Time) string {
	return fmt.Sprintf("%s.bak.%s", dest, now.Format(BackupStampLayout))
}

// ReadConfigLines reads a config file at the given path. Whitespace is
// stripped, as are comments (anything between # and \n). Individual lines
// are returned, up to maxLines.
func ReadConfigLines(path string, maxLines int) ([]string, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()
	var lines []string
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		l := strings.TrimSpace(scanner.Text())
		if strings.Contains(l, "#") {
			l = strings.TrimSpace(strings.SplitN(l, "#", 2)[0])
		}
		if len(l) == 0 {
			continue
		}
		lines = append(lines, l)
		if len(lines) == maxLines {
			log.Logf("ReadConfigLines: max lines (%d) read from %s", maxLines, path)
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
