// Copyright (C) 2021-2026 the bcm43602-mbp-linux Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package nvram

import (
	"bytes"
	"os"
	fp "path/filepath"
	"strings"
	"testing"
)

//func Substitute(template []byte, mac string) ([]byte, error)
func TestSubstitute(t *testing.T) {
	for i, td := range []struct {
		in   string
		mac  string
		want string
	}{
		{
			in:   "sromrev=11\nmacaddr=00:00:00:00:00:00\nccode=X2\n",
			mac:  "aa:bb:cc:dd:ee:ff",
			want: "sromrev=11\nmacaddr=aa:bb:cc:dd:ee:ff\nccode=X2\n",
		},
		{
			//DOS line endings must be stripped
			in:   "sromrev=11\r\nMACADDR=00:90:4c:0d:f4:3e\r\n",
			mac:  "aa:bb:cc:dd:ee:ff",
			want: "sromrev=11\nmacaddr=aa:bb:cc:dd:ee:ff\n",
		},
		{
			//no macaddr line - append one
			in:   "sromrev=11\n",
			mac:  "aa:bb:cc:dd:ee:ff",
			want: "sromrev=11\nmacaddr=aa:bb:cc:dd:ee:ff\n",
		},
		{
			//duplicates collapse to one
			in:   "macaddr=11:11:11:11:11:11\nboardrev=0x1203\nMacAddr=22:22:22:22:22:22\n",
			mac:  "aa:bb:cc:dd:ee:ff",
			want: "macaddr=aa:bb:cc:dd:ee:ff\nboardrev=0x1203\n",
		},
	} {
		got, err := Substitute([]byte(td.in), td.mac)
		if err != nil {
			t.Errorf("%d: %s", i, err)
			continue
		}
		if string(got) != td.want {
			t.Errorf("%d: want %q, got %q", i, td.want, got)
		}
		n := 0
		for _, l := range strings.Split(string(got), "\n") {
			if strings.HasPrefix(strings.ToLower(l), "macaddr=") {
				n++
			}
		}
		if n != 1 {
			t.Errorf("%d: want exactly one macaddr line, got %d", i, n)
		}
	}
}

func TestSubstituteDeterministic(t *testing.T) {
	in := []byte("sromrev=11\r\nmacaddr=00:00:00:00:00:00\r\n")
	a, err := Substitute(in, "aa:bb:cc:dd:ee:ff")
	if err != nil {
		t.Fatal(err)
	}
	b, err := Substitute(in, "aa:bb:cc:dd:ee:ff")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Errorf("output differs across runs:\n%q\n%q", a, b)
	}
}

func TestSubstituteRejectsBadMac(t *testing.T) {
	for _, mac := range []string{
		"not-a-mac",
		"AA:BB:CC:DD:EE:FF", //uppercase
		"aa:bb:cc:dd:ee",
		"aa-bb-cc-dd-ee-ff",
		"",
	} {
		if _, err := Substitute([]byte("macaddr=0\n"), mac); err == nil {
			t.Errorf("%q: expected rejection", mac)
		}
	}
}

//func Materialize(template, candidate, mac string) error
func TestMaterializeBadMacWritesNothing(t *testing.T) {
	dir := t.TempDir()
	template := fp.Join(dir, "tmpl.txt")
	candidate := fp.Join(dir, "cand.txt")
	if err := os.WriteFile(template, []byte("macaddr=00:00:00:00:00:00\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := Materialize(template, candidate, "not-a-mac"); err == nil {
		t.Fatal("expected error")
	}
	if _, err := os.Stat(candidate); !os.IsNotExist(err) {
		t.Errorf("candidate written despite invalid mac")
	}
}

func TestMaterialize(t *testing.T) {
	dir := t.TempDir()
	template := fp.Join(dir, "tmpl.txt")
	candidate := fp.Join(dir, "cand.txt")
	if err := os.WriteFile(template, []byte("macaddr=00:00:00:00:00:00\r\nccode=X2\r\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := Materialize(template, candidate, "aa:bb:cc:dd:ee:ff"); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(candidate)
	if err != nil {
		t.Fatal(err)
	}
	want := "macaddr=aa:bb:cc:dd:ee:ff\nccode=X2\n"
	if string(got) != want {
		t.Errorf("want %q, got %q", want, got)
	}
	//source untouched
	src, _ := os.ReadFile(template)
	if !bytes.Contains(src, []byte("00:00:00:00:00:00")) {
		t.Errorf("template mutated")
	}
}
