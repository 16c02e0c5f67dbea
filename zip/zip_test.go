// Copyright 2021, The fconvert Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package zip

import (
	stdzip "archive/zip"
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/fconvert/compress/internal/testutil"
)

func testFiles() []File {
	return []File{{
		Name:    "docs/readme.txt",
		Data:    testutil.RandText(1<<14, 0),
		Method:  MethodDeflate,
		ModTime: time.Date(2021, 5, 4, 12, 30, 14, 0, time.UTC),
	}, {
		Name:   "data/random.bin",
		Data:   testutil.NewRand(1).Bytes(1 << 12),
		Method: MethodStored,
	}, {
		Name:   "empty",
		Method: MethodDeflate,
	}, {
		Name:    "data/repeats.bin",
		Data:    testutil.RandRepeats(1<<14, 2),
		Method:  MethodDeflate,
		ModTime: time.Date(1999, 12, 31, 23, 59, 58, 0, time.UTC),
	}}
}

func TestRoundTrip(t *testing.T) {
	want := testFiles()
	data, err := Archive(want, 6)
	if err != nil {
		t.Fatalf("unexpected Archive error: %v", err)
	}
	if !IsFormat(data) {
		t.Errorf("IsFormat rejected own output")
	}

	got, err := Extract(data)
	if err != nil {
		t.Fatalf("unexpected Extract error: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("file list mismatch (-want +got):\n%s", diff)
	}
}

func TestEmptyArchive(t *testing.T) {
	data, err := Archive(nil, 6)
	if err != nil {
		t.Fatalf("unexpected Archive error: %v", err)
	}
	if len(data) != lenEndOfDir {
		t.Errorf("output size mismatch: got %d, want %d", len(data), lenEndOfDir)
	}
	if !IsFormat(data) {
		t.Errorf("IsFormat rejected own output")
	}
	files, err := Extract(data)
	if err != nil {
		t.Errorf("unexpected Extract error: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("file count mismatch: got %d, want 0", len(files))
	}
}

// TestCompatExtract verifies that archives produced by another writer, which
// emits dynamically coded DEFLATE entries, extract correctly.
func TestCompatExtract(t *testing.T) {
	want := testFiles()

	var buf bytes.Buffer
	zw := stdzip.NewWriter(&buf)
	for _, f := range want {
		hdr := &stdzip.FileHeader{Name: f.Name, Method: f.Method}
		hdr.Modified = f.ModTime
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			t.Fatalf("unexpected CreateHeader error: %v", err)
		}
		if _, err := w.Write(f.Data); err != nil {
			t.Fatalf("unexpected Write error: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("unexpected Close error: %v", err)
	}

	got, err := Extract(buf.Bytes())
	if err != nil {
		t.Fatalf("unexpected Extract error: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("file count mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Name != want[i].Name {
			t.Errorf("file %d, name mismatch: got %q, want %q", i, got[i].Name, want[i].Name)
		}
		if !bytes.Equal(got[i].Data, want[i].Data) {
			t.Errorf("file %d, data mismatch", i)
		}
	}
}

// TestCompatArchive verifies that another reader accepts our archives.
func TestCompatArchive(t *testing.T) {
	want := testFiles()
	data, err := Archive(want, 9)
	if err != nil {
		t.Fatalf("unexpected Archive error: %v", err)
	}

	zr, err := stdzip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("unexpected NewReader error: %v", err)
	}
	if len(zr.File) != len(want) {
		t.Fatalf("file count mismatch: got %d, want %d", len(zr.File), len(want))
	}
	for i, f := range zr.File {
		if f.Name != want[i].Name {
			t.Errorf("file %d, name mismatch: got %q, want %q", i, f.Name, want[i].Name)
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("file %d, unexpected Open error: %v", i, err)
		}
		got, err := io.ReadAll(rc)
		if cerr := rc.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			t.Errorf("file %d, unexpected read error: %v", i, err)
		}
		if !bytes.Equal(got, want[i].Data) {
			t.Errorf("file %d, data mismatch", i)
		}
	}
}

func TestCorrupt(t *testing.T) {
	valid, err := Archive(testFiles()[:1], 6)
	if err != nil {
		t.Fatalf("unexpected Archive error: %v", err)
	}
	mangle := func(f func(b []byte)) []byte {
		b := append([]byte(nil), valid...)
		f(b)
		return b
	}

	vectors := []struct {
		desc  string
		input []byte
		err   error
	}{{
		desc: "empty input",
		err:  ErrUnexpectedEnd,
	}, {
		desc:  "no end of central directory",
		input: bytes.Repeat([]byte{0x7a}, 64),
		err:   ErrInvalidFormat,
	}, {
		desc:  "bad local header signature",
		input: mangle(func(b []byte) { b[0] = 0x7a }),
		err:   ErrInvalidFormat,
	}, {
		desc:  "flipped entry data bit",
		input: mangle(func(b []byte) { b[lenLocalFile+len("docs/readme.txt")+10] ^= 0x01 }),
	}, {
		desc:  "directory entry count overruns input",
		input: mangle(func(b []byte) { b[len(b)-12] = 5 }),
		err:   ErrUnexpectedEnd,
	}}

	for i, v := range vectors {
		_, err := Extract(v.input)
		if v.desc == "flipped entry data bit" {
			// Any corruption classification is acceptable here; the flip may
			// break the DEFLATE stream itself or just the checksum.
			if err == nil {
				t.Errorf("test %d, %s, expected an error", i, v.desc)
			}
			continue
		}
		if err != v.err {
			t.Errorf("test %d, %s, error mismatch: got %v, want %v", i, v.desc, err, v.err)
		}
	}
}
