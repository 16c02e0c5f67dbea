// Copyright 2021, The fconvert Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bench

import "testing"

func TestLoadCorpus(t *testing.T) {
	for _, corpus := range Corpora {
		b, err := LoadCorpus(corpus, 1e4)
		if err != nil {
			t.Errorf("corpus %s, unexpected error: %v", corpus, err)
		}
		if len(b) != 1e4 {
			t.Errorf("corpus %s, size mismatch: got %d, want %d", corpus, len(b), int(1e4))
		}
	}
	if _, err := LoadCorpus("missing", 1e4); err == nil {
		t.Errorf("unknown corpus, expected an error")
	}
}

func TestGetName(t *testing.T) {
	vectors := []struct {
		f    string
		l, n int
		name string
	}{
		{"text", 6, 1e4, "text:6:1e4"},
		{"text", 9, 1e6, "text:9:1e6"},
		{"repeats", 1, 1e8, "repeats:1:1e8"},
	}
	for i, v := range vectors {
		if name := getName(v.f, v.l, v.n); name != v.name {
			t.Errorf("test %d, name mismatch: got %s, want %s", i, name, v.name)
		}
	}
}
