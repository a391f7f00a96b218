// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package gen

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"
)

func TestRun(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "Makefile"), []byte(`#[phoniphy]
start dev: dev-env
	./run.sh
out/app: main.go
#[phoniphy]
clean:
`), 0644)
	if err != nil {
		t.Fatal(err)
	}
	err = os.WriteFile(filepath.Join(dir, "plain.mk"), []byte("out/app: main.go\n"), 0644)
	if err != nil {
		t.Fatal(err)
	}

	for _, tc := range []struct {
		args []string
		want string
	}{
		{
			want: ".PHONY: start dev clean\n",
		},
		{
			args: []string{"plain.mk"},
			want: "",
		},
	} {
		c := &run{dir: dir}
		var buf bytes.Buffer
		err := c.run(ctx, &buf, tc.args)
		if err != nil {
			t.Fatalf("run(ctx, w, %q)=%v; want nil err", tc.args, err)
		}
		if got := buf.String(); got != tc.want {
			t.Errorf("run(ctx, w, %q) output=%q; want %q", tc.args, got, tc.want)
		}
	}
}

func TestRun_TooManyArgs(t *testing.T) {
	c := &run{dir: t.TempDir()}
	err := c.run(context.Background(), &bytes.Buffer{}, []string{"a.mk", "b.mk"})
	if !errors.Is(err, flag.ErrHelp) {
		t.Errorf("run(ctx, w, two files)=%v; want %v", err, flag.ErrHelp)
	}
}
