// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package targets

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"go.chromium.org/infra/build/phoniphy/toolsupport/makeutil"
)

func setupDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		fname := filepath.Join(dir, name)
		err := os.MkdirAll(filepath.Dir(fname), 0755)
		if err != nil {
			t.Fatal(err)
		}
		err = os.WriteFile(fname, []byte(content), 0644)
		if err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	dir := setupDir(t, map[string]string{
		"Makefile": `#[phoniphy]
start dev: dev-env
	./run.sh

#[phoniphy]
clean:
	rm -rf out
`,
		"tools/Makefile": `all: tool
`,
	})

	for _, tc := range []struct {
		name   string
		format string
		args   []string
		want   string
	}{
		{
			name:   "default",
			format: "text",
			want:   "start\ndev\nclean\n",
		},
		{
			name:   "multi",
			format: "text",
			args:   []string{"Makefile", "tools/Makefile"},
			want: filepath.Join(dir, "Makefile") + ": start dev clean\n" +
				filepath.Join(dir, "tools", "Makefile") + ": \n",
		},
		{
			name:   "json",
			format: "json",
			args:   []string{"tools/Makefile"},
			want: `[
  {
    "path": "` + filepath.ToSlash(filepath.Join(dir, "tools", "Makefile")) + `",
    "targets": []
  }
]
`,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c := &run{dir: dir, format: tc.format}
			var buf bytes.Buffer
			err := c.run(ctx, &buf, tc.args)
			if err != nil {
				t.Fatalf("run(ctx, w, %q)=%v; want nil err", tc.args, err)
			}
			if diff := cmp.Diff(tc.want, buf.String()); diff != "" {
				t.Errorf("run(ctx, w, %q) -want +got:\n%s", tc.args, diff)
			}
		})
	}
}

func TestRun_Errors(t *testing.T) {
	ctx := context.Background()
	dir := setupDir(t, nil)

	c := &run{dir: dir, format: "yaml"}
	err := c.run(ctx, &bytes.Buffer{}, nil)
	if !errors.Is(err, flag.ErrHelp) {
		t.Errorf("run with -format=yaml: %v; want %v", err, flag.ErrHelp)
	}

	c = &run{dir: dir, format: "text"}
	err = c.run(ctx, &bytes.Buffer{}, []string{"Makefile"})
	if !errors.Is(err, makeutil.ErrOpeningFile) {
		t.Errorf("run with missing Makefile: %v; want %v", err, makeutil.ErrOpeningFile)
	}
}
