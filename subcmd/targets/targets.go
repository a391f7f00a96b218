// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package targets is targets subcommand to list phony targets.
package targets

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/maruel/subcommands"
	"golang.org/x/sync/errgroup"

	"go.chromium.org/luci/common/cli"
	"go.chromium.org/luci/common/system/signals"

	"go.chromium.org/infra/build/phoniphy/o11y/clog"
	"go.chromium.org/infra/build/phoniphy/toolsupport/makeutil"
)

const usage = `list phony targets

Prints targets annotated with #[phoniphy] in the Makefiles.

 $ phoniphy targets [-C <dir>] [-format text|json] [<makefile>...]

<makefile> defaults to Makefile.
With several makefiles, text output prints
"<makefile>: <target>..." per makefile.
`

// Cmd returns the Command for the `targets` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "targets [-C <dir>] [<makefile>...]",
		ShortDesc: "list phony targets",
		LongDesc:  usage,
		CommandRun: func() subcommands.CommandRun {
			c := &run{}
			c.init()
			return c
		},
	}
}

type run struct {
	subcommands.CommandRunBase

	dir    string
	format string
}

func (c *run) init() {
	c.Flags.StringVar(&c.dir, "C", ".", "directory to find makefiles")
	c.Flags.StringVar(&c.format, "format", "text", `output format. "text" or "json"`)
}

func (c *run) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, c, env)
	err := c.run(ctx, a.GetOut(), args)
	if err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp):
			fmt.Fprintf(os.Stderr, "%v\n%s\n", err, usage)
			return 2
		default:
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

type result struct {
	Path    string   `json:"path"`
	Targets []string `json:"targets"`
}

func (c *run) run(ctx context.Context, w io.Writer, args []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer signals.HandleInterrupt(cancel)()

	switch c.format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown format %q: %w", c.format, flag.ErrHelp)
	}
	if len(args) == 0 {
		args = []string{"Makefile"}
	}
	results := make([]result, len(args))
	eg, ctx := errgroup.WithContext(ctx)
	for i, fname := range args {
		eg.Go(func() error {
			m, err := makeutil.OpenFile(ctx, c.dir, fname)
			if err != nil {
				return err
			}
			clog.Debugf(ctx, "%s: %d phony targets", m.Path, len(m.Targets))
			results[i] = result{
				Path:    m.Path,
				Targets: m.Targets,
			}
			if results[i].Targets == nil {
				results[i].Targets = []string{}
			}
			return nil
		})
	}
	err := eg.Wait()
	if err != nil {
		return err
	}

	switch c.format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	if len(results) == 1 {
		for _, t := range results[0].Targets {
			fmt.Fprintln(w, t)
		}
		return nil
	}
	for _, r := range results {
		fmt.Fprintf(w, "%s: %s\n", r.Path, strings.Join(r.Targets, " "))
	}
	return nil
}
