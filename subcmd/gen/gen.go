// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package gen is gen subcommand to generate a .PHONY rule.
package gen

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"

	"go.chromium.org/infra/build/phoniphy/toolsupport/makeutil"
)

const usage = `generate .PHONY rule

Prints a .PHONY rule for targets annotated with #[phoniphy].
Prints nothing if there is no annotated target.

 $ phoniphy gen [-C <dir>] [<makefile>]
`

// Cmd returns the Command for the `gen` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "gen [-C <dir>] [<makefile>]",
		ShortDesc: "generate .PHONY rule",
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

	dir string
}

func (c *run) init() {
	c.Flags.StringVar(&c.dir, "C", ".", "directory to find makefile")
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

func (c *run) run(ctx context.Context, w io.Writer, args []string) error {
	fname := "Makefile"
	switch len(args) {
	case 0:
	case 1:
		fname = args[0]
	default:
		return fmt.Errorf("too many makefiles %q: %w", args, flag.ErrHelp)
	}
	m, err := makeutil.OpenFile(ctx, c.dir, fname)
	if err != nil {
		return err
	}
	rule := makeutil.PhonyRule(m.Targets)
	if rule == "" {
		return nil
	}
	_, err = fmt.Fprintln(w, rule)
	return err
}
