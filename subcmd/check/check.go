// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package check is check subcommand to verify .PHONY rules
// cover the annotated targets.
package check

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"

	"go.chromium.org/infra/build/phoniphy/o11y/clog"
	"go.chromium.org/infra/build/phoniphy/toolsupport/makeutil"
)

const usage = `check .PHONY rules

Checks targets annotated with #[phoniphy] are declared in
.PHONY rules. Exits with 1 if some targets are not declared.

 $ phoniphy check [-C <dir>] [<makefile>]
`

// errUndeclared is returned when some annotated targets are not declared.
var errUndeclared = errors.New("undeclared phony targets")

// Cmd returns the Command for the `check` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "check [-C <dir>] [<makefile>]",
		ShortDesc: "check .PHONY rules cover annotated targets",
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
	undeclared := m.Undeclared()
	if len(undeclared) == 0 {
		clog.Infof(ctx, "%s: %d phony targets declared", m.Path, len(m.Targets))
		return nil
	}
	fmt.Fprintf(w, "%s: missing in .PHONY: %s\n", m.Path, strings.Join(undeclared, " "))
	fmt.Fprintf(w, "add:\n%s\n", makeutil.PhonyRule(undeclared))
	return fmt.Errorf("%s: %w: %q", m.Path, errUndeclared, undeclared)
}
