// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package help provides help subcommand.
package help

import (
	"flag"
	"fmt"

	"github.com/maruel/subcommands"
)

// Cmd returns the Command for the `help` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "help [<command>]",
		ShortDesc: "prints help about a command",
		LongDesc:  "Prints commands and global flags or help about a specific command.",
		CommandRun: func() subcommands.CommandRun {
			return &helpCmdRun{}
		},
	}
}

type helpCmdRun struct {
	subcommands.CommandRunBase
}

func (h *helpCmdRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	if len(args) == 0 {
		subcommands.Usage(a.GetOut(), a, true)
		fmt.Fprintln(a.GetOut(), "Global flags (before <command>):")
		flag.CommandLine.SetOutput(a.GetOut())
		flag.PrintDefaults()
		return 0
	}
	return subcommands.CmdHelp.CommandRun().Run(a, args, env)
}
