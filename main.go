// Copyright 2023 The Chromium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"

	"go.chromium.org/infra/build/phoniphy/o11y/clog"
	"go.chromium.org/infra/build/phoniphy/subcmd/check"
	"go.chromium.org/infra/build/phoniphy/subcmd/gen"
	"go.chromium.org/infra/build/phoniphy/subcmd/help"
	"go.chromium.org/infra/build/phoniphy/subcmd/targets"
	"go.chromium.org/infra/build/phoniphy/subcmd/version"
)

// phoniphy finds phony targets annotated with #[phoniphy] in Makefiles.

const phoniphyVersion = "phoniphy v0.1.0"

var verbose bool

func main() {
	flag.BoolVar(&verbose, "v", false, "enable debug logging")
	flag.Usage = func() {
		out := flag.CommandLine.Output()
		fmt.Fprintf(out, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(out, "global flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	os.Exit(phoniphyMain(flag.Args()))
}

func getApplication() *cli.Application {
	return &cli.Application{
		Name:  "phoniphy",
		Title: "tool to find phony targets in Makefiles",
		Context: func(ctx context.Context) context.Context {
			logger := clog.New(os.Stderr)
			logger.SetVerbose(verbose)
			return clog.NewContext(ctx, logger)
		},
		Commands: []*subcommands.Command{
			targets.Cmd(),
			gen.Cmd(),
			check.Cmd(),
			help.Cmd(),
			version.Cmd(phoniphyVersion),
		},
	}
}

func phoniphyMain(args []string) int {
	// Print a stack trace when a panic occurs.
	defer func() {
		if r := recover(); r != nil {
			const size = 64 << 10
			buf := make([]byte, size)
			buf = buf[:runtime.Stack(buf, false)]
			log.Fatalf("panic: %v\n%s", r, buf)
		}
	}()

	if verbose {
		log.SetLevel(log.DebugLevel)
		buildinfo, ok := debug.ReadBuildInfo()
		if ok {
			log.Debugf("main module: %s %s", moduleInfo(&buildinfo.Main), vcsInfo(buildinfo))
		}
	}
	return subcommands.Run(getApplication(), args)
}

func moduleInfo(m *debug.Module) string {
	if m == nil {
		return "<nil>"
	}
	return fmt.Sprintf("path:%s version:%s sum:%s replace:%s", m.Path, m.Version, m.Sum, moduleInfo(m.Replace))
}

func vcsInfo(buildinfo *debug.BuildInfo) string {
	m := make(map[string]string)
	for _, bs := range buildinfo.Settings {
		if strings.HasPrefix(bs.Key, "vcs.") {
			m[bs.Key] = bs.Value
		}
	}
	return fmt.Sprintf("vcs[revision=%s time=%s modified=%s]", m["vcs.revision"], m["vcs.time"], m["vcs.modified"])
}
