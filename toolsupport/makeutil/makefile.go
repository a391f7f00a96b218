// Copyright 2023 The Chromium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package makeutil provides utilities for make.
package makeutil

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.chromium.org/infra/build/phoniphy/o11y/clog"
)

var (
	// ErrOpeningFile is returned when a Makefile can't be opened.
	ErrOpeningFile = errors.New("opening file")

	// ErrParsingTargets is returned when a Makefile can't be read.
	ErrParsingTargets = errors.New("parsing targets")
)

// Makefile is a Makefile scanned for phony targets.
type Makefile struct {
	// Path is the path of the Makefile.
	Path string

	// Targets are the phony targets in the order of appearance.
	Targets []string

	// Declared are the targets listed in `.PHONY` rules.
	Declared []string
}

// Open opens the Makefile at fname on fsys and reads its phony targets.
func Open(ctx context.Context, fsys fs.FS, fname string) (*Makefile, error) {
	f, err := fsys.Open(fname)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrOpeningFile, fname, err)
	}
	defer f.Close()
	buf, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrParsingTargets, fname, err)
	}
	ctx = clog.NewSpan(ctx, map[string]string{"makefile": fname})
	targets, err := ReadTargets(ctx, bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fname, err)
	}
	declared, err := DeclaredPhony(ctx, bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fname, err)
	}
	return &Makefile{
		Path:     fname,
		Targets:  targets,
		Declared: declared,
	}, nil
}

// OpenFile opens the Makefile fname on the local disk.
// A relative fname is resolved from dir.
func OpenFile(ctx context.Context, dir, fname string) (*Makefile, error) {
	if !filepath.IsAbs(fname) {
		fname = filepath.Join(dir, fname)
	}
	m, err := Open(ctx, os.DirFS(filepath.Dir(fname)), filepath.Base(fname))
	if err != nil {
		return nil, err
	}
	m.Path = fname
	return m, nil
}

// Undeclared returns the phony targets not listed in any `.PHONY` rule.
func (m *Makefile) Undeclared() []string {
	declared := make(map[string]bool, len(m.Declared))
	for _, t := range m.Declared {
		declared[t] = true
	}
	var targets []string
	for _, t := range m.Targets {
		if !declared[t] {
			targets = append(targets, t)
		}
	}
	return targets
}

// ReadTargets reads the targets annotated with `#[phoniphy]` from r.
//
// The annotation applies to the next rule line. Blank and comment lines
// between them are ignored. A recipe line or a variable assignment
// cancels the annotation.
func ReadTargets(ctx context.Context, r io.Reader) ([]string, error) {
	var targets []string
	seen := make(map[string]bool)
	armed := false
	armedAt := 0
	err := scanLines(r, func(lineno int, line string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if IsPhoniphyMacro(line) {
			if armed {
				clog.Warningf(ctx, "line %d: annotation at line %d has no target", lineno, armedAt)
			}
			armed = true
			armedAt = lineno
			return nil
		}
		if !armed {
			return nil
		}
		kind := classify(line)
		switch kind {
		case lineBlank, lineComment:
			return nil
		case lineRule:
			ts, ok := TargetsFromLine(line)
			if !ok {
				break
			}
			clog.Debugf(ctx, "line %d: phony %q", lineno, ts)
			for _, t := range ts {
				if seen[t] {
					continue
				}
				seen[t] = true
				targets = append(targets, t)
			}
			armed = false
			return nil
		}
		clog.Warningf(ctx, "line %d: annotation at line %d followed by %s line", lineno, armedAt, kind)
		armed = false
		return nil
	})
	if err != nil {
		return nil, err
	}
	if armed {
		clog.Warningf(ctx, "annotation at line %d has no target", armedAt)
	}
	return targets, nil
}

// DeclaredPhony returns the targets declared as prerequisites of
// `.PHONY` rules in r.
func DeclaredPhony(ctx context.Context, r io.Reader) ([]string, error) {
	var targets []string
	err := scanLines(r, func(lineno int, line string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if classify(line) != lineRule {
			return nil
		}
		lhs, rhs, _ := strings.Cut(line, ":")
		if strings.TrimSpace(lhs) != ".PHONY" {
			return nil
		}
		// strip trailing comment
		rhs, _, _ = strings.Cut(rhs, "#")
		targets = append(targets, SplitTargets(rhs)...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return targets, nil
}

// scanLines calls fn for each logical line of r.
// Lines ending with '\' are joined with the next line by a space.
// lineno is the line number where the logical line starts.
func scanLines(r io.Reader, fn func(lineno int, line string) error) error {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var sb strings.Builder
	lineno := 0
	start := 0
	for s.Scan() {
		lineno++
		line := strings.TrimSuffix(s.Text(), "\r")
		if sb.Len() == 0 {
			start = lineno
		}
		if cont, ok := strings.CutSuffix(line, `\`); ok {
			sb.WriteString(cont)
			sb.WriteByte(' ')
			continue
		}
		sb.WriteString(line)
		err := fn(start, sb.String())
		sb.Reset()
		if err != nil {
			return err
		}
	}
	if err := s.Err(); err != nil {
		return fmt.Errorf("%w: line %d: %w", ErrParsingTargets, lineno+1, err)
	}
	if sb.Len() > 0 {
		return fn(start, sb.String())
	}
	return nil
}
