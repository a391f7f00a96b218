// Copyright 2023 The Chromium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package makeutil

import (
	"regexp"
	"strings"
)

var (
	phoniphyMacroRE = regexp.MustCompile(`^\s*#\s*\[phoniphy\]`)
	targetRE        = regexp.MustCompile(`\S+`)
)

// IsPhoniphyMacro reports whether line is a `#[phoniphy]` annotation.
// Blanks are allowed around '#' and after the annotation.
func IsPhoniphyMacro(line string) bool {
	return phoniphyMacroRE.MatchString(line)
}

// TargetsFromLine returns targets defined in a rule line, i.e.
// the targets before the first ':'.
// It returns false if line has no ':' or no target before it.
func TargetsFromLine(line string) ([]string, bool) {
	lhs, _, ok := strings.Cut(line, ":")
	if !ok {
		return nil, false
	}
	targets := SplitTargets(lhs)
	if len(targets) == 0 {
		return nil, false
	}
	return targets, true
}

// SplitTargets splits s by whitespaces.
// Pattern targets (containing '%') are dropped.
func SplitTargets(s string) []string {
	var targets []string
	for _, t := range targetRE.FindAllString(s, -1) {
		if strings.Contains(t, "%") {
			continue
		}
		targets = append(targets, t)
	}
	return targets
}

// PhonyRule returns a .PHONY rule declaring targets.
func PhonyRule(targets []string) string {
	if len(targets) == 0 {
		return ""
	}
	return ".PHONY: " + strings.Join(targets, " ")
}

// lineKind is a classification of a logical Makefile line.
type lineKind int

const (
	lineBlank lineKind = iota
	lineComment
	lineRecipe
	lineAssign
	lineRule
	lineOther
)

func (k lineKind) String() string {
	switch k {
	case lineBlank:
		return "blank"
	case lineComment:
		return "comment"
	case lineRecipe:
		return "recipe"
	case lineAssign:
		return "assign"
	case lineRule:
		return "rule"
	}
	return "other"
}

// classify classifies a logical line.
// It doesn't expand variables, so `$(x): y` is a rule line.
func classify(line string) lineKind {
	s := strings.TrimSpace(line)
	switch {
	case s == "":
		return lineBlank
	case strings.HasPrefix(line, "\t"):
		return lineRecipe
	case strings.HasPrefix(s, "#"):
		return lineComment
	}
	colon := strings.IndexByte(s, ':')
	eq := strings.IndexByte(s, '=')
	if eq >= 0 && (colon < 0 || eq < colon) {
		// VAR = x, VAR ?= x, VAR += x, VAR != x
		return lineAssign
	}
	if colon < 0 {
		return lineOther
	}
	// VAR := x, VAR ::= x, VAR :::= x
	if rest := strings.TrimLeft(s[colon:], ":"); strings.HasPrefix(rest, "=") {
		return lineAssign
	}
	return lineRule
}
