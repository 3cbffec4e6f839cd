// SPDX-License-Identifier: Apache-2.0
package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"pymon/internal/ast"
)

// ErrorLevel represents the severity of a diagnostic
type ErrorLevel string

const (
	Error   ErrorLevel = "error"
	Warning ErrorLevel = "warning"
	Note    ErrorLevel = "note"
)

// CompilerError is one structured diagnostic with source context
type CompilerError struct {
	Level    ErrorLevel
	Code     string       // Error code like E0201
	Message  string       // Primary error message
	Position ast.Position // Location in source
	Length   int          // Length of the problematic region
	Notes    []string     // Additional context notes
}

// ErrorReporter renders diagnostics against the source they point into
type ErrorReporter struct {
	filename string
	lines    []string
}

// NewErrorReporter creates a reporter for one source file
func NewErrorReporter(filename, source string) *ErrorReporter {
	return &ErrorReporter{
		filename: filename,
		lines:    strings.Split(source, "\n"),
	}
}

// FormatError renders one diagnostic with Rust-like styling:
//
//	error[E0202]: undefined name 'ammount'
//	  --> token.py:14:20
//	   │
//	14 │         return ammount
//	   │                ^^^^^^^
func (er *ErrorReporter) FormatError(err CompilerError) string {
	var result strings.Builder

	levelColor := er.levelColor(err.Level)
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	if err.Code != "" {
		result.WriteString(fmt.Sprintf("%s[%s]: %s\n",
			levelColor(string(err.Level)), err.Code, err.Message))
	} else {
		result.WriteString(fmt.Sprintf("%s: %s\n",
			levelColor(string(err.Level)), err.Message))
	}

	lineNumberWidth := len(fmt.Sprintf("%d", err.Position.Line))
	if lineNumberWidth < 2 {
		lineNumberWidth = 2
	}
	indent := strings.Repeat(" ", lineNumberWidth)

	result.WriteString(fmt.Sprintf("%s %s %s:%d:%d\n",
		indent, dim("-->"), er.filename, err.Position.Line, err.Position.Column))
	result.WriteString(fmt.Sprintf("%s %s\n", indent, dim("│")))

	if err.Position.Line > 0 && err.Position.Line <= len(er.lines) {
		lineContent := er.lines[err.Position.Line-1]
		result.WriteString(fmt.Sprintf("%s %s %s\n",
			bold(fmt.Sprintf("%*d", lineNumberWidth, err.Position.Line)),
			dim("│"),
			lineContent))
		result.WriteString(fmt.Sprintf("%s %s %s\n",
			indent, dim("│"), er.marker(err.Position.Column, err.Length, err.Level)))
	}

	for _, note := range err.Notes {
		noteColor := color.New(color.FgBlue).SprintFunc()
		result.WriteString(fmt.Sprintf("%s %s %s: %s\n",
			indent, dim("="), noteColor("note"), note))
	}

	return result.String()
}

// FormatAll renders a batch of diagnostics separated by blank lines.
func (er *ErrorReporter) FormatAll(errs []CompilerError) string {
	parts := make([]string, len(errs))
	for i, err := range errs {
		parts[i] = er.FormatError(err)
	}
	return strings.Join(parts, "\n")
}

func (er *ErrorReporter) marker(column, length int, level ErrorLevel) string {
	if column < 1 {
		column = 1
	}
	if length < 1 {
		length = 1
	}
	caret := strings.Repeat(" ", column-1) + strings.Repeat("^", length)
	return er.levelColor(level)(caret)
}

func (er *ErrorReporter) levelColor(level ErrorLevel) func(...interface{}) string {
	switch level {
	case Warning:
		return color.New(color.FgYellow, color.Bold).SprintFunc()
	case Note:
		return color.New(color.FgBlue, color.Bold).SprintFunc()
	default:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	}
}
