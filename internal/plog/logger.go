//
// logger.go
//
// Copyright (c) 2019-2025 Markku Rossi
//
// All rights reserved.
//

// Package plog implements the PSI party's output logging. It mirrors
// three verbosity levels ("minimal", "info", "full") and, at "full",
// routes OT transcripts and garbled-table dumps to their own sinks
// instead of the main progress stream.
package plog

import (
	"fmt"
	"io"
)

// Mode selects the logger's verbosity.
type Mode int

const (
	// Minimal prints only the final result.
	Minimal Mode = iota

	// Info additionally prints progress and status lines.
	Info

	// Full additionally writes OT transcripts and garbled-table dumps.
	Full
)

// ParseMode parses one of "minimal", "info", "full".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "minimal":
		return Minimal, nil
	case "info":
		return Info, nil
	case "full":
		return Full, nil
	default:
		return Info, fmt.Errorf("unknown output mode %q", s)
	}
}

// Logger implements the party's logging facility. It writes to
// plain io.Writers so tests can capture its output instead of going
// through global stdout.
type Logger struct {
	Party  string
	Mode   Mode
	Prefix string

	out    io.Writer
	ot     io.Writer
	tables io.Writer
}

// New creates a logger for party writing progress to out. otSink and
// tablesSink may be nil; they only receive data in Full mode.
func New(party string, mode Mode, out, otSink, tablesSink io.Writer) *Logger {
	return &Logger{
		Party:  party,
		Mode:   mode,
		out:    out,
		ot:     otSink,
		tables: tablesSink,
	}
}

// Minimal prints s unconditionally in Minimal mode, or as a labeled
// "Result: " line otherwise.
func (l *Logger) Minimal(s string) {
	if l.Mode == Minimal {
		fmt.Fprintln(l.out, s)
	} else {
		l.Info("Result: " + s)
	}
}

// Info prints s when the mode is Info or Full.
func (l *Logger) Info(s string) {
	if l.Mode == Info || l.Mode == Full {
		fmt.Fprintln(l.out, l.Prefix+s)
	}
}

// OT appends s to the OT transcript sink in Full mode.
func (l *Logger) OT(format string, a ...interface{}) {
	if l.Mode != Full || l.ot == nil {
		return
	}
	fmt.Fprintf(l.ot, format+"\n", a...)
}

// Circuit appends s to the garbled-table dump sink in Full mode.
func (l *Logger) Circuit(format string, a ...interface{}) {
	if l.Mode != Full || l.tables == nil {
		return
	}
	fmt.Fprintf(l.tables, format+"\n", a...)
}
