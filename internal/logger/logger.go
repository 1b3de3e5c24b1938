// -*- Mode: Go; indent-tabs-mode: t -*-

/*
 * Copyright (C) 2026 Osso
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License version 3 as
 * published by the Free Software Foundation.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 *
 */

// Package logger is authd's leveled logging façade, shaped after the
// teacher's logger package (New/SetLogger/NullLogger/DefaultFlags, used
// throughout the daemon test suite as logger.New(&buf, logger.DefaultFlags)
// / logger.SetLogger(log)).
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

// Flag controls which severities a Logger emits.
type Flag int

const (
	// DefaultFlags enables Debugf output in addition to Noticef/Errorf.
	DefaultFlags Flag = 1 << iota
)

// Logger is the minimal leveled-logging interface every authd component
// writes to instead of the standard library's log package directly.
type Logger interface {
	Debugf(format string, v ...interface{})
	Noticef(format string, v ...interface{})
	Errorf(format string, v ...interface{})
}

type stdLogger struct {
	mu    sync.Mutex
	log   *log.Logger
	flags Flag
}

// New builds a Logger writing to w. Passing DefaultFlags enables Debugf.
func New(w io.Writer, flags Flag) (Logger, error) {
	if w == nil {
		return nil, fmt.Errorf("logger: nil writer")
	}
	return &stdLogger{log: log.New(w, "", log.LstdFlags), flags: flags}, nil
}

func (l *stdLogger) Debugf(format string, v ...interface{}) {
	if l.flags&DefaultFlags == 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.log.Output(2, "DEBUG: "+fmt.Sprintf(format, v...))
}

func (l *stdLogger) Noticef(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.log.Output(2, fmt.Sprintf(format, v...))
}

func (l *stdLogger) Errorf(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.log.Output(2, "ERROR: "+fmt.Sprintf(format, v...))
}

type nullLogger struct{}

func (nullLogger) Debugf(string, ...interface{})  {}
func (nullLogger) Noticef(string, ...interface{}) {}
func (nullLogger) Errorf(string, ...interface{})  {}

// NullLogger discards everything; tests that don't care about log output
// set this to keep their own stderr clean.
var NullLogger Logger = nullLogger{}

var (
	mu  sync.Mutex
	cur Logger = mustDefault()
)

func mustDefault() Logger {
	l, err := New(os.Stderr, DefaultFlags)
	if err != nil {
		panic(err)
	}
	return l
}

// SetLogger replaces the package-global logger, returning nothing (mirrors
// the teacher's fire-and-forget SetLogger; tests restore the previous
// value themselves in TearDown, same as the teacher's suites do).
func SetLogger(l Logger) {
	mu.Lock()
	defer mu.Unlock()
	cur = l
}

func get() Logger {
	mu.Lock()
	defer mu.Unlock()
	return cur
}

// Debugf logs via the current global logger.
func Debugf(format string, v ...interface{}) { get().Debugf(format, v...) }

// Noticef logs via the current global logger.
func Noticef(format string, v ...interface{}) { get().Noticef(format, v...) }

// Errorf logs via the current global logger.
func Errorf(format string, v ...interface{}) { get().Errorf(format, v...) }
