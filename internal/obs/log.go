// Package obs provides the structured, debug-only logging used by
// package pathmatch and package xmledit, built on
// gopkg.in/inconshreveable/log15.v2 the way the teacher's services log.
package obs

import (
	"os"

	log15 "gopkg.in/inconshreveable/log15.v2"
)

// Logger is the structured logger interface both packages depend on.
// nil is a valid *Logger value everywhere it's accepted; callers are
// not required to configure logging to use this module.
type Logger struct {
	log log15.Logger
}

// New builds a Logger writing to stderr at the given level ("debug",
// "info", "warn", "error"). An empty level disables output.
func New(name, level string) *Logger {
	if level == "" {
		return nil
	}
	lvl, err := log15.LvlFromString(level)
	if err != nil {
		lvl = log15.LvlInfo
	}
	l := log15.New("component", name)
	l.SetHandler(log15.LvlFilterHandler(lvl, log15.StreamHandler(os.Stderr, log15.LogfmtFormat())))
	return &Logger{log: l}
}

func (l *Logger) Debug(msg string, ctx ...interface{}) {
	if l == nil {
		return
	}
	l.log.Debug(msg, ctx...)
}

func (l *Logger) Info(msg string, ctx ...interface{}) {
	if l == nil {
		return
	}
	l.log.Info(msg, ctx...)
}

func (l *Logger) Warn(msg string, ctx ...interface{}) {
	if l == nil {
		return
	}
	l.log.Warn(msg, ctx...)
}

func (l *Logger) Error(msg string, ctx ...interface{}) {
	if l == nil {
		return
	}
	l.log.Error(msg, ctx...)
}
