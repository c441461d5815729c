/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package logger provides the reactor's structured logging surface: a
// level-filtered, field-carrying wrapper around logrus, exposed as an
// io.WriteCloser so it can double as the destination of anything that
// only knows how to Write (an x/sys/unix errno trace, a cobra command's
// output).
package logger

import (
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

// Fields carries structured key/value context attached to every entry
// logged through a Logger until replaced with SetFields.
type Fields map[string]interface{}

// Logger is the reactor's logging surface. It is safe for concurrent use:
// every registered listener, the dispatch loop, and any background
// goroutine (Server.Listen, Client.Once) may log through the same Logger.
type Logger interface {
	io.WriteCloser

	SetLevel(lvl logrus.Level)
	GetLevel() logrus.Level

	SetFields(f Fields)
	GetFields() Fields

	WithFields(f Fields) Logger

	Debug(message string, args ...interface{})
	Info(message string, args ...interface{})
	Warning(message string, args ...interface{})
	Error(message string, args ...interface{})

	// CheckError logs err at lvlKO if non-nil, otherwise logs message at
	// lvlOK (unless lvlOK is NoLogOnSuccess, the sentinel for "don't log on
	// success"). Returns true when err was nil.
	CheckError(lvlKO, lvlOK logrus.Level, message string, err error) bool
}

// NoLogOnSuccess is the sentinel passed as lvlOK to CheckError to suppress
// any log line on the success path.
const NoLogOnSuccess = logrus.Level(^uint32(0))

type lgr struct {
	mut sync.RWMutex
	log *logrus.Logger
	lvl logrus.Level
	fld Fields
}

// New returns a Logger writing to out (os.Stderr is the typical choice) in
// the teacher's JSON-formatted style, at InfoLevel.
func New(out io.Writer) Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetLevel(logrus.InfoLevel)

	return &lgr{
		log: l,
		lvl: logrus.InfoLevel,
		fld: Fields{},
	}
}

func (l *lgr) entry() *logrus.Entry {
	l.mut.RLock()
	defer l.mut.RUnlock()
	return l.log.WithFields(logrus.Fields(l.fld))
}

func (l *lgr) SetLevel(lvl logrus.Level) {
	l.mut.Lock()
	defer l.mut.Unlock()
	l.lvl = lvl
	l.log.SetLevel(lvl)
}

func (l *lgr) GetLevel() logrus.Level {
	l.mut.RLock()
	defer l.mut.RUnlock()
	return l.lvl
}

func (l *lgr) SetFields(f Fields) {
	l.mut.Lock()
	defer l.mut.Unlock()
	l.fld = f
}

func (l *lgr) GetFields() Fields {
	l.mut.RLock()
	defer l.mut.RUnlock()
	return l.fld
}

func (l *lgr) WithFields(f Fields) Logger {
	l.mut.RLock()
	merged := make(Fields, len(l.fld)+len(f))
	for k, v := range l.fld {
		merged[k] = v
	}
	l.mut.RUnlock()

	for k, v := range f {
		merged[k] = v
	}

	return &lgr{log: l.log, lvl: l.GetLevel(), fld: merged}
}

func (l *lgr) Debug(message string, args ...interface{}) {
	l.entry().Debugf(message, args...)
}

func (l *lgr) Info(message string, args ...interface{}) {
	l.entry().Infof(message, args...)
}

func (l *lgr) Warning(message string, args ...interface{}) {
	l.entry().Warnf(message, args...)
}

func (l *lgr) Error(message string, args ...interface{}) {
	l.entry().Errorf(message, args...)
}

func (l *lgr) CheckError(lvlKO, lvlOK logrus.Level, message string, err error) bool {
	if err != nil {
		l.entry().WithError(err).Log(lvlKO, message)
		return false
	}
	if lvlOK != NoLogOnSuccess {
		l.entry().Log(lvlOK, message)
	}
	return true
}

// Write implements io.Writer at InfoLevel, trimming a single trailing
// newline the way standard loggers chained onto a *log.Logger expect.
func (l *lgr) Write(p []byte) (int, error) {
	msg := string(p)
	if n := len(msg); n > 0 && msg[n-1] == '\n' {
		msg = msg[:n-1]
	}
	l.entry().Log(logrus.InfoLevel, msg)
	return len(p), nil
}

func (l *lgr) Close() error {
	return nil
}
