/*
MIT License

Copyright (c) 2019 Nicolas JUHEL

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/

// Package logger wraps logrus with the Level convenience API used across this
// module: each Level value is itself callable as a logging sink, so call
// sites read as `logger.InfoLevel.Logf(...)` instead of threading a logger
// instance through every function signature.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

var std atomic.Value

func init() {
	l := logrus.New()
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	std.Store(l)
}

// SetOutput redirects every subsequent log call to w.
func SetOutput(w io.Writer) {
	entry().Logger.SetOutput(w)
}

// SetLevel caps which Level values actually emit output.
func SetLevel(lvl Level) {
	entry().Logger.SetLevel(lvl.Logrus())
}

func entry() *logrus.Logger {
	return std.Load().(*logrus.Logger)
}

// GetLogger returns a standard library *log.Logger that writes through the
// package logger at the given level, for wiring into APIs (e.g. net/http.Server.ErrorLog)
// that only accept *log.Logger.
func GetLogger(lvl Level, flags int, format string, args ...interface{}) *log.Logger {
	prefix := fmt.Sprintf(format, args...)
	w := entry().WriterLevel(lvl.Logrus())
	return log.New(w, prefix+" ", flags)
}

// Log emits msg at level l.
func (l Level) Log(msg string) {
	if l == NilLevel {
		return
	}
	entry().Log(l.Logrus(), msg)
}

// Logf emits a formatted message at level l.
func (l Level) Logf(format string, args ...interface{}) {
	if l == NilLevel {
		return
	}
	entry().Logf(l.Logrus(), format, args...)
}

// LogErrorCtxf emits a formatted message carrying an attached error, logged at
// level l unless ctxLvl is more severe, in which case ctxLvl wins. Passing
// NilLevel as ctxLvl means "no escalation".
func (l Level) LogErrorCtxf(ctxLvl Level, format string, err error, args ...interface{}) {
	use := l
	if ctxLvl != NilLevel && ctxLvl < l {
		use = ctxLvl
	}

	if use == NilLevel {
		return
	}

	msg := fmt.Sprintf(format, args...)
	if err != nil {
		entry().WithError(err).Log(use.Logrus(), msg)
	} else {
		entry().Log(use.Logrus(), msg)
	}
}

// Fatal logs msg at level l. When l is FatalLevel or PanicLevel it then
// exits the process with status 1; at any other level it only logs.
func (l Level) Fatal(msg string) {
	entry().Log(l.Logrus(), msg)
	if l == FatalLevel || l == PanicLevel {
		os.Exit(1)
	}
}
