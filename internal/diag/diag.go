// Package diag is the fail-fast precondition facility and leveled logger
// shared by the containers and the ECS.
package diag

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var logger = newLogger()

func newLogger() *log.Logger {
	l := log.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(log.InfoLevel)
	l.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "02-01-06 15:04:05",
	})
	return l
}

// Logger returns the package logger.
func Logger() *log.Logger {
	return logger
}

// SetLevel changes the level of the package logger.
func SetLevel(level log.Level) {
	logger.SetLevel(level)
}

// PreconditionError is the panic value raised when a caller breaks a
// container or ECS precondition.
type PreconditionError struct {
	File    string
	Line    int
	Message string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s:%d: precondition failed: %s", e.File, e.Line, e.Message)
}

// Failf logs the violated precondition at error level and panics. It never
// returns. The reported location is the caller of the function that called
// Failf, i.e. the code that misused the API.
func Failf(format string, args ...any) {
	fail(fmt.Sprintf(format, args...), 2)
}

// Assert panics with msg when cond is false.
func Assert(cond bool, msg string) {
	if !cond {
		fail(msg, 2)
	}
}

func fail(msg string, skip int) {
	file, line := "unknown", 0
	if _, f, l, ok := runtime.Caller(skip + 1); ok {
		file, line = filepath.Base(f), l
	}

	logger.WithFields(log.Fields{
		"file": file,
		"line": line,
	}).Error(msg)

	panic(errors.WithStack(&PreconditionError{File: file, Line: line, Message: msg}))
}
