package sdr

import (
	"os"
	"strconv"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

var logger atomic.Pointer[logrus.Logger]

func init() {
	logger.Store(newLogger())
}

// newLogger returns the default package logger.
func newLogger() *logrus.Logger {
	l := logrus.New()
	if debug, err := strconv.ParseBool(os.Getenv(debugEnv)); err == nil && debug {
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}

// Logger returns the package logger.
func Logger() *logrus.Logger {
	return logger.Load()
}

// SetLogger replaces the package logger. Nodes created afterwards log
// through l; existing nodes keep the logger they were created with.
func SetLogger(l *logrus.Logger) {
	if l == nil {
		l = newLogger()
	}
	logger.Store(l)
}

// nodeLogger returns the entry a node logs through.
func nodeLogger(name, id string) *logrus.Entry {
	return Logger().WithFields(logrus.Fields{"node": name, "id": id})
}
