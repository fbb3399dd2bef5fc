// Package logging adapts logrus to the ledger.Logger interface, the way
// the teacher's definition package wraps the standard library's log.Logger
// behind its own Logger interface.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/ledgermesh/ledgermesh/pkg/ledger"
)

// entryLogger implements ledger.Logger over a logrus.Entry carrying
// peer-scoped fields.
type entryLogger struct {
	entry *logrus.Entry
}

// New returns a ledger.Logger that tags every line with the given peer id.
func New(peerID string) ledger.Logger {
	base := logrus.New()
	base.SetOutput(os.Stderr)
	base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return &entryLogger{entry: base.WithField("peer", peerID)}
}

func (l *entryLogger) Infof(format string, v ...interface{})  { l.entry.Infof(format, v...) }
func (l *entryLogger) Warnf(format string, v ...interface{})  { l.entry.Warnf(format, v...) }
func (l *entryLogger) Errorf(format string, v ...interface{}) { l.entry.Errorf(format, v...) }
func (l *entryLogger) Debugf(format string, v ...interface{}) { l.entry.Debugf(format, v...) }
func (l *entryLogger) Fatalf(format string, v ...interface{}) { l.entry.Fatalf(format, v...) }
