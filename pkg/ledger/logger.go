package ledger

// Logger is the logging interface consumed by the protocol engine and
// transport. The default implementation wraps logrus (see
// internal/logging); tests may supply a no-op or buffering logger.
type Logger interface {
	Infof(format string, v ...interface{})
	Warnf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
	Debugf(format string, v ...interface{})
	Fatalf(format string, v ...interface{})
}
