package badger

import (
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

// Key prefix for vector records. Layout: vecrec:<namespace>:<recordID>
const recordPrefix = "vecrec"

// makeRecordKey generates the storage key for a record in a namespace.
// Passing a partial record ID yields a prefix usable for range scans.
func makeRecordKey(namespace, id string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", recordPrefix, namespace, id))
}

// makeNamespacePrefix generates the key prefix covering an entire namespace.
func makeNamespacePrefix(namespace string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", recordPrefix, namespace))
}

// loggerAdapter adapts slog.Logger to badger.Logger interface.
type loggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*loggerAdapter)(nil)

func newLoggerAdapter(logger *slog.Logger) *loggerAdapter {
	return &loggerAdapter{logger: logger}
}

func (l *loggerAdapter) Errorf(msg string, items ...any) {
	l.logger.Error(fmt.Sprintf(msg, items...))
}

func (l *loggerAdapter) Warningf(msg string, items ...any) {
	l.logger.Warn(fmt.Sprintf(msg, items...))
}

func (l *loggerAdapter) Infof(msg string, items ...any) {
	l.logger.Info(fmt.Sprintf(msg, items...))
}

func (l *loggerAdapter) Debugf(msg string, items ...any) {
	l.logger.Debug(fmt.Sprintf(msg, items...))
}
