package logadapter

import (
	"strings"

	"github.com/dgraph-io/badger/v2"
	"go.uber.org/zap"
)

var _ badger.Logger = (*Badger2Zap)(nil)

// Badger2Zap lets BadgerDB log via zap.
// BadgerDB terminates its log lines with a newline, which zap doesn't need, so it's trimmed.
type Badger2Zap struct {
	logger *zap.SugaredLogger
}

// NewBadger2Zap creates a new Badger2Zap logger.
// BadgerDB's INFO logs are very chatty (compactions, value log GC etc.), so they're logged with DEBUG level.
func NewBadger2Zap(logger *zap.Logger) *Badger2Zap {
	return &Badger2Zap{
		logger: logger.Named("badger").Sugar(),
	}
}

func (l *Badger2Zap) Errorf(template string, args ...interface{}) {
	l.logger.Errorf(strings.TrimSuffix(template, "\n"), args...)
}

func (l *Badger2Zap) Warningf(template string, args ...interface{}) {
	l.logger.Warnf(strings.TrimSuffix(template, "\n"), args...)
}

func (l *Badger2Zap) Infof(template string, args ...interface{}) {
	l.logger.Debugf(strings.TrimSuffix(template, "\n"), args...)
}

func (l *Badger2Zap) Debugf(template string, args ...interface{}) {
	l.logger.Debugf(strings.TrimSuffix(template, "\n"), args...)
}
