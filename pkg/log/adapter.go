// Package log bridges third-party logging interfaces onto logrus.
package log

import "github.com/sirupsen/logrus"

// BadgerLogrusAdapter satisfies badger.Logger so the PDF download ledger's
// internal logs flow through the run's contextualized logrus entry.
type BadgerLogrusAdapter struct {
	*logrus.Entry
}

// NewBadgerLogrusAdapter wraps a logrus entry for use as a badger.Logger.
func NewBadgerLogrusAdapter(entry *logrus.Entry) *BadgerLogrusAdapter {
	return &BadgerLogrusAdapter{entry}
}

func (l *BadgerLogrusAdapter) Errorf(f string, v ...interface{})   { l.Entry.Errorf(f, v...) }
func (l *BadgerLogrusAdapter) Warningf(f string, v ...interface{}) { l.Entry.Warningf(f, v...) }
func (l *BadgerLogrusAdapter) Infof(f string, v ...interface{})    { l.Entry.Infof(f, v...) }
func (l *BadgerLogrusAdapter) Debugf(f string, v ...interface{})   { l.Entry.Debugf(f, v...) }
