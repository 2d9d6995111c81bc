package log

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func newTestAdapter() (*BadgerLogrusAdapter, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	logger := logrus.New()
	logger.SetOutput(buf)
	logger.SetLevel(logrus.DebugLevel)
	return NewBadgerLogrusAdapter(logrus.NewEntry(logger).WithField("component", "badgerdb")), buf
}

func TestAdapter_Levels(t *testing.T) {
	tests := []struct {
		name  string
		log   func(a *BadgerLogrusAdapter)
		level string
	}{
		{"Errorf", func(a *BadgerLogrusAdapter) { a.Errorf("boom %d", 1) }, "error"},
		{"Warningf", func(a *BadgerLogrusAdapter) { a.Warningf("careful %s", "now") }, "warning"},
		{"Infof", func(a *BadgerLogrusAdapter) { a.Infof("hello") }, "info"},
		{"Debugf", func(a *BadgerLogrusAdapter) { a.Debugf("details") }, "debug"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter, buf := newTestAdapter()
			tt.log(adapter)
			out := buf.String()
			if !strings.Contains(out, "level="+tt.level) {
				t.Errorf("expected level %q in output, got: %s", tt.level, out)
			}
			if !strings.Contains(out, "component=badgerdb") {
				t.Errorf("expected component field in output, got: %s", out)
			}
		})
	}
}
