package logging

import (
	"testing"

	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	log, err := New("debug", "json")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if !log.Core().Enabled(zap.DebugLevel) {
		t.Fatal("debug level should be enabled")
	}

	log, err = New(" WARN ", "")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if log.Core().Enabled(zap.InfoLevel) || !log.Core().Enabled(zap.WarnLevel) {
		t.Fatal("expected warn level")
	}
}

func TestNewRejectsBadInput(t *testing.T) {
	if _, err := New("loud", "console"); err == nil {
		t.Fatal("expected level error")
	}
	if _, err := New("info", "xml"); err == nil {
		t.Fatal("expected encoding error")
	}
}
