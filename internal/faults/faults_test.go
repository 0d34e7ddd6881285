package faults

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorMatchesByKind(t *testing.T) {
	err := Structural("tracker", "negative elapsed time %d", -5)
	if !errors.Is(err, ErrStructural) {
		t.Fatalf("expected structural match, got %v", err)
	}
	if errors.Is(err, ErrLookup) {
		t.Fatal("structural error must not match lookup")
	}

	wrapped := fmt.Errorf("candidate 3: %w", Lookup("classify", "no coefficient for skill %d", 42))
	if !errors.Is(wrapped, ErrLookup) {
		t.Fatalf("expected wrapped lookup match, got %v", wrapped)
	}
	if KindOf(wrapped) != KindLookup {
		t.Fatalf("expected lookup kind, got %v", KindOf(wrapped))
	}
}

func TestErrorMessage(t *testing.T) {
	err := Structural("engine", "stack count %d exceeds limit %d", 26, 25)
	if !strings.HasPrefix(err.Error(), "engine: ") {
		t.Fatalf("expected op prefix, got %q", err.Error())
	}
	if KindOf(errors.New("plain")) != 0 {
		t.Fatal("plain errors carry no kind")
	}
}
