package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestGetTypeThroughWrapping(t *testing.T) {
	sentinel := New(ErrorTypeTooFar, "item too far away to collect")
	wrapped := fmt.Errorf("collect: %w", sentinel)

	if got := GetType(wrapped); got != ErrorTypeTooFar {
		t.Fatalf("expected too_far, got %s", got)
	}
	if !errors.Is(wrapped, sentinel) {
		t.Fatalf("expected errors.Is to find the sentinel")
	}
	if !Is(wrapped, ErrorTypeTooFar) {
		t.Fatalf("expected Is to match type")
	}
}

func TestGetTypeDefaultsToInternal(t *testing.T) {
	if got := GetType(errors.New("boom")); got != ErrorTypeInternal {
		t.Fatalf("expected internal, got %s", got)
	}
	if Is(nil, ErrorTypeInternal) {
		t.Fatalf("nil error must not match any type")
	}
}

func TestAppErrorMessageIncludesCause(t *testing.T) {
	err := WrapInternal("failed to claim item", errors.New("connection reset"))
	if err.Error() != "failed to claim item: connection reset" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
