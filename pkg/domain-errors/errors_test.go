package dErrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrap(t *testing.T) {
	t.Run("nil error yields nil", func(t *testing.T) {
		if Wrap(nil, CodeInternal, "ignored") != nil {
			t.Fatal("expected nil for wrapped nil error")
		}
	})

	t.Run("wrapped error keeps chain", func(t *testing.T) {
		base := errors.New("connection reset")
		err := Wrap(base, CodeUnavailable, "store unreachable")
		if !errors.Is(err, base) {
			t.Fatal("expected wrapped error to unwrap to base")
		}
		if err.Error() != "store unreachable: connection reset" {
			t.Fatalf("unexpected message: %q", err.Error())
		}
	})
}

func TestGetCode(t *testing.T) {
	t.Run("plain error defaults to internal", func(t *testing.T) {
		if got := GetCode(errors.New("boom")); got != CodeInternal {
			t.Fatalf("expected %s, got %s", CodeInternal, got)
		}
	})

	t.Run("code survives fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("outer: %w", New(CodeNotFound, "job missing"))
		if !HasCode(err, CodeNotFound) {
			t.Fatal("expected not_found code through the chain")
		}
	})
}
