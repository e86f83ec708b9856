// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"auth", Auth("bad token", nil), KindAuth},
		{"not found", NotFound("poll %s not found", "ABC123"), KindNotFound},
		{"conflict", Conflict("poll exists"), KindConflict},
		{"validation", Validation("invalid request", "name is required"), KindValidation},
		{"internal", Internal("boom", nil), KindInternal},
		{"wrapped", fmt.Errorf("get poll: %w", NotFound("gone")), KindNotFound},
		{"untagged", errors.New("plain"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("outer: %w", Conflict("dup"))
	if !Is(err, KindConflict) {
		t.Error("Is() should find wrapped conflict")
	}
	if Is(err, KindNotFound) {
		t.Error("Is() matched the wrong kind")
	}
	if Is(errors.New("plain"), KindInternal) {
		t.Error("Is() should be false for untagged errors")
	}
}

func TestErrorMessage(t *testing.T) {
	cause := errors.New("connection refused")

	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"message only", NotFound("poll not found"), "poll not found"},
		{"with cause", Internal("store failure", cause), "store failure: connection refused"},
		{"details only", &Error{Kind: KindValidation, Details: []string{"a", "b"}}, "a; b"},
		{"empty falls back to kind", &Error{Kind: KindConflict}, "ConflictError"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}

	if !errors.Is(Internal("x", cause), cause) {
		t.Error("Unwrap() should expose the cause")
	}
}
