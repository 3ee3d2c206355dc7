package apperror

import (
	"context"
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
		{"nil", nil, ""},
		{"invalid range", ErrInvalidRange, KindInvalidRange},
		{"wrapped not found", fmt.Errorf("load: %w", ErrSlotNotFound), KindNotFound},
		{"locked", ErrSlotLocked, KindLocked},
		{"slot overlap is a conflict", ErrSlotOverlap, KindConflict},
		{"transition", ErrInvalidTransition, KindInvalidTransition},
		{"forbidden", ErrForbidden, KindForbidden},
		{"timeout", fmt.Errorf("%w: %v", ErrTimeout, context.DeadlineExceeded), KindTimeout},
		{"option required is validation", ErrServiceOptionRequired, KindValidation},
		{"unknown", errors.New("boom"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Fatalf("KindOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRetryable(t *testing.T) {
	if !Retryable(ErrRangeTaken) {
		t.Fatalf("conflict must be retryable")
	}
	if !Retryable(ErrTimeout) {
		t.Fatalf("timeout must be retryable")
	}
	for _, err := range []error{ErrInvalidRange, ErrSlotLocked, ErrInvalidTransition, ErrForbidden, ErrAppointmentNotFound} {
		if Retryable(err) {
			t.Fatalf("%v must not be retryable", err)
		}
	}
}
