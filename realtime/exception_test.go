// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package realtime

import (
	"errors"
	"fmt"
	"testing"

	"github.com/danielhkuo/quickly-pick-live/apperr"
	"github.com/danielhkuo/quickly-pick-live/models"
)

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want models.Exception
	}{
		{
			name: "validation with one message",
			err:  apperr.Validation("invalid request", "name required"),
			want: models.Exception{Status: models.StatusBadRequest, Message: "name required"},
		},
		{
			name: "validation with several messages",
			err:  apperr.Validation("invalid request", "topic is required", "name is required"),
			want: models.Exception{Status: models.StatusBadRequest, Message: "topic is required; name is required"},
		},
		{
			name: "validation with raw message only",
			err:  apperr.Validation("Invalid event payload"),
			want: models.Exception{Status: models.StatusBadRequest, Message: "Invalid event payload"},
		},
		{
			name: "validation with nothing falls back to kind name",
			err:  &apperr.Error{Kind: apperr.KindValidation},
			want: models.Exception{Status: models.StatusBadRequest, Message: "ValidationError"},
		},
		{
			name: "wrapped validation",
			err:  fmt.Errorf("remove: %w", apperr.Validation("invalid request", "id is required")),
			want: models.Exception{Status: models.StatusBadRequest, Message: "id is required"},
		},
		{
			name: "auth is internal",
			err:  apperr.Auth("Admin privileges required", nil),
			want: models.Exception{Status: models.StatusInternal, Message: "Admin privileges required"},
		},
		{
			name: "not found is internal",
			err:  apperr.NotFound("poll %s not found", "ABC123"),
			want: models.Exception{Status: models.StatusInternal, Message: "poll ABC123 not found"},
		},
		{
			name: "internal includes cause",
			err:  apperr.Internal("failed to update poll", errors.New("connection reset")),
			want: models.Exception{Status: models.StatusInternal, Message: "failed to update poll: connection reset"},
		},
		{
			name: "untagged passes through unchanged",
			err:  errors.New("raw failure"),
			want: models.Exception{Status: models.StatusInternal, Message: "raw failure"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TranslateError(tt.err); got != tt.want {
				t.Errorf("TranslateError() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
