// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package realtime

import (
	"strings"

	"github.com/danielhkuo/quickly-pick-live/apperr"
	"github.com/danielhkuo/quickly-pick-live/models"
)

// TranslateError turns a failure raised while handling a real-time event into
// the exception payload sent back to that client. Only validation failures are
// reported as BAD_REQUEST; everything else is INTERNAL with the error text.
func TranslateError(err error) models.Exception {
	appErr, ok := apperr.As(err)
	if !ok {
		return models.Exception{Status: models.StatusInternal, Message: err.Error()}
	}

	switch appErr.Kind {
	case apperr.KindValidation:
		return models.Exception{Status: models.StatusBadRequest, Message: validationMessage(appErr)}
	case apperr.KindAuth, apperr.KindNotFound, apperr.KindConflict, apperr.KindInternal:
		return models.Exception{Status: models.StatusInternal, Message: err.Error()}
	default:
		return models.Exception{Status: models.StatusInternal, Message: err.Error()}
	}
}

// structured messages, then the raw message, then the kind name
func validationMessage(e *apperr.Error) string {
	if len(e.Details) > 0 {
		return strings.Join(e.Details, "; ")
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Kind.String()
}
