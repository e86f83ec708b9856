// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package apperr defines the tagged error type shared by every layer.

An *Error carries a Kind and an optional payload:

	return apperr.NotFound("poll %s not found", pollID)
	return apperr.Validation("invalid request", "name is required")

Boundaries switch on the kind instead of on concrete types:

	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		// 404
	}

Untagged errors are treated as KindInternal.
*/
package apperr
