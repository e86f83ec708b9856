// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package session authenticates access tokens on HTTP requests and on
// real-time connection attempts, and carries the verified identity in the
// request context.
package session
