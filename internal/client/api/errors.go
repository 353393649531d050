package api

import "errors"

var (
	// ErrUnavailable covers transport failures and 5xx responses; the
	// caller is expected to fall back to local data where it can.
	ErrUnavailable = errors.New("server unavailable")

	// ErrUnauthorized is returned for rejected credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound is returned when the server holds no data for the
	// requested user.
	ErrNotFound = errors.New("not found")
)
