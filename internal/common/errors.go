package common

import "errors"

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrMalformedID    = errors.New("malformatted id")
	ErrDuplicateKey   = errors.New("duplicate key")

	// ErrInvalidToken covers a missing, malformed, expired or wrongly signed token.
	ErrInvalidToken = errors.New("token missing or invalid")
	// ErrUnauthorized is returned when a valid token belongs to someone other than the record's owner.
	ErrUnauthorized = errors.New("unauthorized access")
)
