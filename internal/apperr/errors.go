package apperr

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrMalformedImport = errors.New("malformed import payload")
)
