// Package apperr defines sentinel errors shared across layers.
package apperr

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)
