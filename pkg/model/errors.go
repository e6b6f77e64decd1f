package model

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrNotFound indicates a lookup by ID matched nothing. Callers that
	// treat absence as a normal outcome should check with errors.Is.
	ErrNotFound = goerr.New("not found")

	// ErrInvalidInput indicates a malformed or empty required input
	ErrInvalidInput = goerr.New("invalid input")
)
