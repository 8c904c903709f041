package types

import "errors"

// Source errors.
var (
	ErrSourceUnavailable = errors.New("source unavailable")
	ErrSchema            = errors.New("schema creation failed")
	ErrQuery             = errors.New("query failed")
)

// Catalog and mutation outcomes. These are normal results reported to the
// caller, not faults.
var (
	ErrNotFound      = errors.New("course not found")
	ErrNoMatches     = errors.New("no matching courses")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrInsertFailed  = errors.New("insert failed")
	ErrInvalidCourse = errors.New("invalid course number")
)

// Authentication and configuration errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidConfig      = errors.New("invalid configuration")
)
