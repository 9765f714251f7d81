package store

import "errors"

// Sentinel errors returned by store operations. Services translate these to
// typed domain errors at the boundary.
var (
	ErrContactNotFound  = errors.New("contact not found")
	ErrEmailExists      = errors.New("contact email already exists")
	ErrTagNotFound      = errors.New("tag not found")
	ErrTagExists        = errors.New("tag already exists")
	ErrActivityNotFound = errors.New("activity not found")
)
