package tools

import "errors"

// Sentinel errors for the tool registry.
var (
	ErrNotFound       = errors.New("tool not found")
	ErrAlreadyExists  = errors.New("tool already registered")
	ErrEmptyName      = errors.New("tool name is empty")
	ErrInvalidSchema  = errors.New("tool parameter schema is invalid")
	ErrSchemaMismatch = errors.New("arguments do not match tool schema")
)
