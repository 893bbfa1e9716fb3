package domain

import "errors"

// Common errors
var (
	ErrNotFound           = errors.New("record not found")
	ErrRoleIneligible     = errors.New("user role is not eligible for a player profile")
	ErrTransactionAborted = errors.New("cascade transaction aborted")
)
