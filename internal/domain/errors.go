package domain

import "errors"

// Sentinel errors for the domain layer. These provide consistent, checkable
// errors for common business logic failures.
var (
	ErrUserAlreadyExists  = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials provided")
	ErrNotFound           = errors.New("requested resource not found")
	ErrNotGroupMember     = errors.New("user is not a member of this group")
	ErrNotGroupAdmin      = errors.New("only the group admin may perform this action")
	ErrAlreadyMember      = errors.New("user is already a member of this group")
	ErrAdminRemoval       = errors.New("group admin cannot be removed")
)
