package domain

import "errors"

// Domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrJobNotFound        = errors.New("job application not found")
	ErrOwnerNotFound      = errors.New("owning user not found")
	ErrAttachmentNotFound = errors.New("attachment not found")
	ErrDuplicateUser      = errors.New("username or email already registered")
	ErrUsernameRequired   = errors.New("username is required")
	ErrEmailRequired      = errors.New("email is required")
	ErrUsernameTooLong    = errors.New("username exceeds maximum length")
	ErrEmailTooLong       = errors.New("email exceeds maximum length")
	ErrNoLookupKey        = errors.New("no lookup key supplied")
	ErrJobAlreadyLinked   = errors.New("job application already associated with user")
	ErrInternalError      = errors.New("internal error")
)

// Validation constants
const (
	MaxUsernameLength = 64
	MaxEmailLength    = 255
)
