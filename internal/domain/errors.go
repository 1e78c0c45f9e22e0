package domain

import "errors"

var (
	ErrValidation         = errors.New("validation failed")
	ErrUnauthorized       = errors.New("not logged in")
	ErrForbidden          = errors.New("not permitted")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrDuplicateUser      = errors.New("email or username already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrOutsideServiceArea = errors.New("address is outside the branch service area")
	ErrUnknownBranch      = errors.New("unknown branch")
	ErrInvalidTransition  = errors.New("invalid booking attempt transition")
	ErrCaptchaMismatch    = errors.New("captcha does not match")
)
