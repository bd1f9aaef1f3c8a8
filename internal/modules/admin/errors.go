package admin

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidAccount     = errors.New("admin email, password and provider are required")
)
