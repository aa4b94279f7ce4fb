package application

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrRoleNotFound       = errors.New("role not found")
	ErrForbidden          = errors.New("not allowed to manage this role")
	ErrUserInactive       = errors.New("user is inactive")
)
