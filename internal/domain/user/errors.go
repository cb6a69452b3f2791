package user

import "errors"

var (
	ErrUserNotFound            = errors.New("user not found")
	ErrUserEmailExists         = errors.New("email already registered")
	ErrActorMissing            = errors.New("authenticated user missing from context")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	ErrCannotDeactivateSelf    = errors.New("you cannot deactivate your own account")
	ErrUserInactive            = errors.New("user account is inactive")
)
