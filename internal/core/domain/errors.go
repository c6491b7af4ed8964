package domain

import "errors"

var (
	ErrSnapshotNotFound   = errors.New("snapshot not found")
	ErrProfileUnavailable = errors.New("profile unavailable")
	ErrProfileRejected    = errors.New("profile update rejected")
	ErrInvalidRole        = errors.New("invalid role")

	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("invalid input")
)
