package auth

import "errors"

var (
	ErrNotFound           = errors.New("auth: not found")
	ErrAlreadyExists      = errors.New("auth: already exists")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrMissingToken       = errors.New("auth: missing token")
	ErrRevokedToken       = errors.New("auth: token revoked")
	ErrInvalidToken       = errors.New("auth: invalid token")
)
