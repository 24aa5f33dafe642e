package ports

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateProvider = errors.New("duplicate provider registration")
	ErrUnknownProvider   = errors.New("unknown provider")
	ErrInvalidTag        = errors.New("invalid tag")
	ErrNoActionClass     = errors.New("no action class registered")
)
