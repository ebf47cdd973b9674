package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotJoined        = errors.New("not joined: call join first")
	ErrUnknownRole      = errors.New("unknown role")
	ErrRoleFull         = errors.New("role is full")
	ErrPermissionDenied = errors.New("permission denied")
	ErrLockFailed       = errors.New("lock acquisition failed")
	ErrConfigInvalid    = errors.New("project config missing or invalid")
	ErrInvalidInput     = errors.New("invalid input")
)

// IOError reports a failed read or write of a state file.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
