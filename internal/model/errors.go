package model

import "errors"

var (
	ErrNilArgument = errors.New("argument is nil")
	ErrOutOfRange  = errors.New("argument out of range")
)
