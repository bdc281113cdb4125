package repository

import "errors"

var (
	ErrPostNotFound             = errors.New("post not found")
	ErrUserNotFound             = errors.New("user not found")
	ErrUserExists               = errors.New("user already exists")
	ErrInstagramAccountNotFound = errors.New("instagram account not found")
	ErrInstagramAccountExists   = errors.New("instagram account already exists")
	ErrContextNotFound          = errors.New("context not found")
	ErrContextExists            = errors.New("context already exists")
)
