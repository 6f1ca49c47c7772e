package errs

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

type ValidationError struct {
	Msg string
}

func (t ValidationError) Error() string {
	return t.Msg
}

type ConflictError struct {
	Msg string
}

func (t ConflictError) Error() string {
	return t.Msg
}

type NotFoundError struct {
	Msg string
}

func (t NotFoundError) Error() string {
	return t.Msg
}

type AuthError struct {
	Msg string
	Err error
}

func (t AuthError) Error() string {
	if t.Err != nil {
		return fmt.Sprintf("%s: %v", t.Msg, t.Err)
	}
	return t.Msg
}

func (t AuthError) Unwrap() error {
	return t.Err
}

type RetryableError struct {
	Err error
}

func (t RetryableError) Error() string {
	return fmt.Sprintf("retryable error: %v", t.Err)
}

func (t RetryableError) Unwrap() error {
	return t.Err
}
