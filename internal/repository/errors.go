package repository

import (
	"errors"

	"github.com/lib/pq"
)

// Common repository errors
var (
	// ErrNotFound is returned when a record is not found
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateUser is returned when a user with the same email or oauth id exists
	ErrDuplicateUser = errors.New("user with this email or oauth id already exists")

	// ErrDuplicateUserData is returned when the user already has data for the campaign
	ErrDuplicateUserData = errors.New("user data for this campaign already exists")

	// ErrUserReference is returned when user data references a user that does not exist
	ErrUserReference = errors.New("referenced user does not exist")
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqInvalidText         = "22P02"
)

func pqCode(err error) pq.ErrorCode {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code
	}
	return ""
}
