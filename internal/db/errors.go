// Package db error types.
package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/surrealdb/surrealdb.go"
)

// Sentinel errors for user record operations. Check with errors.Is.
var (
	// ErrUserAlreadyExists indicates a user with the same email is
	// already registered.
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrNotFound indicates the requested user does not exist.
	ErrNotFound = errors.New("user not found")
)

// wrapQueryError inspects a SurrealDB error and wraps it with the
// matching sentinel. Returns the original error for anything else.
func wrapQueryError(err error) error {
	if err == nil {
		return nil
	}

	var queryErr *surrealdb.QueryError
	if errors.As(err, &queryErr) {
		if strings.Contains(queryErr.Message, "already contains") ||
			strings.Contains(queryErr.Message, "already exists") {
			return fmt.Errorf("%w: %s", ErrUserAlreadyExists, queryErr.Message)
		}
	}

	return err
}
