// Copyright 2024 Outreach Corporation. All Rights Reserved.

// Description: This file contains errors returned by the library

package faucet

import (
	"errors"
	"fmt"
)

// Errors
var (
	// ErrUnsupportedDriver indicates that no connector exists for the requested driver
	ErrUnsupportedDriver = errors.New("unsupported database driver")

	// ErrUnknownConnection indicates that the registry holds no connection under the given name
	ErrUnknownConnection = errors.New("unknown connection")

	// ErrDuplicateConnection indicates that a connection with the given name is already registered
	ErrDuplicateConnection = errors.New("connection already registered")

	// ErrConnectionClosed indicates that the connection handle has been closed
	ErrConnectionClosed = errors.New("connection is closed")

	// ErrUnknownBinding indicates that no value is bound under the given name
	ErrUnknownBinding = errors.New("unknown binding")

	// ErrDuplicateBinding indicates that a value is already bound under the given name
	ErrDuplicateBinding = errors.New("binding already registered")

	// ErrCircularBinding indicates that binding constructors resolve each other in a cycle
	ErrCircularBinding = errors.New("circular binding")
)

// ConnectionError is the terminal failure of a bootstrap attempt.
// It carries the last error returned by the connector together with
// the number of attempts that were made.
type ConnectionError struct {
	// Name of the connection that could not be established
	Name string
	// Attempts made before giving up
	Attempts int
	// Err is the last underlying failure
	Err error
}

// Error returns a text message of the error
func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection %q failed after %d attempt(s): %s", e.Name, e.Attempts, e.Err)
}

// Unwrap returns the underlying error.
// This method is required by errors.Unwrap.
func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// IsConnectionError checks if there is any error in the chain of type ConnectionError
func IsConnectionError(err error) bool {
	var ce *ConnectionError
	return errors.As(err, &ce)
}
