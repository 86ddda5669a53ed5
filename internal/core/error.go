package core

/*
portclean — trims domain:port lists down to the ports that matter
Copyright (C) 2025  Pepijn van der Stap <rxtls@vanderstap.info>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU Affero General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

// customError is an error type for invalid run configuration.
// Config validation returns it before any file is opened, which lets the
// command layer tell a usage mistake apart from an I/O failure.
// It implements the standard `error` interface.
type customError struct {
	message string // The error message.
}

// NewError creates a new customError with the given message.
//
// Parameters:
//   msg: The textual description of the configuration problem.
//
// Returns:
//   An error of type *customError.
func NewError(msg string) error {
	return &customError{message: msg}
}

// Error implements the standard Go `error` interface.
// It returns the textual message associated with the customError.
func (e *customError) Error() string {
	return e.message
}

// IsConfigError is a helper function to check if a given error is a
// *customError, i.e. whether it came from Config validation.
// If the error is nil, it returns false.
// Errors from file I/O (missing input, failed rename) are never config errors.
//
// Parameters:
//   err: The error to check.
//
// Returns:
//   True if err is a *customError, false otherwise.
func IsConfigError(err error) bool {
	if err == nil {
		return false
	}

	// Type assert to *customError; wrapped I/O errors fall through to false.
	_, ok := err.(*customError)
	return ok
}

// Configuration errors returned by Config.Validate.
// They are fixed values so callers can match them with errors.Is.
var (
	// ErrEmptyPath indicates that no input file was given.
	ErrEmptyPath = NewError("file path is required")
	// ErrNegativeLimit indicates a port limit below zero. A limit of zero is
	// valid and trims every domain that has any port.
	ErrNegativeLimit = NewError("port limit must not be negative")
)
