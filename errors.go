// Copyright (c) 2026 The emojify Authors
//
// Use of this source code is governed by the MIT License that can be found in
// the LICENSE file at the root of this repository.

package emojify

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrSessionClosed is returned by operations on a Session after Close.
var ErrSessionClosed = errors.New("session is closed")

// AuthenticationError is returned when Slack refuses to give us a session:
// bad credentials, a sign in form we could not understand, or a landing page
// without an API token.
type AuthenticationError struct {
	Endpoint string
	Reason   string
	Err      error
}

func (e *AuthenticationError) Error() string {
	msg := fmt.Sprintf("failed to authenticate to %q: %s", e.Endpoint, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Cause satisfies the github.com/pkg/errors causer interface.
func (e *AuthenticationError) Cause() error { return e.Err }

// Unwrap returns the underlying error, if any.
func (e *AuthenticationError) Unwrap() error { return e.Err }

// AuthorizationError is returned when the session is valid but the user is
// not permitted to manage emoji in the workspace.
type AuthorizationError struct {
	Method string
	Code   string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("not authorized to call %s: %s", e.Method, e.Code)
}

// NetworkError wraps transport failures and unexpected HTTP status codes.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

// Cause satisfies the github.com/pkg/errors causer interface.
func (e *NetworkError) Cause() error { return e.Err }

// Unwrap returns the underlying error.
func (e *NetworkError) Unwrap() error { return e.Err }

// DuplicateNameError is returned when an emoji with the name already exists.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("emoji %s already exists", e.Name)
}

// NotFoundError is returned when an emoji with the name does not exist.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("emoji %s does not exist", e.Name)
}

// InvalidImageError is returned when an image cannot be downloaded, decoded,
// or is rejected by Slack.
type InvalidImageError struct {
	URL    string
	Reason string
	Err    error
}

func (e *InvalidImageError) Error() string {
	msg := "invalid image"
	if e.URL != "" {
		msg += fmt.Sprintf(" %q", e.URL)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Cause satisfies the github.com/pkg/errors causer interface.
func (e *InvalidImageError) Cause() error { return e.Err }

// Unwrap returns the underlying error, if any.
func (e *InvalidImageError) Unwrap() error { return e.Err }

// UnsupportedCommandError is returned for a verb other than add, remove, or
// alias.
type UnsupportedCommandError struct {
	Verb string
}

func (e *UnsupportedCommandError) Error() string {
	return fmt.Sprintf("unsupported command %q, valid commands: add,remove,alias", e.Verb)
}

// IsAuthentication reports whether err, or any error it wraps, is an
// *AuthenticationError.
func IsAuthentication(err error) bool {
	var e *AuthenticationError
	return errors.As(err, &e)
}

// IsAuthorization reports whether err wraps an *AuthorizationError.
func IsAuthorization(err error) bool {
	var e *AuthorizationError
	return errors.As(err, &e)
}

// IsNetwork reports whether err wraps a *NetworkError.
func IsNetwork(err error) bool {
	var e *NetworkError
	return errors.As(err, &e)
}

// IsDuplicateName reports whether err wraps a *DuplicateNameError.
func IsDuplicateName(err error) bool {
	var e *DuplicateNameError
	return errors.As(err, &e)
}

// IsNotFound reports whether err wraps a *NotFoundError.
func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

// IsInvalidImage reports whether err wraps an *InvalidImageError.
func IsInvalidImage(err error) bool {
	var e *InvalidImageError
	return errors.As(err, &e)
}

// IsUnsupportedCommand reports whether err wraps an *UnsupportedCommandError.
func IsUnsupportedCommand(err error) bool {
	var e *UnsupportedCommandError
	return errors.As(err, &e)
}
