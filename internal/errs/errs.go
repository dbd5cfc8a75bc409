/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package errs

import (
    "fmt"
    "net/http"
)

// ValidationError rejects bad input before any external call is made.
type ValidationError struct {
    Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// AuthenticationError means the session has no usable credentials; the caller
// should re-login.
type AuthenticationError struct {
    Msg string
    Err error
}

func (e *AuthenticationError) Error() string {
    if e.Err != nil { return fmt.Sprintf("%s: %v", e.Msg, e.Err) }
    return e.Msg
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// ExternalServiceError wraps an upstream failure. StatusCode is 0 when the
// request never produced a response (timeout, refused connection, DNS).
type ExternalServiceError struct {
    Service    string
    StatusCode int
    Msg        string
    Err        error
}

func (e *ExternalServiceError) Error() string {
    if e.StatusCode > 0 {
        return fmt.Sprintf("%s: %s (status=%d)", e.Service, e.Msg, e.StatusCode)
    }
    return fmt.Sprintf("%s: %s", e.Service, e.Msg)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

// AuthFailure reports whether the upstream rejected the credential, which is
// the signal for a token refresh rather than a plain failure.
func (e *ExternalServiceError) AuthFailure() bool {
    return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}
