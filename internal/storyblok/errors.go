// SPDX-License-Identifier: AGPL-3.0-or-later

package storyblok

import (
	"errors"
	"net/http"
	"regexp"

	"github.com/bartekus/devflow/internal/transport"
)

// AuthError is a 401 or 403 response. It is fatal for a whole run.
type AuthError struct {
	Status *transport.StatusError
}

func (e *AuthError) Error() string {
	return "storyblok: token rejected: " + e.Status.Error()
}

func (e *AuthError) Unwrap() error { return e.Status }

// RateLimitError is a 429 response that outlived the retry policy.
type RateLimitError struct {
	Status *transport.StatusError
}

func (e *RateLimitError) Error() string {
	return "storyblok: rate limited after retries: " + e.Status.Error()
}

func (e *RateLimitError) Unwrap() error { return e.Status }

// PlanRequiredError is a 422 whose body mentions a plan or trial restriction.
type PlanRequiredError struct {
	Status *transport.StatusError
}

func (e *PlanRequiredError) Error() string {
	return "storyblok: current plan does not allow this change: " + e.Status.Error()
}

func (e *PlanRequiredError) Unwrap() error { return e.Status }

// ValidationError is any other 422. Payload is the exact request body that was rejected.
type ValidationError struct {
	Status  *transport.StatusError
	Payload []byte
}

func (e *ValidationError) Error() string {
	return "storyblok: payload rejected: " + e.Status.Error()
}

func (e *ValidationError) Unwrap() error { return e.Status }

// Body returns the response body of the rejection.
func (e *ValidationError) Body() []byte { return e.Status.Body }

// planWords matches "plan" or "trial" as whole words; "explanation" and
// "planned" do not match.
var planWords = regexp.MustCompile(`(?i)\b(plan|trial)s?\b`)

// Classify maps a transport error onto the remote error taxonomy.
// Errors without an HTTP status are returned unchanged.
func Classify(err error, payload []byte) error {
	var se *transport.StatusError
	if !errors.As(err, &se) {
		return err
	}
	switch se.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &AuthError{Status: se}
	case http.StatusTooManyRequests:
		return &RateLimitError{Status: se}
	case http.StatusUnprocessableEntity:
		if planWords.Match(se.Body) {
			return &PlanRequiredError{Status: se}
		}
		return &ValidationError{Status: se, Payload: payload}
	default:
		return err
	}
}

// IsAuth reports whether err is an AuthError.
func IsAuth(err error) bool {
	var e *AuthError
	return errors.As(err, &e)
}

// IsPlanRequired reports whether err is a PlanRequiredError.
func IsPlanRequired(err error) bool {
	var e *PlanRequiredError
	return errors.As(err, &e)
}

// IsRateLimited reports whether err is a RateLimitError.
func IsRateLimited(err error) bool {
	var e *RateLimitError
	return errors.As(err, &e)
}

// IsValidation reports whether err is a remote ValidationError.
func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}
