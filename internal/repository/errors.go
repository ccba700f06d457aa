// Package repository defines error types that are reused across
// multiple repositories. These sentinel values allow higher layers such
// as handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the current user is not
// authorized to perform an operation on a resource owned by someone
// else, while ErrDuplicateVisit signals that the citizen already booked
// the same collection point on the same day.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers should translate this into an
// HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrDuplicateVisit is returned when the client already has a visit for
// the same collection point on the same calendar day. Handlers run a
// pre-check first; this error is the unique-key backstop for requests
// that race past it.
var ErrDuplicateVisit = errors.New("visit already exists for this date")

// ErrDuplicateReview is returned when a user tries to review the same
// collection point twice.
var ErrDuplicateReview = errors.New("review already exists for this point")
