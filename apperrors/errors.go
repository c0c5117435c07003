// Package apperrors holds the error taxonomy shared by services and controllers.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSignature  = errors.New("invalid webhook signature")
	ErrNotEnrolled       = errors.New("user not enrolled in this course")
	ErrNotFound          = errors.New("not found")
	ErrAlreadyExists     = errors.New("already exists")
	ErrAlreadyBid        = errors.New("you have already bid on this job")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrConflict          = errors.New("concurrent update conflict")
	ErrPaymentRequired   = errors.New("payment required for this course")
	ErrNotComplete       = errors.New("course not completed")
	ErrJobClosed         = errors.New("job is not accepting bids")
	ErrOwnJob            = errors.New("cannot bid on your own job")
	ErrFreeCourse        = errors.New("course is free, enroll directly")
	ErrAmountMismatch    = errors.New("paid amount does not match the checkout")
)

// GatewayError is a failed call to the payment processor, or a call whose payload reported failure.
type GatewayError struct {
	StatusCode int
	Message    string
}

func (e *GatewayError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("payment gateway: %s", e.Message)
	}
	return fmt.Sprintf("payment gateway (%d): %s", e.StatusCode, e.Message)
}

// Transition builds an ErrInvalidTransition describing the rejected move.
func Transition(entity string, from, to any) error {
	return fmt.Errorf("%w: %s %v -> %v", ErrInvalidTransition, entity, from, to)
}

var domainErrors = []error{
	ErrInvalidSignature,
	ErrNotEnrolled,
	ErrNotFound,
	ErrAlreadyExists,
	ErrAlreadyBid,
	ErrInvalidTransition,
	ErrPaymentRequired,
	ErrNotComplete,
	ErrJobClosed,
	ErrOwnJob,
	ErrFreeCourse,
	ErrAmountMismatch,
}

// IsDomain reports whether err is a business rule outcome rather than an
// infrastructure failure. Domain errors are never retried. ErrConflict is not
// one, so a lost compare-and-swap is retried.
func IsDomain(err error) bool {
	for _, target := range domainErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		return gwErr.StatusCode > 0 && gwErr.StatusCode < 500
	}
	return false
}
