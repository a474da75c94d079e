package errors

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInsufficientWallet = errors.New("insufficient wallet balance")
	ErrNotSupported       = errors.New("operation not supported")
	ErrNoRefundChanges    = errors.New("refund request contains no changes")
	ErrBelowMinimumTotal  = errors.New("subscription total would drop below the minimum")
	ErrCouponAddressLimit = errors.New("coupon usage limit reached for this address")
	ErrCouponExhausted    = errors.New("coupon usage limit reached")
	ErrCouponPlanMismatch = errors.New("coupon is not valid for this plan")

	// ErrExternalDependency marks a failed dispatch/payment provider call.
	// The state transition that depended on it is not committed.
	ErrExternalDependency = errors.New("external dependency failure")

	// ErrStateConflict is the match target for StateConflictError values.
	ErrStateConflict = errors.New("state conflict")
)

// StateConflictError rejects an operation that is not valid in the entity's
// current status, carrying the specific customer-facing reason.
type StateConflictError struct {
	Status string
	Reason string
}

func (e *StateConflictError) Error() string {
	return e.Reason
}

// Is lets errors.Is(err, ErrStateConflict) match any state conflict.
func (e *StateConflictError) Is(target error) bool {
	return target == ErrStateConflict
}

// SkipConflict explains why a delivery in the given status cannot be skipped.
func SkipConflict(status string) *StateConflictError {
	return &StateConflictError{Status: status, Reason: skipReason(status)}
}

// UnskipConflict explains why a delivery in the given status cannot be
// restored.
func UnskipConflict(status string) *StateConflictError {
	return &StateConflictError{Status: status, Reason: unskipReason(status)}
}

// RefundConflict explains why a delivery in the given status cannot be
// refunded.
func RefundConflict(status string) *StateConflictError {
	return &StateConflictError{Status: status, Reason: refundReason(status)}
}

func skipReason(status string) string {
	switch status {
	case "SKIPPED":
		return "this delivery is already skipped"
	case "CANCELLED":
		return "this delivery was cancelled and cannot be skipped"
	case "DELIVERED":
		return "this delivery has already been delivered"
	case "PREPARING":
		return "this delivery is already being prepared and can no longer be skipped"
	case "OUT_FOR_DELIVERY":
		return "this delivery is already out for delivery and can no longer be skipped"
	case "REFUNDED":
		return "this delivery was refunded and cannot be skipped"
	default:
		return fmt.Sprintf("a %s delivery cannot be skipped", status)
	}
}

func refundReason(status string) string {
	switch status {
	case "SKIPPED":
		return "this delivery was skipped and its amount already credited"
	case "CANCELLED":
		return "this delivery was cancelled and cannot be refunded"
	case "REFUNDED":
		return "this delivery has already been refunded in full"
	default:
		return fmt.Sprintf("a %s delivery cannot be refunded", status)
	}
}

func unskipReason(status string) string {
	switch status {
	case "ACCEPTED":
		return "this delivery is not skipped"
	case "CANCELLED":
		return "this delivery was cancelled and cannot be restored"
	case "DELIVERED":
		return "this delivery has already been delivered"
	case "PREPARING":
		return "this delivery is already being prepared"
	case "OUT_FOR_DELIVERY":
		return "this delivery is already out for delivery"
	case "REFUNDED":
		return "this delivery was refunded and cannot be restored"
	default:
		return fmt.Sprintf("a %s delivery cannot be restored", status)
	}
}
