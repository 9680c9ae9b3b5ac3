// Package payment creates course orders against a payment gateway and tracks each order
// through its lifecycle.
package payment

import (
	"context"
	"errors"
	"time"

	"github.com/looplab/fsm"
)

// Status is an order's lifecycle state.
type Status string

// Order statuses
const (
	StatusCreated Status = "created"
	StatusPaid    Status = "paid"
	StatusFailed  Status = "failed"
)

// Lifecycle events
const (
	EventPay  = "pay"
	EventFail = "fail"
)

// Order is a payment order for one course purchase. Amount is in minor units.
type Order struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	CourseID      string    `json:"course_id,omitempty"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency"`
	Receipt       string    `json:"receipt"`
	Status        Status    `json:"status"`
	PaymentID     string    `json:"payment_id,omitempty"`
	FailureCode   string    `json:"failure_code,omitempty"`
	FailureReason string    `json:"failure_reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// lifecycle returns a state machine positioned at status. A failed order may still be paid
// when the visitor retries; a paid order is final.
func lifecycle(status Status) *fsm.FSM {
	return fsm.NewFSM(
		string(status),
		fsm.Events{
			{Name: EventPay, Src: []string{string(StatusCreated), string(StatusFailed)}, Dst: string(StatusPaid)},
			{Name: EventFail, Src: []string{string(StatusCreated), string(StatusFailed)}, Dst: string(StatusFailed)},
		},
		fsm.Callbacks{},
	)
}

// Apply runs event against the order's status and returns the resulting status. A repeated
// failure on a failed order is allowed and leaves the status unchanged.
func Apply(ctx context.Context, o Order, event string) (Status, error) {
	machine := lifecycle(o.Status)
	err := machine.Event(ctx, event)
	var noTransition fsm.NoTransitionError
	if err != nil && !errors.As(err, &noTransition) {
		return o.Status, &TransitionError{OrderID: o.ID, From: o.Status, Event: event, Cause: err}
	}
	return Status(machine.Current()), nil
}
