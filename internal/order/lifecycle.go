package order

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Strict adjacency: a status can only move to a configured successor, never
// skip ahead and never move back. Cancellation is reachable from pending and
// processing only.
var statusSuccessors = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

var paymentSuccessors = map[PaymentStatus][]PaymentStatus{
	PaymentPending:   {PaymentCompleted, PaymentFailed},
	PaymentCompleted: {PaymentRefunded},
	PaymentFailed:    {},
	PaymentRefunded:  {},
}

// CanTransition reports whether target is a direct successor of current.
func CanTransition(current, target Status) bool {
	for _, s := range statusSuccessors[current] {
		if s == target {
			return true
		}
	}
	return false
}

// CanTransitionPayment reports whether target is a direct successor of
// current on the payment axis.
func CanTransitionPayment(current, target PaymentStatus) bool {
	for _, s := range paymentSuccessors[current] {
		if s == target {
			return true
		}
	}
	return false
}

// Lifecycle mutates the status fields of persisted orders. The two axes are
// independent: moving one never touches the other. Cancelling an order does
// not restore stock; restocking is an operator action.
type Lifecycle struct {
	orders Store
}

func NewLifecycle(orders Store) *Lifecycle {
	return &Lifecycle{orders: orders}
}

func (l *Lifecycle) SetStatus(ctx context.Context, id string, target Status) (*Order, error) {
	o, err := l.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(o.Status, target) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, target)
	}
	o.Status = target
	o.UpdatedAt = time.Now().UTC()
	if err := l.orders.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (l *Lifecycle) SetPaymentStatus(ctx context.Context, id string, target PaymentStatus) (*Order, error) {
	o, err := l.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransitionPayment(o.PaymentStatus, target) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.PaymentStatus, target)
	}
	o.PaymentStatus = target
	o.UpdatedAt = time.Now().UTC()
	if err := l.orders.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// UpdateNotes replaces the free-form notes. Notes are the only non-status
// field that stays mutable after creation.
func (l *Lifecycle) UpdateNotes(ctx context.Context, id, notes string) (*Order, error) {
	o, err := l.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Notes = notes
	o.UpdatedAt = time.Now().UTC()
	if err := l.orders.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}
