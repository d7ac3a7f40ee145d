package order

import "fmt"

// ShippingState implements the state pattern for shipping transitions.
// Forward moves may skip steps; a move to the current status is a no-op.
type ShippingState interface {
	Status() ShippingStatus
	Pack(l *Line) (ShippingState, error)
	Ship(l *Line) (ShippingState, error)
	Deliver(l *Line) (ShippingState, error)
	Cancel(l *Line) (ShippingState, error)
}

func stateOf(s ShippingStatus) ShippingState {
	switch s {
	case StatusPacking:
		return packingState{}
	case StatusShipped:
		return shippedState{}
	case StatusDelivered:
		return deliveredState{}
	case StatusCancelled:
		return cancelledState{}
	default:
		return notShippedState{}
	}
}

type notShippedState struct{}

func (notShippedState) Status() ShippingStatus               { return StatusNotShipped }
func (notShippedState) Pack(*Line) (ShippingState, error)    { return packingState{}, nil }
func (notShippedState) Ship(*Line) (ShippingState, error)    { return shippedState{}, nil }
func (notShippedState) Deliver(*Line) (ShippingState, error) { return deliveredState{}, nil }
func (notShippedState) Cancel(*Line) (ShippingState, error)  { return cancelledState{}, nil }

type packingState struct{}

func (packingState) Status() ShippingStatus               { return StatusPacking }
func (packingState) Pack(*Line) (ShippingState, error)    { return packingState{}, nil }
func (packingState) Ship(*Line) (ShippingState, error)    { return shippedState{}, nil }
func (packingState) Deliver(*Line) (ShippingState, error) { return deliveredState{}, nil }
func (packingState) Cancel(*Line) (ShippingState, error)  { return cancelledState{}, nil }

type shippedState struct{}

func (shippedState) Status() ShippingStatus               { return StatusShipped }
func (shippedState) Pack(*Line) (ShippingState, error)    { return nil, ErrInvalidStateTransition }
func (shippedState) Ship(*Line) (ShippingState, error)    { return shippedState{}, nil }
func (shippedState) Deliver(*Line) (ShippingState, error) { return deliveredState{}, nil }
func (shippedState) Cancel(*Line) (ShippingState, error)  { return cancelledState{}, nil }

type deliveredState struct{}

func (deliveredState) Status() ShippingStatus               { return StatusDelivered }
func (deliveredState) Pack(*Line) (ShippingState, error)    { return nil, ErrInvalidStateTransition }
func (deliveredState) Ship(*Line) (ShippingState, error)    { return nil, ErrInvalidStateTransition }
func (deliveredState) Deliver(*Line) (ShippingState, error) { return deliveredState{}, nil }
func (deliveredState) Cancel(*Line) (ShippingState, error)  { return nil, ErrInvalidStateTransition }

type cancelledState struct{}

func (cancelledState) Status() ShippingStatus               { return StatusCancelled }
func (cancelledState) Pack(*Line) (ShippingState, error)    { return nil, ErrInvalidStateTransition }
func (cancelledState) Ship(*Line) (ShippingState, error)    { return nil, ErrInvalidStateTransition }
func (cancelledState) Deliver(*Line) (ShippingState, error) { return nil, ErrInvalidStateTransition }
func (cancelledState) Cancel(*Line) (ShippingState, error)  { return cancelledState{}, nil }

// TransitionTo moves the line to the target status, rejecting backward moves and
// moves out of a terminal state. It reports whether the status actually changed.
func (l *Line) TransitionTo(to ShippingStatus) (bool, error) {
	current := stateOf(l.ShippingStatus)

	var (
		next ShippingState
		err  error
	)
	switch to {
	case StatusNotShipped:
		if l.ShippingStatus != StatusNotShipped {
			err = ErrInvalidStateTransition
		} else {
			next = current
		}
	case StatusPacking:
		next, err = current.Pack(l)
	case StatusShipped:
		next, err = current.Ship(l)
	case StatusDelivered:
		next, err = current.Deliver(l)
	case StatusCancelled:
		next, err = current.Cancel(l)
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownStatus, to)
	}
	if err != nil {
		return false, fmt.Errorf("%w: %s -> %s", err, l.ShippingStatus, to)
	}
	return l.apply(next.Status()), nil
}

// OverrideStatus sets any known status without a transition guard.
func (l *Line) OverrideStatus(to ShippingStatus) (bool, error) {
	if _, err := ParseStatus(string(to)); err != nil {
		return false, err
	}
	return l.apply(to), nil
}

func (l *Line) apply(to ShippingStatus) bool {
	if l.ShippingStatus == to {
		return false
	}
	l.ShippingStatus = to
	l.touch()
	return true
}
