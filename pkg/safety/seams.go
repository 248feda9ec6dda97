package safety

import "context"

// EmergencyDispatch places an emergency call on the user's behalf.
// Implementations return a *DispatchError on failure.
type EmergencyDispatch interface {
	Call(ctx context.Context) error
}

// ContactAlerter notifies every configured emergency contact.
// Implementations return an *AlertError on failure.
type ContactAlerter interface {
	NotifyAll(ctx context.Context) error
}

// DispatchFunc adapts a plain function to EmergencyDispatch.
type DispatchFunc func(ctx context.Context) error

func (f DispatchFunc) Call(ctx context.Context) error { return f(ctx) }

// AlertFunc adapts a plain function to ContactAlerter.
type AlertFunc func(ctx context.Context) error

func (f AlertFunc) NotifyAll(ctx context.Context) error { return f(ctx) }
