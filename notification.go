package account

import "context"

// Notification is the payload handed to a Sink: the signed action token and
// the account it was issued for. Sinks decide how both are presented.
type Notification struct {
	Token   string
	Account *Account
}

// Sink delivers a notification to the account holder. The service treats
// sinks as opaque collaborators: their errors propagate to the caller
// unmodified and are never retried here.
type Sink interface {
	Send(ctx context.Context, n Notification) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, n Notification) error

func (f SinkFunc) Send(ctx context.Context, n Notification) error {
	return f(ctx, n)
}
