package event

import "context"

// Listener handles one event.
// An error from a synchronous listener stops the chain and is returned by Dispatch;
// ErrStopPropagation stops the chain without being an error.
type Listener interface {
	Handle(ctx context.Context, event Event) error
}

// ListenerFunc adapts a function to Listener
type ListenerFunc func(ctx context.Context, event Event) error

func (f ListenerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}
