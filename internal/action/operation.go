package action

import "context"

// Operation is the asynchronous work a Controller runs for a debounced input.
// Run may block for as long as it needs; it should return when ctx is done.
type Operation interface {
	Run(ctx context.Context, input string) (bool, error)
}

// OperationFunc adapts an ordinary function to the Operation interface.
type OperationFunc func(ctx context.Context, input string) (bool, error)

func (f OperationFunc) Run(ctx context.Context, input string) (bool, error) {
	return f(ctx, input)
}
