package sender

import (
	"context"
)

// ParallelRequests wraps parallel requests to one Sendable interface.
type ParallelRequests []Sendable

// Parallel wraps parallel requests to one Sendable interface.
func Parallel(requests ...Sendable) ParallelRequests {
	return requests
}

func (v ParallelRequests) SendOrErr(ctx context.Context, sender Sender) error {
	wg := NewWaitGroup(ctx, sender)
	for _, r := range v {
		wg.Send(r)
	}
	return wg.Wait()
}
