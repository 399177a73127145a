package engine

import (
	"context"
	"fmt"
	"runtime/debug"
)

// Serve processes requests from in sequentially, one to completion before
// the next starts, and writes one response per request to out. It returns
// when ctx is canceled or in is closed. Responses are correlated by id;
// hosts interleaving requests must not rely on response ordering.
//
// A recover around each iteration is the last line of defense for faults in
// the loop itself: such a fault is reported as a diagnostic envelope instead
// of silently killing the worker.
func (e *Engine) Serve(ctx context.Context, in <-chan Request, out chan<- Response) {
	for {
		select {
		case <-ctx.Done():
			return
		case req, ok := <-in:
			if !ok {
				return
			}
			resp := e.serveOne(ctx, req)
			select {
			case out <- resp:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (e *Engine) serveOne(ctx context.Context, req Request) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			resp = failure(correlationID(req), req.Operation, fmt.Sprintf("worker fault: %v", r))
			resp.Stack = string(debug.Stack())
		}
	}()
	return e.Dispatch(ctx, req)
}
