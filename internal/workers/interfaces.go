// Package workers manages the client's long-running background components
// (feed pollers, the connectivity monitor) as one group with a shared
// lifecycle.
package workers

import "context"

// Worker is a background component with an explicit lifecycle. Start must not
// block; Stop must wait until the worker has fully exited and must be safe to
// call repeatedly.
type Worker interface {
	Start(ctx context.Context)
	Stop()
}
