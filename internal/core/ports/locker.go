package ports

import "context"

// Locker serializes work on a named resource across replicas.
type Locker interface {
	// Lock blocks until name is held or the wait gives up, in which case the
	// error wraps domain.ErrRequestInFlight. The returned func releases it.
	Lock(ctx context.Context, name string) (unlock func(), err error)
}
