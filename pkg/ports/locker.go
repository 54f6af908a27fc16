package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker coordinates session access across replicas. The
// session manager serializes updates per key within one process; a locker
// extends that guarantee to a fleet.
type DistributedLocker interface {
	// Lock acquires the lock for a key, blocking until it is held or the
	// context is canceled. The TTL bounds how long a crashed holder can
	// keep the key locked. The returned UnlockFunc MUST be called to
	// release the lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
