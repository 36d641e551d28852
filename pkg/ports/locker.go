package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a record lock taken by a DistributedLocker.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serializes writes to one saved record across every
// process sharing the same library backend. The library service takes the
// lock around each save and delete, keyed by category and record name, so
// two editors saving "portrait" at once never interleave their writes.
type DistributedLocker interface {
	// Lock blocks until the record key is held, ctx is done or the attempt
	// fails. The lock expires after ttl if the holder never releases it.
	// The returned UnlockFunc must be called once the write is finished.
	Lock(ctx context.Context, recordKey string, ttl time.Duration) (UnlockFunc, error)
}
