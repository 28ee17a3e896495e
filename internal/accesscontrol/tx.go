package accesscontrol

import (
	"context"
	"sync"
	"time"

	id "visitgate/pkg/domain"
	dErrors "visitgate/pkg/domain-errors"
)

// numFacilityShards spreads facilities over independent locks so gates of
// different facilities never wait on each other.
const numFacilityShards = 128

// defaultCheckInTxTimeout bounds a check-in unit of work whose context has no
// deadline of its own.
const defaultCheckInTxTimeout = 5 * time.Second

// FacilityLockTx serializes check-ins per facility in memory. It is the
// in-process counterpart of the advisory-locked SQL transaction.
type FacilityLockTx struct {
	shards  [numFacilityShards]sync.Mutex
	timeout time.Duration
}

// NewFacilityLockTx returns a lock-based unit of work. A zero timeout uses
// the default.
func NewFacilityLockTx(timeout time.Duration) *FacilityLockTx {
	if timeout <= 0 {
		timeout = defaultCheckInTxTimeout
	}
	return &FacilityLockTx{timeout: timeout}
}

func (t *FacilityLockTx) RunInTx(ctx context.Context, facilityID id.FacilityID, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	shard := &t.shards[shardFor(facilityID)]
	shard.Lock()
	defer shard.Unlock()

	// Waiting for the lock may have used up the deadline.
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	return fn(ctx)
}

// shardFor hashes the facility ID with FNV-1a.
func shardFor(facilityID id.FacilityID) int {
	const (
		fnvOffset = 2166136261
		fnvPrime  = 16777619
	)
	h := uint32(fnvOffset)
	for _, b := range facilityID {
		h ^= uint32(b)
		h *= fnvPrime
	}
	return int(h % numFacilityShards)
}
