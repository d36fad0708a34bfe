package pledge

import (
	"hash/fnv"
	"sync"

	"github.com/google/uuid"
)

const lockStripes = 64

// pledgeLocks provides per-pledge-id mutual exclusion via striped
// mutexes. Two distinct ids may share a stripe; that costs a little
// parallelism, never correctness.
type pledgeLocks struct {
	stripes [lockStripes]sync.Mutex
}

func (l *pledgeLocks) acquire(id uuid.UUID) *sync.Mutex {
	h := fnv.New32a()
	h.Write(id[:])
	mu := &l.stripes[h.Sum32()%lockStripes]
	mu.Lock()
	return mu
}
