package toggle

import (
	"hash/fnv"
	"strconv"
	"sync"
)

const lockShards = 64

// keyedLocks hashes (actor, target, kind) onto a fixed set of mutexes.
// Sharding avoids unbounded growth of a per-key map; distinct triples can
// share a mutex, which only costs a little extra contention.
type keyedLocks struct {
	shards [lockShards]sync.Mutex
}

func newKeyedLocks() *keyedLocks { return &keyedLocks{} }

func (k *keyedLocks) lock(actor, target uint, kind Kind) func() {
	h := fnv.New32a()
	h.Write([]byte(strconv.FormatUint(uint64(actor), 10)))
	h.Write([]byte{'/'})
	h.Write([]byte(strconv.FormatUint(uint64(target), 10)))
	h.Write([]byte{'/'})
	h.Write([]byte(kind))
	m := &k.shards[h.Sum32()%lockShards]
	m.Lock()
	return m.Unlock
}
