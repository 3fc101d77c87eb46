package caching

import (
	"sync"

	"github.com/vaultfs/vaultfs/pkg/blockstore"
)

const lockStripes = 64

// keyLocks serializes operations on the same key with striped mutexes.
// Keys are uniformly random, so the first byte spreads load evenly
// across stripes; distinct keys rarely contend.
type keyLocks struct {
	stripes [lockStripes]sync.Mutex
}

func (k *keyLocks) lock(key blockstore.Key) *sync.Mutex {
	return &k.stripes[int(key[0])%lockStripes]
}
