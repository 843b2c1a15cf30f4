package engine

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/moby/locker"
)

// KeyedMutex serializes work per key on top of a moby locker, which drops
// a key's entry once no goroutine holds or waits for it.
type KeyedMutex struct {
	l *locker.Locker
}

// NewKeyedMutex returns an empty KeyedMutex.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{l: locker.New()}
}

// Lock blocks until key is free and returns the matching unlock function.
func (k *KeyedMutex) Lock(key string) (unlock func()) {
	k.l.Lock(key)
	return func() {
		// Unlock only fails for a key that is not locked, which the
		// returned closure cannot produce.
		_ = k.l.Unlock(key)
	}
}

// lockKey hashes the parts into a fixed-size key so long texts do not pin
// memory in the lock table.
func lockKey(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
