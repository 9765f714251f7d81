package store

import "sync"

// keyPool provides reusable byte slices for building database keys.
// This reduces allocations on the hot path of database operations.
var keyPool = sync.Pool{
	New: func() any {
		// 256 bytes covers prefix + owner id + separator + NanoID.
		return make([]byte, 0, 256)
	},
}

// buildKey constructs a database key from a prefix and path segments joined
// with ':' using a pooled buffer. Callers MUST call releaseKey when done.
//
// Pooled keys are for read paths only. Badger retains key slices passed to
// Txn.Set/Txn.Delete until the transaction commits, which happens after the
// Update closure returns; a pooled buffer released inside the closure can be
// reused and overwritten while the commit still reads it. Write transactions
// use newKey instead.
//
// Usage:
//
//	key := buildKey(contactPrefix, ownerID, contactID)
//	defer releaseKey(key)
//	item, err := txn.Get(key)
func buildKey(prefix string, segments ...string) []byte {
	buf, _ := keyPool.Get().([]byte)
	buf = buf[:0] // Reset length, keep capacity
	buf = append(buf, prefix...)
	for i, seg := range segments {
		if i > 0 {
			buf = append(buf, ':')
		}
		buf = append(buf, seg...)
	}
	return buf
}

// newKey constructs a database key as a fresh allocation, safe to hand to
// Txn.Set/Txn.Delete inside an Update closure.
func newKey(prefix string, segments ...string) []byte {
	size := len(prefix)
	for _, seg := range segments {
		size += len(seg) + 1
	}
	key := make([]byte, 0, size)
	key = append(key, prefix...)
	for i, seg := range segments {
		if i > 0 {
			key = append(key, ':')
		}
		key = append(key, seg...)
	}
	return key
}

// releaseKey returns a key buffer to the pool for reuse.
// After calling this, the key slice must not be used.
func releaseKey(key []byte) {
	// Avoid keeping oversized buffers in the pool.
	if cap(key) <= 512 {
		keyPool.Put(key[:0])
	}
}
