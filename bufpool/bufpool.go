// Package bufpool provides reusable byte buffers to reduce allocation
// pressure in the hot path of binary field decoding.
package bufpool

import "sync"

// ByteSlicePool holds scratch buffers for reading length-prefixed fields.
var ByteSlicePool = sync.Pool{
	New: func() interface{} {
		b := make([]byte, 0, 4096)
		return &b
	},
}

// GetByteSlice gets a scratch byte slice from the pool, reset to length 0.
func GetByteSlice() *[]byte {
	b := ByteSlicePool.Get().(*[]byte)
	*b = (*b)[:0]
	return b
}

// PutByteSlice returns a byte slice to the pool. Oversized buffers are
// dropped rather than pooled, so one huge record doesn't pin memory.
func PutByteSlice(b *[]byte) {
	if cap(*b) > 1024*1024 {
		return
	}
	ByteSlicePool.Put(b)
}
