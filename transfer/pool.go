package transfer

import "sync"

const (
	// Pool limits to prevent memory bloat
	poolMaxCap  = 4096 // max bytes retained per scratch buffer
	poolInitCap = 64
)

// Scratch buffer pool staging whole-payload results, such as a
// serialized model, before they are copied into the caller's buffer.
var scratchPool = sync.Pool{
	New: func() any {
		buf := make([]byte, 0, poolInitCap)
		return &buf
	},
}

// GetScratch returns a reusable byte buffer with zero length.
func GetScratch() *[]byte {
	return scratchPool.Get().(*[]byte)
}

// PutScratch returns a buffer to the pool. Oversized buffers are
// rejected so one large payload does not pin memory.
func PutScratch(buf *[]byte) {
	if buf == nil || cap(*buf) > poolMaxCap {
		return
	}
	*buf = (*buf)[:0]
	scratchPool.Put(buf)
}
