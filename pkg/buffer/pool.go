// Package buffer pools byte slices by power-of-two size class.
//
// The in-memory ledger copies every account's data before each call so it can
// roll back; those copies are short-lived and sized like account data, which
// makes them a good fit for pooling.
package buffer

import (
	"math/bits"
	"sync"
)

// MaxPooled is the largest size class kept in a pool. Larger requests are
// allocated directly.
const MaxPooled = 64 * 1024

type Pool struct {
	pools map[int]*sync.Pool
}

var globalPool = NewPool()

func NewPool() *Pool {
	p := &Pool{
		pools: make(map[int]*sync.Pool),
	}

	for size := 64; size <= MaxPooled; size <<= 1 {
		poolSize := size
		p.pools[size] = &sync.Pool{
			New: func() any {
				buf := make([]byte, poolSize)
				return &buf
			},
		}
	}

	return p
}

// Get returns a zeroed slice of length size.
func (p *Pool) Get(size int) []byte {
	if size <= 0 {
		return nil
	}

	pool, ok := p.pools[sizeClass(size)]
	if !ok {
		return make([]byte, size)
	}

	bufPtr := pool.Get().(*[]byte)
	return (*bufPtr)[:size]
}

// Put returns buf to its size class. Slices that did not come from Get are
// dropped.
func (p *Pool) Put(buf []byte) {
	if cap(buf) == 0 {
		return
	}

	pool, ok := p.pools[cap(buf)]
	if !ok {
		return
	}

	buf = buf[:cap(buf)]
	clear(buf)
	pool.Put(&buf)
}

// Clone copies src into a pooled slice. A nil or empty src yields nil.
func (p *Pool) Clone(src []byte) []byte {
	dst := p.Get(len(src))
	copy(dst, src)
	return dst
}

func sizeClass(n int) int {
	if n <= 64 {
		return 64
	}
	if n&(n-1) == 0 {
		return n
	}
	return 1 << bits.Len(uint(n))
}

func GetBuffer(size int) []byte {
	return globalPool.Get(size)
}

func PutBuffer(buf []byte) {
	globalPool.Put(buf)
}

func Clone(src []byte) []byte {
	return globalPool.Clone(src)
}
