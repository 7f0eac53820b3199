//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: bassosimone/nop observeconn.go's once-semantics resource
// wrapper, applied to pooled byte buffers instead of a net.Conn; sizing
// classes per spec.md §4.4.
//

package kernel

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/ytflowcore/ytflowcore/flow"
)

// BufferPool hands out pool-backed [flow.Buffer] values from a fixed set of
// size classes, reserving a fixed headroom in every buffer so codecs can
// prepend headers without reallocating (spec.md §4.4 "Buffer").
//
// A BufferPool is safe for concurrent use.
type BufferPool struct {
	classes  []int
	pools    []*sync.Pool
	headroom int

	outstanding int64
}

// NewBufferPool returns a [*BufferPool] with the given size classes (sorted
// ascending internally) and per-buffer headroom.
func NewBufferPool(classes []int, headroom int) *BufferPool {
	sorted := append([]int(nil), classes...)
	sort.Ints(sorted)

	p := &BufferPool{classes: sorted, headroom: headroom}
	p.pools = make([]*sync.Pool, len(sorted))
	for i, size := range sorted {
		size := size
		p.pools[i] = &sync.Pool{
			New: func() any {
				return make([]byte, size+headroom)
			},
		}
	}
	return p
}

// Get returns a [*flow.Buffer] whose tailroom can hold at least need bytes
// of payload, picked from the smallest size class that fits. It panics if
// need exceeds the pool's largest size class, since no amount of retrying
// will satisfy the request.
func (p *BufferPool) Get(need int) *flow.Buffer {
	idx := p.classFor(need)
	backing := p.pools[idx].Get().([]byte)

	var released int32
	release := func() {
		if atomic.CompareAndSwapInt32(&released, 0, 1) {
			atomic.AddInt64(&p.outstanding, -1)
			p.pools[idx].Put(backing[:cap(backing)])
		}
	}

	atomic.AddInt64(&p.outstanding, 1)
	return flow.NewPooledBuffer(backing, p.headroom, release)
}

// classFor returns the index of the smallest size class whose payload
// capacity (class size minus headroom is not subtracted: classes name
// payload capacity, headroom is additional) is >= need.
func (p *BufferPool) classFor(need int) int {
	for i, size := range p.classes {
		if need <= size {
			return i
		}
	}
	panic(fmt.Sprintf("kernel: buffer request of %d bytes exceeds largest size class %d", need, p.classes[len(p.classes)-1]))
}

// Outstanding returns the number of buffers currently checked out, for
// leak-detection assertions in tests (spec.md §8 "Buffer pool accounting").
func (p *BufferPool) Outstanding() int64 {
	return atomic.LoadInt64(&p.outstanding)
}
