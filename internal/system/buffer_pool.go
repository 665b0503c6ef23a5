package system

import (
	"image"
	"sync"
)

// DefaultPoolSizes bounds how many distinct rectangles the process-wide pool
// keeps buffers for.
const DefaultPoolSizes = 16

// ImagePool recycles *image.RGBA scratch buffers, one sync.Pool per
// rectangle. Buffers come back dirty; callers clear what they need.
//
// Once maxSizes rectangles are tracked, buffers for any other rectangle are
// allocated fresh and dropped on Put.
type ImagePool struct {
	mu       sync.RWMutex
	pools    map[image.Rectangle]*sync.Pool
	maxSizes int
}

// NewImagePool returns an empty pool tracking at most maxSizes rectangles.
// A non-positive maxSizes means DefaultPoolSizes.
func NewImagePool(maxSizes int) *ImagePool {
	if maxSizes <= 0 {
		maxSizes = DefaultPoolSizes
	}
	return &ImagePool{
		pools:    make(map[image.Rectangle]*sync.Pool),
		maxSizes: maxSizes,
	}
}

var globalPool = NewImagePool(DefaultPoolSizes)

// GetImage takes a buffer for rect from the process-wide pool.
func GetImage(rect image.Rectangle) *image.RGBA {
	return globalPool.Get(rect)
}

// PutImage returns img to the process-wide pool.
func PutImage(img *image.RGBA) {
	globalPool.Put(img)
}

// Get returns a buffer with exactly rect as bounds.
func (p *ImagePool) Get(rect image.Rectangle) *image.RGBA {
	p.mu.RLock()
	pool, ok := p.pools[rect]
	p.mu.RUnlock()

	if !ok {
		p.mu.Lock()
		if pool, ok = p.pools[rect]; !ok {
			if len(p.pools) >= p.maxSizes {
				p.mu.Unlock()
				return image.NewRGBA(rect)
			}
			pool = &sync.Pool{
				New: func() any { return image.NewRGBA(rect) },
			}
			p.pools[rect] = pool
		}
		p.mu.Unlock()
	}

	return pool.Get().(*image.RGBA)
}

// Put hands img back. Buffers for rectangles the pool does not track are
// dropped.
func (p *ImagePool) Put(img *image.RGBA) {
	if img == nil {
		return
	}

	p.mu.RLock()
	pool, ok := p.pools[img.Rect]
	p.mu.RUnlock()

	if ok {
		pool.Put(img)
	}
}
