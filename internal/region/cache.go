// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package region

import "sync"

type rectKey struct {
	width, height  int
	patchW, patchH int
	layout         Layout
}

// Cache memoizes resolved rectangle triples. Resolution is cheap but runs
// once per frame on the hot path, and the cache also gives tests a handle
// on geometry reuse instead of a hidden process-wide singleton.
type Cache struct {
	mu sync.RWMutex
	m  map[rectKey][SlotCount]Rect
}

func NewCache() *Cache {
	return &Cache{m: make(map[rectKey][SlotCount]Rect)}
}

// Resolve returns the rectangle triple for the given inputs, computing and
// storing it on first use. Reads are lock-free in the steady state apart
// from the RWMutex read lock.
func (c *Cache) Resolve(geo VideoGeometry, layout Layout, patchW, patchH int) [SlotCount]Rect {
	key := rectKey{width: geo.Width, height: geo.Height, patchW: patchW, patchH: patchH, layout: layout}

	c.mu.RLock()
	rects, ok := c.m[key]
	c.mu.RUnlock()
	if ok {
		return rects
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if rects, ok = c.m[key]; ok {
		return rects
	}
	rects = Resolve(geo, layout, patchW, patchH)
	c.m[key] = rects
	return rects
}

// Len reports the number of distinct geometry keys resolved so far.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}
