package resampler

// Test hooks into unexported state. Only compiled into test builds.

// InputPosition returns the absolute input position of the window in frames.
func (r *Resampler) InputPosition() float64 {
	return r.state.Position().Float()
}

// CacheLen returns the number of valid cached frames.
func (r *Resampler) CacheLen() int {
	return r.cache.Len()
}

// CacheAligned reports whether the cache and the client scratch buffers are
// aligned for every channel.
func (r *Resampler) CacheAligned() bool {
	return r.cache.Aligned() && r.bridge.scratch.Aligned()
}
