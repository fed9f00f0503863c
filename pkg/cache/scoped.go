package cache

// ScopedKeyer wraps a Keyer with a prefix so that several projects, or
// several versions of the simulator, can share one Redis instance without
// reading each other's entries.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "coalsim:v1:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// TreeKey generates a prefixed key for a seeded simulation.
func (k *ScopedKeyer) TreeKey(opts TreeKeyOpts) string {
	return k.prefix + k.inner.TreeKey(opts)
}

// BatchKey generates a prefixed key for a seeded batch.
func (k *ScopedKeyer) BatchKey(opts BatchKeyOpts) string {
	return k.prefix + k.inner.BatchKey(opts)
}
