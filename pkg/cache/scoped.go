package cache

// ScopedKeyer wraps a Keyer with a prefix for per-tenant or per-deployment
// isolation. This is useful when a single Redis instance backs the layout
// cache for several API deployments that must not see each other's entries.
//
// Example usage:
//
//	// Tenant-specific keys
//	tenantKeyer := NewScopedKeyer(NewDefaultKeyer(), "tenant:abc123:")
//
//	// Shared keys across the default deployment
//	globalKeyer := NewDefaultKeyer()
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

// LayoutKey generates a prefixed key for layout caching.
func (k *ScopedKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(graphHash, opts)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}
