package cache

// ScopedKeyer wraps a Keyer with a prefix so that several deployments
// (staging, production) can share one Redis instance without collisions.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
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

// AlbumKey generates a prefixed album key.
func (k *ScopedKeyer) AlbumKey(slug string) string {
	return k.prefix + k.inner.AlbumKey(slug)
}

// FeaturedKey generates a prefixed featured-photos key.
func (k *ScopedKeyer) FeaturedKey() string {
	return k.prefix + k.inner.FeaturedKey()
}

// SizeKey generates a prefixed image size key.
func (k *ScopedKeyer) SizeKey(url string) string {
	return k.prefix + k.inner.SizeKey(url)
}

// LayoutKey generates a prefixed layout key.
func (k *ScopedKeyer) LayoutKey(imagesHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(imagesHash, opts)
}
