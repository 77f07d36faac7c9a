package cache

// ScopedKeyer prefixes every key, isolating runs that share one
// backing store. The serve API scopes by manifest so two documents
// with identical group IDs never collide on cached tiles.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner with a key prefix.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) TileKey(groupID string, sources []string, opts any) string {
	return k.prefix + k.inner.TileKey(groupID, sources, opts)
}
