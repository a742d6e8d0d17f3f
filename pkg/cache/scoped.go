package cache

// ScopedKeyer wraps a Keyer with a prefix, giving separate namespaces to
// callers that share one cache directory (for example different datasets).
//
//	k := NewScopedKeyer(NewDefaultKeyer(), "dataset:kidney:")
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

// SampleKey generates a prefixed sample key.
func (k *ScopedKeyer) SampleKey(inputHash, configHash string, seed uint64, index int) string {
	return k.prefix + k.inner.SampleKey(inputHash, configHash, seed, index)
}
