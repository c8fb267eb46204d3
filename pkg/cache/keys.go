package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Keyer builds cache keys.
type Keyer interface {
	// HTTPKey returns the key of a registry response. namespace identifies
	// the registry and endpoint (e.g. "metacpan:release:").
	HTTPKey(namespace, key string) string
}

// DefaultKeyer produces "http:<namespace><key>" keys.
type DefaultKeyer struct{}

func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + key
}

// ScopedKeyer prefixes every key of an inner Keyer.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or the default keyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// MirrorKeyer scopes keys to one registry base URL, so responses from a
// mirror never answer for the public registry in a shared store.
func MirrorKeyer(baseURL string) Keyer {
	return NewScopedKeyer(nil, "mirror:"+Hash([]byte(baseURL))[:12]+":")
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
