package serving

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// CacheKey is a deterministic fingerprint of (normalized_text, lang,
// model_version). Comparable, so it can be used directly as a map key
type CacheKey [32]byte

// String returns the hex form, for logs only
func (k CacheKey) String() string { return hex.EncodeToString(k[:8]) }

// KeyFor fingerprints the cache identity of a request
// fields are length-prefixed so ("ab","c") and ("a","bc") cannot collide
func KeyFor(text, lang, modelVersion string) CacheKey {
	h := sha256.New()
	var n [4]byte
	for _, s := range []string{text, lang, modelVersion} {
		binary.BigEndian.PutUint32(n[:], uint32(len(s)))
		h.Write(n[:])
		h.Write([]byte(s))
	}
	var k CacheKey
	h.Sum(k[:0])
	return k
}
