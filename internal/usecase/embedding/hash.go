// Package embedding produces deterministic pseudo-embeddings for receipts.
// They are hash-derived placeholders, not semantic vectors: good enough to
// exercise the storage pipeline, useless for similarity search.
package embedding

import (
	"crypto/md5" //nolint:gosec // not used for security, only as a stable hash
	"encoding/hex"
)

// Dim is the vector dimensionality.
const Dim = 768

// HashEmbedder derives a fixed-size vector from the md5 digest of the text.
// Identical text always yields an identical vector.
type HashEmbedder struct{}

// NewHashEmbedder creates a HashEmbedder.
func NewHashEmbedder() *HashEmbedder {
	return &HashEmbedder{}
}

// Embed converts text to a Dim-sized vector. Each component is a hex byte
// pair of the digest scaled to [0, 1], the digest repeated until the vector
// is full. Never fails.
func (e *HashEmbedder) Embed(text string) []float64 {
	sum := md5.Sum([]byte(text)) //nolint:gosec
	digest := hex.EncodeToString(sum[:])

	vec := make([]float64, Dim)
	for i := 0; i < Dim; i++ {
		p := (i * 2) % len(digest)
		b, err := hex.DecodeString(digest[p : p+2])
		if err != nil || len(b) == 0 {
			continue
		}
		vec[i] = float64(b[0]) / 255.0
	}
	return vec
}
