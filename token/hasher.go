package token

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Hasher turns raw random bytes into an opaque identifier suitable as a store key.
// Implementations must be deterministic.
type Hasher interface {
	Hash(b []byte) string
}

// Blake2bHasher digests with BLAKE2b-256 and hex encodes the sum (64 characters).
type Blake2bHasher struct{}

var _ Hasher = Blake2bHasher{}

// NewBlake2bHasher returns the default Hasher.
func NewBlake2bHasher() Blake2bHasher {
	return Blake2bHasher{}
}

func (Blake2bHasher) Hash(b []byte) string {
	sum := blake2b.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// NewID derives a fresh identifier as hasher.Hash(generator.Generate(size)).
func NewID(generator Generator, hasher Hasher, size int) (string, error) {
	raw, err := generator.Generate(size)
	if err != nil {
		return "", err
	}
	return hasher.Hash(raw), nil
}
