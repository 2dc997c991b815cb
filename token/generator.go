package token

import (
	"crypto/rand"
	"fmt"
)

// Generator produces cryptographically strong random byte sequences.
type Generator interface {
	Generate(size int) ([]byte, error)
}

// RandomGenerator reads from crypto/rand.
type RandomGenerator struct{}

var _ Generator = RandomGenerator{}

// NewRandomGenerator returns the default Generator.
func NewRandomGenerator() RandomGenerator {
	return RandomGenerator{}
}

func (RandomGenerator) Generate(size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("token size must be positive, got %d", size)
	}
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return b, nil
}
