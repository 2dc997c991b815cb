package token_test

import (
	"errors"
	"testing"

	"github.com/jrsteele09/go-oidc-session/token"
	"github.com/stretchr/testify/require"
)

type failingGenerator struct{}

func (failingGenerator) Generate(int) ([]byte, error) {
	return nil, errors.New("entropy exhausted")
}

func TestRandomGenerator_Generate(t *testing.T) {
	g := token.NewRandomGenerator()

	t.Run("requested size", func(t *testing.T) {
		b, err := g.Generate(128)
		require.NoError(t, err)
		require.Len(t, b, 128)
	})

	t.Run("distinct output", func(t *testing.T) {
		a, err := g.Generate(32)
		require.NoError(t, err)
		b, err := g.Generate(32)
		require.NoError(t, err)
		require.NotEqual(t, a, b)
	})

	t.Run("non positive size", func(t *testing.T) {
		_, err := g.Generate(0)
		require.Error(t, err)
		require.Contains(t, err.Error(), "must be positive")
	})
}

func TestBlake2bHasher_Hash(t *testing.T) {
	h := token.NewBlake2bHasher()

	first := h.Hash([]byte("seed"))
	require.Len(t, first, 64)
	require.Equal(t, first, h.Hash([]byte("seed")))
	require.NotEqual(t, first, h.Hash([]byte("other")))
}

func TestNewID(t *testing.T) {
	t.Run("hash of generated bytes", func(t *testing.T) {
		id, err := token.NewID(token.NewRandomGenerator(), token.NewBlake2bHasher(), 128)
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(id), 32)
	})

	t.Run("generator failure", func(t *testing.T) {
		_, err := token.NewID(failingGenerator{}, token.NewBlake2bHasher(), 128)
		require.Error(t, err)
		require.Contains(t, err.Error(), "entropy exhausted")
	})
}
