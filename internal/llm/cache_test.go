package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingEmbedder returns a fixed vector and counts calls.
type countingEmbedder struct {
	calls int
}

func (e *countingEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.calls++
	return []float32{float32(len(text)), 1, 0}, nil
}

func (e *countingEmbedder) Close() error { return nil }

func TestCachedEmbedder_HitsCache(t *testing.T) {
	delegate := &countingEmbedder{}
	cached, err := NewCachedEmbedder(delegate, 8)
	require.NoError(t, err)

	ctx := context.Background()

	first, err := cached.Embed(ctx, "kubernetes")
	require.NoError(t, err)
	second, err := cached.Embed(ctx, "kubernetes")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, delegate.calls)

	_, err = cached.Embed(ctx, "terraform")
	require.NoError(t, err)
	assert.Equal(t, 2, delegate.calls)
}

func TestCachedEmbedder_Eviction(t *testing.T) {
	delegate := &countingEmbedder{}
	cached, err := NewCachedEmbedder(delegate, 1)
	require.NoError(t, err)

	ctx := context.Background()

	_, _ = cached.Embed(ctx, "a")
	_, _ = cached.Embed(ctx, "b") // evicts "a"
	_, _ = cached.Embed(ctx, "a")

	assert.Equal(t, 3, delegate.calls)
}

func TestCleanJSONBlock(t *testing.T) {
	assert.Equal(t, `{"a":1}`, cleanJSONBlock("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, cleanJSONBlock(`{"a":1}`))
	assert.Equal(t, `{"a":1}`, cleanJSONBlock("```\n{\"a\":1}\n```"))
}
