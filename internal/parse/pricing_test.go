package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriceTable_Lookup(t *testing.T) {
	table := NewPriceTable(nil)

	p, ok := table.Lookup("claude-3-haiku-20240307")
	assert.True(t, ok)
	assert.Equal(t, ModelPrice{Input: 0.25, Output: 1.25}, p)

	p, ok = table.Lookup("some-future-model")
	assert.False(t, ok)
	assert.Equal(t, builtinPrices[DefaultModel], p)
}

func TestPriceTable_Overrides(t *testing.T) {
	table := NewPriceTable(map[string]ModelPrice{
		"claude-3-haiku-20240307": {Input: 1, Output: 2},
		"local-model":             {Input: 0, Output: 0},
	})

	p, ok := table.Lookup("claude-3-haiku-20240307")
	assert.True(t, ok)
	assert.Equal(t, 1.0, p.Input)

	_, ok = table.Lookup("local-model")
	assert.True(t, ok)
	assert.Contains(t, table.Models(), "local-model")
}

func TestModelPrice_Cost(t *testing.T) {
	p := ModelPrice{Input: 3, Output: 15}

	assert.InDelta(t, 3.0, p.Cost(Usage{Input: 1_000_000}), 1e-9)
	assert.InDelta(t, 15.0, p.Cost(Usage{Output: 1_000_000}), 1e-9)
	assert.InDelta(t, 3.0, p.Cost(Usage{CacheWrite: 1_000_000}), 1e-9)
	assert.InDelta(t, 0.3, p.Cost(Usage{CacheRead: 1_000_000}), 1e-9)
}
