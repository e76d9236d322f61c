package parse

import "sort"

// DefaultModel is assumed for records that do not name a model. It is also
// the price table entry used for unknown model ids.
const DefaultModel = "claude-sonnet-4-5-20250929"

// cacheReadDiscount is the fraction of the input price charged for cache reads.
const cacheReadDiscount = 0.1

// ModelPrice holds per-million-token rates in USD.
type ModelPrice struct {
	Input  float64 `toml:"input"`
	Output float64 `toml:"output"`
}

var builtinPrices = map[string]ModelPrice{
	"claude-opus-4-1-20250805":   {Input: 15.00, Output: 75.00},
	"claude-opus-4-20250514":     {Input: 15.00, Output: 75.00},
	"claude-sonnet-4-5-20250929": {Input: 3.00, Output: 15.00},
	"claude-sonnet-4-20250514":   {Input: 3.00, Output: 15.00},
	"claude-haiku-4-5-20251001":  {Input: 1.00, Output: 5.00},
	"claude-3-7-sonnet-20250219": {Input: 3.00, Output: 15.00},
	"claude-3-5-sonnet-20241022": {Input: 3.00, Output: 15.00},
	"claude-3-5-sonnet-20240620": {Input: 3.00, Output: 15.00},
	"claude-3-5-haiku-20241022":  {Input: 0.80, Output: 4.00},
	"claude-3-opus-20240229":     {Input: 15.00, Output: 75.00},
	"claude-3-sonnet-20240229":   {Input: 3.00, Output: 15.00},
	"claude-3-haiku-20240307":    {Input: 0.25, Output: 1.25},
}

// PriceTable maps exact model ids to prices, with a designated fallback.
type PriceTable struct {
	prices   map[string]ModelPrice
	fallback string
}

// NewPriceTable returns the built-in table with overrides applied on top.
func NewPriceTable(overrides map[string]ModelPrice) *PriceTable {
	t := &PriceTable{
		prices:   make(map[string]ModelPrice, len(builtinPrices)+len(overrides)),
		fallback: DefaultModel,
	}
	for id, p := range builtinPrices {
		t.prices[id] = p
	}
	for id, p := range overrides {
		t.prices[id] = p
	}
	return t
}

// Lookup returns the price for model. ok is false when the fallback entry
// was used.
func (t *PriceTable) Lookup(model string) (price ModelPrice, ok bool) {
	if p, found := t.prices[model]; found {
		return p, true
	}
	return t.prices[t.fallback], false
}

// Fallback is the model id whose price is used for unknown models.
func (t *PriceTable) Fallback() string { return t.fallback }

// Models lists the known model ids, sorted.
func (t *PriceTable) Models() []string {
	ids := make([]string, 0, len(t.prices))
	for id := range t.prices {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Cost prices one assistant turn. Cache writes are charged at the input
// rate and cache reads at a tenth of it.
func (p ModelPrice) Cost(u Usage) float64 {
	const mtok = 1_000_000.0
	return float64(u.Input)/mtok*p.Input +
		float64(u.Output)/mtok*p.Output +
		float64(u.CacheWrite)/mtok*p.Input +
		float64(u.CacheRead)/mtok*(p.Input*cacheReadDiscount)
}
