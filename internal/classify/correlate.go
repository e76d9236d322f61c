package classify

import (
	"github.com/samber/lo"

	"github.com/Zuo-Peng/cc-session-search/internal/parse"
)

// Correlation links tool call ids to message positions in one session.
// Indices refer to the unfiltered message slice.
type Correlation struct {
	// Calls maps a call id to the index of the assistant message issuing it.
	Calls map[string]int
	// Results maps a call id to the index of the message answering it.
	Results map[string]int
}

// Correlate builds both maps in a single pass.
func Correlate(msgs []parse.ParsedMessage) Correlation {
	c := Correlation{Calls: make(map[string]int), Results: make(map[string]int)}
	for i, m := range msgs {
		switch m.Role {
		case parse.RoleAssistant:
			for _, call := range m.Calls() {
				if call.ID != "" {
					c.Calls[call.ID] = i
				}
			}
		case parse.RoleTool:
			if id := m.ResultID(); id != "" {
				c.Results[id] = i
			}
		}
	}
	return c
}

// ResultFor returns the index of the result answering the call id.
func (c Correlation) ResultFor(id string) (int, bool) {
	i, ok := c.Results[id]
	return i, ok
}

// CallFor returns the index of the message that issued the call id.
func (c Correlation) CallFor(id string) (int, bool) {
	i, ok := c.Calls[id]
	return i, ok
}

// Orphans lists call ids that have no result, in no particular order.
func (c Correlation) Orphans() []string {
	return lo.Filter(lo.Keys(c.Calls), func(id string, _ int) bool {
		_, answered := c.Results[id]
		return !answered
	})
}
