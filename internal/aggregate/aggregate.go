// Package aggregate combines the metrics of a root session and the
// subagent sessions it spawned.
package aggregate

import (
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/Zuo-Peng/cc-session-search/internal/parse"
)

// Totals are the combined metrics of a root session and its subagents.
type Totals struct {
	SessionID string

	RootTokens     int64
	RootCost       float64
	SubagentTokens int64
	SubagentCost   float64

	TotalTokens  int64
	TotalCost    float64
	SessionCount int

	// Children are the subagent sessions that were counted.
	Children []*parse.Session
}

// SubagentShare is the fraction of the total cost spent in subagents.
func (t Totals) SubagentShare() float64 {
	if t.TotalCost == 0 {
		return 0
	}
	return t.SubagentCost / t.TotalCost
}

// Combine adds the metrics of children to those of root. Only children
// that are subagents of root (by ParentSessionID) are counted; discovery of
// candidate files is up to the caller.
func Combine(root *parse.Session, children []*parse.Session) Totals {
	kids := lo.Filter(children, func(s *parse.Session, _ int) bool {
		return s != nil && s.Meta.IsSubagent && s.Meta.ParentSessionID == root.Meta.SessionID
	})

	t := Totals{
		SessionID:  root.Meta.SessionID,
		RootTokens: root.Tokens(),
		RootCost:   root.Cost(),
		Children:   kids,
	}
	t.SubagentTokens = lo.SumBy(kids, func(s *parse.Session) int64 { return s.Tokens() })
	t.SubagentCost = lo.SumBy(kids, func(s *parse.Session) float64 { return s.Cost() })
	t.TotalTokens = t.RootTokens + t.SubagentTokens
	t.TotalCost = t.RootCost + t.SubagentCost
	t.SessionCount = 1 + len(kids)
	return t
}

// Group pairs every root session in sessions with its subagents and
// combines them. Subagents whose parent is missing are dropped. The result
// follows the order of the roots in sessions.
func Group(sessions []*parse.Session) []Totals {
	byParent := lo.GroupBy(
		lo.Filter(sessions, func(s *parse.Session, _ int) bool { return s.Meta.IsSubagent }),
		func(s *parse.Session) string { return s.Meta.ParentSessionID },
	)
	var out []Totals
	for _, s := range sessions {
		if s.Meta.IsSubagent {
			continue
		}
		out = append(out, Combine(s, byParent[s.Meta.SessionID]))
	}
	return out
}

// Duration formats the time between start and end as "1h 2m 3s", "2m 3s"
// or "3s". It returns "N/A" when either bound is missing.
func Duration(start, end time.Time) string {
	if start.IsZero() || end.IsZero() {
		return "N/A"
	}
	total := int(end.Sub(start).Seconds())
	h, m, s := total/3600, total%3600/60, total%60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
