// Package batch parses many session files on a bounded worker pool.
package batch

import (
	"context"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/Zuo-Peng/cc-session-search/internal/parse"
)

// FileParser parses one file. *parse.Parser implements it.
type FileParser interface {
	ParseFile(path string) (*parse.Session, error)
}

// Result is the outcome for one file. Exactly one of Session and Err is set.
type Result struct {
	Path    string
	Session *parse.Session
	Err     error
}

// Report holds every per-file outcome plus the counts.
type Report struct {
	// Results are sorted by session id, failures last by path.
	Results []Result
	OK      int
	Failed  int
}

// Sessions returns the successfully parsed sessions in result order.
func (r *Report) Sessions() []*parse.Session {
	out := make([]*parse.Session, 0, r.OK)
	for _, res := range r.Results {
		if res.Session != nil {
			out = append(out, res.Session)
		}
	}
	return out
}

// Failures returns the failed results.
func (r *Report) Failures() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}

// ParseAll parses paths with at most workers files in flight. workers <= 0
// means GOMAXPROCS. A file that fails never stops the others. When ctx is
// done, files not yet started are reported with ctx.Err(); files already
// being parsed run to completion.
func ParseAll(ctx context.Context, paths []string, workers int, p FileParser) *Report {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]Result, len(paths))
	var g errgroup.Group
	g.SetLimit(workers)
	for i, path := range paths {
		i, path := i, path
		results[i].Path = path
		if err := ctx.Err(); err != nil {
			results[i].Err = err
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			s, err := p.ParseFile(path)
			results[i].Session, results[i].Err = s, err
			return nil
		})
	}
	_ = g.Wait()

	rep := &Report{Results: results}
	for _, r := range results {
		if r.Err != nil {
			rep.Failed++
		} else {
			rep.OK++
		}
	}
	sort.SliceStable(rep.Results, func(i, j int) bool {
		a, b := rep.Results[i], rep.Results[j]
		if (a.Err == nil) != (b.Err == nil) {
			return a.Err == nil
		}
		if a.Err == nil {
			if a.Session.Meta.SessionID != b.Session.Meta.SessionID {
				return a.Session.Meta.SessionID < b.Session.Meta.SessionID
			}
		}
		return a.Path < b.Path
	})
	return rep
}
