package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Zuo-Peng/cc-session-search/internal/classify"
	"github.com/Zuo-Peng/cc-session-search/internal/search"
	"github.com/Zuo-Peng/cc-session-search/internal/tui"
)

const (
	sColorReset   = "\033[0m"
	sColorBoldRed = "\033[1;31m"
	sColorBlue    = "\033[1;34m"
	sColorYellow  = "\033[1;33m"
	sColorDim     = "\033[2m"
)

func colorizeKind(kind string) string {
	if kind == "subagent" {
		return sColorYellow + kind + sColorReset
	}
	return sColorBlue + kind + sColorReset
}

func colorizeSnippet(snippet string) string {
	snippet = strings.ReplaceAll(snippet, ">>>", sColorBoldRed)
	snippet = strings.ReplaceAll(snippet, "<<<", sColorReset)
	return snippet
}

// categoryFilter resolves --filter to category names. Both group names
// ("tools", "MCP only") and single categories ("mcp_result") are accepted.
func categoryFilter(name string) ([]string, error) {
	if name == "" {
		return nil, nil
	}
	if g, ok := classify.GroupByName(name); ok {
		return lo.Map(g.Categories, func(c classify.Category, _ int) string { return string(c) }), nil
	}
	if c := classify.Category(name); c.Valid() {
		return []string{name}, nil
	}
	return nil, fmt.Errorf("unknown filter %q", name)
}

func tsvField(s string) string {
	s = strings.ReplaceAll(s, "\t", " ")
	return strings.ReplaceAll(s, "\n", " ")
}

func searchCmd() *cobra.Command {
	var project, role, filter, since string
	var subagents bool
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Full-text search across indexed sessions",
		Long: `Search indexed messages using FTS5 (substring match for CJK queries).
On a terminal this opens the interactive browser. Otherwise output is TSV:
  sessionId, msgIdx, updatedAt, kind, project, category, summary, snippet

Example fzf integration:
  ccsf() {
    ccs search "$*" | fzf \
      --ansi \
      --delimiter='\t' --with-nth=3.. \
      --preview 'ccs preview {1} --hit {2} --context 5 --query {q}' \
      --preview-window=right:60%:wrap \
      --bind 'enter:execute(ccs open {1} --hit {2})'
  }`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cats, err := categoryFilter(filter)
			if err != nil {
				return err
			}

			cfg, db, err := openIndex()
			if err != nil {
				return err
			}
			defer db.Close()

			// refresh the index before searching
			if _, err := newIndexer(cfg, db).IndexAll(cmd.Context(), cfg.ProjectsRoot); err != nil {
				fmt.Fprintf(os.Stderr, "index: %v\n", err)
			}

			opts := search.Options{
				Project:    project,
				Role:       role,
				Categories: cats,
				Since:      since,
				Subagents:  subagents,
				Limit:      limit,
			}

			if term.IsTerminal(int(os.Stdout.Fd())) {
				return tui.Run(db, args[0], opts)
			}

			opts.Query = args[0]
			results, err := search.Search(db, opts)
			if err != nil {
				return err
			}

			if len(results) == 0 {
				fmt.Fprintln(os.Stderr, "No results found.")
				return nil
			}

			for _, r := range results {
				proj := r.Project
				if proj == "" {
					proj = "-"
				}
				// sessionId and msgIdx stay plain for fzf {1} {2}
				fmt.Printf("%s\t%d\t%s%s%s\t%s\t%s\t%s\t%s\t%s\n",
					r.SessionID,
					r.MsgIdx,
					sColorDim, r.UpdatedAt, sColorReset,
					colorizeKind(r.Kind),
					proj,
					classify.Category(r.Category).Label(),
					tsvField(r.Summary),
					colorizeSnippet(tsvField(r.Snippet)),
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Filter by project name")
	cmd.Flags().StringVar(&role, "role", "", "Filter by role (user/assistant/tool/summary)")
	cmd.Flags().StringVar(&filter, "filter", "", "Filter by category or group (user, assistant, tools, meta, mcp, skills, subagents)")
	cmd.Flags().StringVar(&since, "since", "", "Filter sessions updated since date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&subagents, "subagents", false, "Include subagent sessions")
	cmd.Flags().IntVar(&limit, "limit", 100, "Max results")

	return cmd
}
