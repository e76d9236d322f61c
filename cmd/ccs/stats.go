package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/cc-session-search/internal/aggregate"
	"github.com/Zuo-Peng/cc-session-search/internal/batch"
	"github.com/Zuo-Peng/cc-session-search/internal/classify"
	"github.com/Zuo-Peng/cc-session-search/internal/config"
	"github.com/Zuo-Peng/cc-session-search/internal/parse"
	"github.com/Zuo-Peng/cc-session-search/internal/scan"
)

func formatCost(c float64) string {
	return "$" + humanize.CommafWithDigits(c, 4)
}

func printTotals(w io.Writer, t aggregate.Totals) {
	fmt.Fprintf(w, "  Sessions:  %d (1 root + %d subagents)\n", t.SessionCount, len(t.Children))
	fmt.Fprintf(w, "  Tokens:    %s root + %s subagents = %s\n",
		humanize.Comma(t.RootTokens), humanize.Comma(t.SubagentTokens), humanize.Comma(t.TotalTokens))
	fmt.Fprintf(w, "  Cost:      %s root + %s subagents = %s (%.0f%% in subagents)\n",
		formatCost(t.RootCost), formatCost(t.SubagentCost), formatCost(t.TotalCost), t.SubagentShare()*100)
}

func printToolUsage(w io.Writer, u classify.ToolUsage, top int) {
	fmt.Fprintf(w, "  Tool calls: %d (%d distinct tools)\n", u.TotalCalls, u.UniqueTools)
	for i, tc := range u.Ranked() {
		if top > 0 && i >= top {
			break
		}
		fmt.Fprintf(w, "    %-32s %6d\n", tc.Name, tc.Count)
	}
}

func printCategories(w io.Writer, counts map[classify.Category]int) {
	for _, c := range classify.Categories {
		if n := counts[c]; n > 0 {
			fmt.Fprintf(w, "    %-18s %8s\n", c.Label(), humanize.Comma(int64(n)))
		}
	}
}

func countCategories(sessions []*parse.Session) map[classify.Category]int {
	var cats []classify.Category
	for _, s := range sessions {
		cats = append(cats, classify.All(s.Messages)...)
	}
	return lo.CountValues(cats)
}

func sessionStats(cmd *cobra.Command, cfg *config.Config, arg string, top int) error {
	path, err := resolvePath(cfg, arg)
	if err != nil {
		return err
	}
	parser := cfg.Parser()
	root, err := parser.ParseFile(path)
	if err != nil {
		return err
	}

	report := batch.ParseAll(cmd.Context(), scan.SubagentFiles(path), cfg.Workers, parser)
	for _, f := range report.Failures() {
		fmt.Fprintf(os.Stderr, "skip %s: %v\n", f.Path, f.Err)
	}
	totals := aggregate.Combine(root, report.Sessions())

	out := cmd.OutOrStdout()
	meta := root.Meta
	fmt.Fprintf(out, "=== Session %s ===\n", meta.SessionID)
	fmt.Fprintf(out, "  Project:   %s\n", meta.ProjectName)
	if meta.GitBranch != "" {
		fmt.Fprintf(out, "  Branch:    %s\n", meta.GitBranch)
	}
	if !meta.StartedAt.IsZero() {
		fmt.Fprintf(out, "  Started:   %s (%s)\n", meta.StartedAt.Local().Format("2006-01-02 15:04"), humanize.Time(meta.StartedAt))
	}
	fmt.Fprintf(out, "  Duration:  %s\n", aggregate.Duration(meta.StartedAt, meta.EndedAt))
	fmt.Fprintf(out, "  Messages:  %d\n", meta.MessageCount)
	printTotals(out, totals)

	fmt.Fprintln(out, "\n=== Tools ===")
	printToolUsage(out, classify.Usage(root.Messages), top)

	fmt.Fprintln(out, "\n=== Categories ===")
	printCategories(out, countCategories([]*parse.Session{root}))

	if len(totals.Children) > 0 {
		fmt.Fprintln(out, "\n=== Subagents ===")
		for _, c := range totals.Children {
			agent := c.Meta.AgentType
			if agent == "" {
				agent = "-"
			}
			fmt.Fprintf(out, "  %-20s %-24s %10s tokens %12s\n",
				c.Meta.AgentID, agent, humanize.Comma(c.Tokens()), formatCost(c.Cost()))
		}
	}
	return nil
}

func projectStats(cmd *cobra.Command, cfg *config.Config, top int) error {
	files, err := scan.Scan(cfg.ProjectsRoot)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	paths := lo.Map(files, func(fi scan.FileInfo, _ int) string { return fi.Path })

	report := batch.ParseAll(cmd.Context(), paths, cfg.Workers, cfg.Parser())
	failed := 0
	for _, f := range report.Failures() {
		var empty *parse.EmptyFileError
		if !errors.As(f.Err, &empty) {
			failed++
		}
	}
	sessions := report.Sessions()
	groups := aggregate.Group(sessions)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "=== %s ===\n", cfg.ProjectsRoot)
	fmt.Fprintf(out, "  Files:     %d parsed, %d failed\n", len(sessions), failed)
	fmt.Fprintf(out, "  Sessions:  %d root\n", len(groups))
	fmt.Fprintf(out, "  Tokens:    %s\n", humanize.Comma(lo.SumBy(groups, func(t aggregate.Totals) int64 { return t.TotalTokens })))
	fmt.Fprintf(out, "  Cost:      %s (%s in subagents)\n",
		formatCost(lo.SumBy(groups, func(t aggregate.Totals) float64 { return t.TotalCost })),
		formatCost(lo.SumBy(groups, func(t aggregate.Totals) float64 { return t.SubagentCost })))

	sort.SliceStable(groups, func(i, j int) bool { return groups[i].TotalCost > groups[j].TotalCost })
	fmt.Fprintln(out, "\n=== Most expensive sessions ===")
	for i, t := range groups {
		if top > 0 && i >= top {
			break
		}
		fmt.Fprintf(out, "  %-36s %3d sessions %12s tokens %12s\n",
			t.SessionID, t.SessionCount, humanize.Comma(t.TotalTokens), formatCost(t.TotalCost))
	}

	var all []parse.ParsedMessage
	for _, s := range sessions {
		all = append(all, s.Messages...)
	}
	fmt.Fprintln(out, "\n=== Tools ===")
	printToolUsage(out, classify.Usage(all), top)

	fmt.Fprintln(out, "\n=== Categories ===")
	printCategories(out, countCategories(sessions))
	return nil
}

func statsCmd() *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "stats [file.jsonl|sessionId]",
		Short: "Token, cost and tool usage totals, including subagent sessions",
		Long: `With an argument, report one session combined with the subagent sessions it spawned.
Without one, parse every session under the projects root and report totals.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if len(args) == 1 {
				return sessionStats(cmd, cfg, args[0], top)
			}
			return projectStats(cmd, cfg, top)
		},
	}

	cmd.Flags().IntVar(&top, "top", 10, "Rows to show in rankings (0 = all)")

	return cmd
}
