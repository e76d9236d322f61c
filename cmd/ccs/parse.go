package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/cc-session-search/internal/classify"
	"github.com/Zuo-Peng/cc-session-search/internal/config"
	"github.com/Zuo-Peng/cc-session-search/internal/index"
	"github.com/Zuo-Peng/cc-session-search/internal/parse"
	"github.com/Zuo-Peng/cc-session-search/internal/render"
)

// resolvePath accepts a session file path or an indexed session id.
func resolvePath(cfg *config.Config, arg string) (string, error) {
	if strings.HasSuffix(arg, ".jsonl") {
		return arg, nil
	}
	db, err := index.OpenDB(cfg.DBPath)
	if err != nil {
		return "", fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	s, err := db.GetSession(arg)
	if err != nil {
		return "", fmt.Errorf("get session: %w", err)
	}
	if s == nil {
		return "", fmt.Errorf("session not found: %s (run 'ccs index' or pass a .jsonl path)", arg)
	}
	return s.FilePath, nil
}

type dumpMessage struct {
	Index    int                 `json:"index"`
	Category classify.Category   `json:"category"`
	Label    string              `json:"label"`
	Message  parse.ParsedMessage `json:"message"`

	// ResultOf and AnsweredBy point at the correlated message indices.
	ResultOf   *int  `json:"result_of,omitempty"`
	AnsweredBy []int `json:"answered_by,omitempty"`
}

type dumpToolUsage struct {
	TotalCalls  int              `json:"total_calls"`
	UniqueTools int              `json:"unique_tools"`
	Counts      map[string]int   `json:"counts"`
	Sequence    []string         `json:"sequence"`
	Events      []classify.Event `json:"events"`
	// Unanswered lists call ids that never got a result.
	Unanswered  []string         `json:"unanswered_calls,omitempty"`
}

type dump struct {
	Metadata  parse.ConversationMetadata `json:"metadata"`
	Messages  []dumpMessage              `json:"messages,omitempty"`
	ToolUsage *dumpToolUsage             `json:"tool_usage,omitempty"`
	Warnings  []string                   `json:"warnings,omitempty"`
}

func buildDump(s *parse.Session) dump {
	cats := classify.All(s.Messages)
	corr := classify.Correlate(s.Messages)

	msgs := make([]dumpMessage, len(s.Messages))
	for i, m := range s.Messages {
		dm := dumpMessage{Index: i, Category: cats[i], Label: cats[i].Label(), Message: m}
		if id := m.ResultID(); id != "" {
			if c, ok := corr.CallFor(id); ok {
				dm.ResultOf = &c
			}
		}
		for _, call := range m.Calls() {
			if r, ok := corr.ResultFor(call.ID); ok {
				dm.AnsweredBy = append(dm.AnsweredBy, r)
			}
		}
		msgs[i] = dm
	}

	usage := classify.Usage(s.Messages)
	unanswered := corr.Orphans()
	sort.Strings(unanswered)
	d := dump{
		Metadata: s.Meta,
		Messages: msgs,
		ToolUsage: &dumpToolUsage{
			TotalCalls:  usage.TotalCalls,
			UniqueTools: usage.UniqueTools,
			Counts:      usage.Counts,
			Sequence:    usage.Sequence,
			Events:      classify.Events(s.Messages),
			Unanswered:  unanswered,
		},
	}
	for _, w := range s.Warnings {
		d.Warnings = append(d.Warnings, w.Error())
	}
	return d
}

func parseCmd() *cobra.Command {
	var metaOnly, text bool
	var filter string

	cmd := &cobra.Command{
		Use:   "parse <file.jsonl|sessionId>",
		Short: "Parse a session file and print messages with categories as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			path, err := resolvePath(cfg, args[0])
			if err != nil {
				return err
			}
			path, _ = filepath.Abs(path)

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")

			if metaOnly {
				meta, err := parse.ParseMetadataOnly(path)
				if err != nil {
					return err
				}
				return enc.Encode(dump{Metadata: meta})
			}

			s, err := cfg.Parser().ParseFile(path)
			if err != nil {
				var empty *parse.EmptyFileError
				if errors.As(err, &empty) {
					fmt.Fprintf(os.Stderr, "%v\n", err)
					return nil
				}
				return err
			}

			if text {
				opts := render.Options{HitIdx: -1}
				if filter != "" {
					g, ok := classify.GroupByName(filter)
					if !ok {
						return fmt.Errorf("unknown group %q", filter)
					}
					opts.Group = &g
				}
				out, _ := render.RenderSession(s, opts)
				fmt.Print(out)
				return nil
			}

			return enc.Encode(buildDump(s))
		},
	}

	cmd.Flags().BoolVar(&metaOnly, "metadata-only", false, "Only read metadata, skip message normalization")
	cmd.Flags().BoolVar(&text, "text", false, "Render as plain text instead of JSON")
	cmd.Flags().StringVar(&filter, "filter", "", "With --text, show only one group")

	return cmd
}
