package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Zuo-Peng/cc-session-search/internal/classify"
	"github.com/Zuo-Peng/cc-session-search/internal/render"
)

func previewCmd() *cobra.Command {
	var hitIdx, context, width int
	var query, filter string

	cmd := &cobra.Command{
		Use:   "preview <sessionId>",
		Short: "Preview a conversation with context around a hit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := render.Options{
				HitIdx:  hitIdx,
				Context: context,
				Width:   width,
				Query:   query,
				Color:   true,
			}
			if filter != "" {
				g, ok := classify.GroupByName(filter)
				if !ok {
					return fmt.Errorf("unknown group %q", filter)
				}
				opts.Group = &g
			}
			if opts.Width == 0 && term.IsTerminal(int(os.Stdout.Fd())) {
				if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
					opts.Width = w
				}
			}

			_, db, err := openIndex()
			if err != nil {
				return err
			}
			defer db.Close()

			out, _, err := render.RenderConversation(db, args[0], opts)
			if err != nil {
				return err
			}

			fmt.Print(out)
			return nil
		},
	}

	cmd.Flags().IntVar(&hitIdx, "hit", -1, "Message index to highlight")
	cmd.Flags().IntVar(&context, "context", 10, "Messages before/after hit to show")
	cmd.Flags().IntVar(&width, "width", 0, "Wrap width (0 = terminal width)")
	cmd.Flags().StringVar(&query, "query", "", "Search query for keyword highlighting")
	cmd.Flags().StringVar(&filter, "filter", "", "Show only one group (user, assistant, tools, meta, mcp, skills, subagents)")

	return cmd
}
