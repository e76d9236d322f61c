package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/cc-session-search/internal/search"
	"github.com/Zuo-Peng/cc-session-search/internal/tui"
)

func listCmd() *cobra.Command {
	var project, since string
	var subagents bool
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Browse all sessions sorted by update time",
		Long:  `Opens a TUI panel showing all indexed sessions sorted by update time (newest first). Type to filter by summary or project.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := openIndex()
			if err != nil {
				return err
			}
			defer db.Close()

			if _, err := newIndexer(cfg, db).IndexAll(cmd.Context(), cfg.ProjectsRoot); err != nil {
				fmt.Fprintf(os.Stderr, "index: %v\n", err)
			}

			opts := search.Options{
				Project:   project,
				Since:     since,
				Subagents: subagents,
				Limit:     limit,
			}

			return tui.RunList(db, opts)
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Filter by project name")
	cmd.Flags().StringVar(&since, "since", "", "Filter sessions updated since date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&subagents, "subagents", false, "Include subagent sessions")
	cmd.Flags().IntVar(&limit, "limit", 0, "Max results (0 = no limit)")

	return cmd
}
