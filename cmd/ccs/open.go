package main

import (
	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/cc-session-search/internal/open"
)

func openCmd() *cobra.Command {
	var hitIdx int

	cmd := &cobra.Command{
		Use:   "open <sessionId>",
		Short: "Open the session JSONL file in $EDITOR at the hit line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openIndex()
			if err != nil {
				return err
			}
			defer db.Close()

			return open.OpenSession(db, args[0], hitIdx)
		},
	}

	cmd.Flags().IntVar(&hitIdx, "hit", -1, "Message index to jump to")

	return cmd
}
