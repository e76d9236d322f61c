package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func indexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Scan and index Claude Code session logs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := openIndex()
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(os.Stderr, "Scanning %s (%d workers)...\n", cfg.ProjectsRoot, cfg.Workers)

			stats, err := newIndexer(cfg, db).IndexAll(ctx, cfg.ProjectsRoot)
			if err != nil {
				return fmt.Errorf("index: %w", err)
			}
			if ctx.Err() != nil {
				fmt.Fprintf(os.Stderr, "Interrupted. %s\n", stats)
				return nil
			}

			fmt.Fprintf(os.Stderr, "Done. %s\n", stats)
			return nil
		},
	}
}
