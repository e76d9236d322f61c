package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/cc-session-search/internal/parse"
	"github.com/Zuo-Peng/cc-session-search/internal/scan"
	"github.com/Zuo-Peng/cc-session-search/internal/watch"
)

func watchCmd() *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the index up to date while sessions are written",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := openIndex()
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ix := newIndexer(cfg, db)
			stats, err := ix.IndexAll(ctx, cfg.ProjectsRoot)
			if err != nil {
				return fmt.Errorf("index: %w", err)
			}
			fmt.Fprintf(os.Stderr, "Indexed. %s\n", stats)

			w, err := watch.New(cfg.ProjectsRoot, ix)
			if err != nil {
				return err
			}
			defer w.Close()
			w.Debounce = debounce
			w.OnIndex = func(path string, err error) {
				var empty *parse.EmptyFileError
				switch {
				case err == nil:
					fmt.Fprintf(os.Stderr, "%s  updated %s\n", time.Now().Format("15:04:05"), scan.SessionID(path))
				case errors.As(err, &empty):
				default:
					fmt.Fprintf(os.Stderr, "%s  %s: %v\n", time.Now().Format("15:04:05"), scan.SessionID(path), err)
				}
			}

			fmt.Fprintf(os.Stderr, "Watching %s (Ctrl-C to stop)\n", cfg.ProjectsRoot)
			return w.Run(ctx)
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "Quiet period before a changed file is re-indexed")

	return cmd
}
