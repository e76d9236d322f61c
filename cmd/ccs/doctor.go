package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/cc-session-search/internal/classify"
	"github.com/Zuo-Peng/cc-session-search/internal/config"
	"github.com/Zuo-Peng/cc-session-search/internal/index"
	"github.com/Zuo-Peng/cc-session-search/internal/scan"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Self-check: verify config, projects root, DB, FTS5, and show stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}

			fmt.Println("=== Config ===")
			if cfg.Path != "" {
				fmt.Printf("  File: %s\n", cfg.Path)
			} else {
				fmt.Println("  File: (none, using defaults)")
			}
			fmt.Printf("  Workers: %d\n", cfg.Workers)
			prices := cfg.Prices()
			fmt.Printf("  Default model: %s\n", prices.Fallback())
			fmt.Printf("  Priced models: %d\n", len(prices.Models()))

			fmt.Println("\n=== Projects root ===")
			checkDir("Root", cfg.ProjectsRoot)

			fmt.Println("\n=== File Scan ===")
			files, err := scan.Scan(cfg.ProjectsRoot)
			if err != nil {
				fmt.Printf("  scan error: %v\n", err)
			} else {
				roots := len(scan.Roots(files))
				fmt.Printf("  Root sessions:     %d\n", roots)
				fmt.Printf("  Subagent sessions: %d\n", len(files)-roots)
			}

			fmt.Println("\n=== Database ===")
			fmt.Printf("  Path: %s\n", cfg.DBPath)
			if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
				fmt.Println("  Status: NOT FOUND (run 'ccs index' first)")
				return nil
			}

			db, err := index.OpenDB(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			sessionCount, err := db.SessionCount()
			if err != nil {
				return fmt.Errorf("count sessions: %w", err)
			}

			messageCount, err := db.MessageCount()
			if err != nil {
				return fmt.Errorf("count messages: %w", err)
			}

			fmt.Printf("  Sessions: %s\n", humanize.Comma(int64(sessionCount)))
			fmt.Printf("  Messages: %s\n", humanize.Comma(int64(messageCount)))

			counts, err := db.CategoryCounts()
			if err != nil {
				return fmt.Errorf("count categories: %w", err)
			}
			for _, c := range classify.Categories {
				if n := counts[string(c)]; n > 0 {
					fmt.Printf("    %-18s %8s\n", c.Label(), humanize.Comma(int64(n)))
				}
			}

			fmt.Println("\n=== FTS5 ===")
			var ftsCount int
			err = db.Raw().QueryRow("SELECT COUNT(*) FROM messages_fts").Scan(&ftsCount)
			if err != nil {
				fmt.Printf("  FTS5 error: %v\n", err)
			} else {
				fmt.Printf("  FTS5 entries: %s\n", humanize.Comma(int64(ftsCount)))
				if ftsCount == messageCount {
					fmt.Println("  Status: OK (synced)")
				} else {
					fmt.Printf("  Status: MISMATCH (messages=%d, fts=%d)\n", messageCount, ftsCount)
				}
			}

			if info, err := os.Stat(cfg.DBPath); err == nil {
				fmt.Printf("\n=== DB Size: %s ===\n", humanize.Bytes(uint64(info.Size())))
			}

			return nil
		},
	}
}

func checkDir(name, path string) {
	if info, err := os.Stat(path); err != nil {
		fmt.Printf("  %s: %s (NOT FOUND)\n", name, path)
	} else if !info.IsDir() {
		fmt.Printf("  %s: %s (NOT A DIRECTORY)\n", name, path)
	} else {
		fmt.Printf("  %s: %s (OK)\n", name, path)
	}
}
