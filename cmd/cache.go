package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/handoverdoc/internal/pipeline"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the round cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats [path]",
	Short: "Show round cache contents",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rootDir := "."
		if len(args) == 1 {
			rootDir = args[0]
		}
		cache, err := openRepoCache(rootDir)
		if err != nil {
			return err
		}
		defer cache.Close()

		stats, err := cache.Stats(context.Background())
		if err != nil {
			return err
		}

		fmt.Printf("Round cache entries: %d (%d ok, %d degraded)\n", stats.TotalEntries, stats.OKEntries, stats.Degraded)
		for round := 1; round <= 6; round++ {
			if n, ok := stats.ByRound[round]; ok {
				fmt.Printf("  round %d: %d entries\n", round, n)
			}
		}
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [path]",
	Short: "Clear all cached round output, forcing a full re-run",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rootDir := "."
		if len(args) == 1 {
			rootDir = args[0]
		}
		cache, err := openRepoCache(rootDir)
		if err != nil {
			return err
		}
		defer cache.Close()

		if err := cache.Clear(context.Background()); err != nil {
			return err
		}
		fmt.Println("Round cache cleared.")
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd, cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func openRepoCache(rootDir string) (*pipeline.Cache, error) {
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("resolving repository path: %w", err)
	}
	cachePath := filepath.Join(absRoot, ".handoverdoc", "cache.db")
	return pipeline.OpenCache(cachePath)
}
