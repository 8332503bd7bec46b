package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pdfprep/config"
	"pdfprep/storage"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the completion cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the number of cached completions",
	Args:  cobra.NoArgs,
	RunE:  runCacheStats,
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cache := storage.NewBoltCompletionCache(cfg.CacheDBPath, cfg.CacheOpenTimeout)
	n, err := cache.Count()
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "path: %s\nentries: %d\n", cache.Path(), n)
	return nil
}
