package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/wayfind/internal/cache"
	"github.com/ShayCichocki/wayfind/internal/config"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the response cache",
	Long: `Inspect and manage the on-disk response cache.

Responses from the model are cached for an hour so repeated runs
against the same goal stay cheap. If the cache database is corrupted,
wayfind latches into memory-only mode until 'cache reset-error' is run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show cache location, entry count, and health",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, dir, err := openCache()
		if err != nil {
			return err
		}
		defer svc.Close()

		fmt.Printf("Cache directory: %s\n", dir)
		if svc.MemoryOnly() {
			fmt.Printf("Mode: %s\n", color.YellowString("memory-only (degraded)"))
			fmt.Println("Run 'wayfind cache reset-error' to retry persistent storage.")
		} else {
			fmt.Printf("Mode: %s\n", color.GreenString("persistent"))
			fmt.Printf("Entries: %d\n", svc.Entries(context.Background()))
		}
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached responses",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := openCache()
		if err != nil {
			return err
		}
		defer svc.Close()

		svc.Clear(context.Background())
		fmt.Println("Cache cleared.")
		return nil
	},
}

var cacheResetErrorCmd = &cobra.Command{
	Use:   "reset-error",
	Short: "Clear the corruption latch and retry persistent storage",
	Long: `Clear the degraded-mode latch left behind by a corrupted cache
database and try to reopen persistent storage.

If the database file itself is still unreadable, delete it first:
the cache directory is shown by 'wayfind cache status'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := openCache()
		if err != nil {
			return err
		}
		defer svc.Close()

		svc.ResetErrorStatus()
		if svc.MemoryOnly() {
			fmt.Fprintln(os.Stderr, color.RedString("Persistent storage still unavailable; cache remains memory-only."))
			return nil
		}
		fmt.Println("Cache error status cleared; persistent storage restored.")
		return nil
	},
}

func openCache() (*cache.Service, string, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, "", fmt.Errorf("load config: %w", err)
	}
	dir := cfg.CacheDir()
	return cache.New(dir), dir, nil
}

func init() {
	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheResetErrorCmd)
}
