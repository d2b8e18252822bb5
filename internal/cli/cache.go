package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lineageview/internal/config"
	"github.com/matzehuels/lineageview/pkg/cache"
)

// cacheCommand groups the local cache subcommands. clear and prune only
// act on the file backend; Redis entries expire on their own.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local snapshot, view, and artifact cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every cached entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.sweepCache("Cleared", (*cache.FileCache).Clear)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "prune",
		Short: "Remove expired and unreadable entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.sweepCache("Pruned", (*cache.FileCache).Prune)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the cache directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	})

	return cmd
}

func (c *CLI) sweepCache(verb string, sweep func(*cache.FileCache) (int, error)) error {
	if backend := c.settings().Cache.Backend; backend != config.CacheFile {
		printInfo("Cache backend is %q, nothing to do locally", backend)
		return nil
	}
	dir, err := c.cacheDir()
	if err != nil {
		return fmt.Errorf("get cache dir: %w", err)
	}
	if !fileExists(dir) {
		printInfo("Cache is empty")
		return nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return err
	}
	n, err := sweep(fc)
	if err != nil {
		return err
	}
	printSuccess("%s %d cached entries", verb, n)
	printDetail("Directory: %s", fc.Dir())
	return nil
}
