package commands

import (
	"github.com/farm-framework/forge/internal/core/domain"
	"github.com/spf13/cobra"
)

func (c *CLI) newCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove all cached build results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cacheDir, _ := cmd.Flags().GetString("cache-dir")
			if err := c.app.CleanCache(domain.BuildOptions{CacheDir: cacheDir}); err != nil {
				return err
			}
			cmd.Println("build cache cleared")
			return nil
		},
	}
}
