package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mavenresolve/pkg/cache"
	"github.com/matzehuels/mavenresolve/pkg/errors"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the remote metadata cache",
		Long: `The metadata cache remembers remote maven-metadata.xml documents and
"not found" answers between runs. It never holds artifacts; those live in
the local repository.`,
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Drop every cached metadata entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := c.cfg.OpenCache(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			clearer, ok := store.(cache.Clearer)
			if !ok {
				printInfo("Cache backend %q holds nothing to clear", c.cfg.Cache.Backend)
				return nil
			}
			if err := clearer.Clear(ctx); err != nil {
				return errors.Wrap(errors.ErrCodeIO, err, "clear cache")
			}
			printSuccess("Cleared %s cache", c.cfg.Cache.Backend)
			printDetail("%s", c.cacheLocation())
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the cache lives",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), c.cacheLocation())
			return nil
		},
	}
}

// cacheLocation describes the configured backend: a directory for the file
// cache, the server URL for redis.
func (c *CLI) cacheLocation() string {
	switch c.cfg.Cache.Backend {
	case cache.BackendRedis:
		return c.cfg.Cache.RedisURL
	case cache.BackendNone:
		return "(disabled)"
	default:
		return c.cfg.Cache.Dir
	}
}
