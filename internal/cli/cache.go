package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ocifkit/ocifkit/pkg/cache"
	ocerrors "github.com/ocifkit/ocifkit/pkg/errors"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the validation and artifact cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached reports, layouts and artifacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u := newUI(cmd.OutOrStdout())
			cfg := c.cfg().Cache
			if cfg.Backend == "" || cfg.Backend == cache.BackendNone {
				u.info("Caching is disabled")
				return nil
			}
			store, err := c.newCache(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer store.Close()

			clearer, ok := store.(cache.Clearer)
			if !ok {
				return fmt.Errorf("%s cache cannot be cleared", cfg.Backend)
			}
			if err := clearer.Clear(cmd.Context()); err != nil {
				return ocerrors.Wrap(ocerrors.ErrCodeCache, err, "clear %s cache", cfg.Backend)
			}

			u.success("Cleared %s cache", cfg.Backend)
			if location := cacheLocation(cfg); location != "" {
				u.detail("Location: %s", location)
			}
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the cache is stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			location := cacheLocation(c.cfg().Cache)
			if location == "" {
				newUI(cmd.OutOrStdout()).info("Caching is disabled")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), location)
			return nil
		},
	}
}

// cacheLocation describes where cfg stores entries. Credentials are never
// included.
func cacheLocation(cfg cache.Config) string {
	switch cfg.Backend {
	case cache.BackendFile:
		return cfg.Dir
	case cache.BackendRedis:
		prefix := cfg.Redis.Prefix
		if prefix == "" {
			prefix = cache.DefaultRedisPrefix
		}
		return fmt.Sprintf("redis://%s/%d (prefix %q)", cfg.Redis.Addr, cfg.Redis.DB, prefix)
	case cache.BackendMongo:
		db, coll := cfg.Mongo.Database, cfg.Mongo.Collection
		if db == "" {
			db = cache.DefaultMongoDatabase
		}
		if coll == "" {
			coll = cache.DefaultMongoCollection
		}
		return "mongodb " + db + "." + coll
	default:
		return ""
	}
}
