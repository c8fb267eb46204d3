package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cpanmap/pkg/cache"
	errs "github.com/matzehuels/cpanmap/pkg/errors"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the registry response cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())
	cmd.AddCommand(c.cacheStatsCommand())

	return cmd
}

func (c *CLI) cacheClearCommand() *cobra.Command {
	var expired bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear cached registry responses",
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := cache.Open(cmd.Context(), cacheConfig(c.cfg.Cache))
			if err != nil {
				return err
			}
			defer backend.Close()

			out := cmd.OutOrStdout()
			if expired {
				fc, ok := backend.(*cache.FileCache)
				if !ok {
					return errs.New(errs.ErrCodeUnsupported, "--expired needs the file cache; %s expires entries itself", c.cfg.Cache.Backend)
				}
				n, err := fc.Prune()
				if err != nil {
					return err
				}
				printSuccess(out, "Pruned %d expired entries", n)
				printDetail(out, "Directory: %s", fc.Dir())
				return nil
			}

			clearer, ok := backend.(cache.Clearer)
			if !ok {
				printInfo(out, "Cache backend %q holds no entries", c.cfg.Cache.Backend)
				return nil
			}
			n, err := clearer.Clear(cmd.Context())
			if err != nil {
				return err
			}
			printSuccess(out, "Cleared %d cached entries", n)
			printDetail(out, "Location: %s", c.cacheLocation())
			return nil
		},
	}
	cmd.Flags().BoolVar(&expired, "expired", false, "only remove expired entries (file cache)")
	return cmd
}

func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache location",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), c.cacheLocation())
			return nil
		},
	}
}

func (c *CLI) cacheStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show file cache usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := cache.Open(cmd.Context(), cacheConfig(c.cfg.Cache))
			if err != nil {
				return err
			}
			defer backend.Close()
			fc, ok := backend.(*cache.FileCache)
			if !ok {
				return errs.New(errs.ErrCodeUnsupported, "stats are only available for the file cache")
			}
			entries, size, err := fc.Stats()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printKeyValue(out, "Directory", fc.Dir())
			printKeyValue(out, "Entries", fmt.Sprint(entries))
			printKeyValue(out, "Size", fmt.Sprintf("%.1f KiB", float64(size)/1024))
			return nil
		},
	}
}

// cacheLocation describes where the configured backend keeps entries.
func (c *CLI) cacheLocation() string {
	cc := c.cfg.Cache
	switch strings.ToLower(cc.Backend) {
	case cache.BackendRedis:
		return cc.URL + " (prefix " + cc.Prefix + ")"
	case cache.BackendMongo:
		return cc.URL + " " + cc.Database + "." + cc.Collection
	case cache.BackendNone:
		return "(disabled)"
	}
	if cc.Dir != "" {
		return cc.Dir
	}
	dir, err := cache.DefaultDir()
	if err != nil {
		return "(unavailable: " + err.Error() + ")"
	}
	return dir
}
