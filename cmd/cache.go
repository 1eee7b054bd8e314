// cache.go exposes internal/cachedb's catalog (backed by internal/cache's
// blob store) as "ripdoc cache list"/"ripdoc cache gc", adapted from the
// teacher's cmd/cache.go clear-cache command to the DuckDB-catalogued
// content-addressed store this project uses instead of a daemon RPC call.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Alb-O/ripdoc/internal/cache"
	"github.com/Alb-O/ripdoc/internal/cachedb"
	"github.com/Alb-O/ripdoc/internal/config"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage the crate documentation cache",
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalogued cache entries",
	Args:  cobra.NoArgs,
	RunE:  runCacheList,
}

func init() {
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheGCCmd)
}

func openCatalog() (*cachedb.DB, error) {
	return cachedb.New(config.CacheDBPath())
}

func runCacheList(cmd *cobra.Command, args []string) error {
	db, err := openCatalog()
	if err != nil {
		return err
	}
	defer db.Close()

	entries, err := db.List()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("cache is empty")
		return nil
	}
	for _, e := range entries {
		fmt.Printf("%s@%s  [%s]  %s  %d bytes  %s\n", e.Name, e.Version, e.Toolchain, e.Hash[:12], e.SizeBytes, e.FetchedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

var cacheGCCmd = &cobra.Command{
	Use:   "gc <hash...>",
	Short: "Remove catalogued entries and their blobs by hash prefix",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCacheGC,
}

func runCacheGC(cmd *cobra.Command, args []string) error {
	db, err := openCatalog()
	if err != nil {
		return err
	}
	defer db.Close()

	blobs := cache.New()
	entries, err := db.List()
	if err != nil {
		return err
	}

	var removed, freed int64
	for _, prefix := range args {
		for _, e := range entries {
			if len(prefix) > len(e.Hash) || e.Hash[:len(prefix)] != prefix {
				continue
			}
			if err := blobs.RemoveByHash(e.Hash); err != nil {
				return err
			}
			if ok, err := db.Remove(e.Hash); err == nil && ok {
				removed++
				freed += e.SizeBytes
			}
		}
	}
	fmt.Printf("removed %d entries (%d bytes)\n", removed, freed)
	return nil
}
