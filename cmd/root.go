// Package cmd wires ripdoc's core packages into a cobra command tree: one
// binary invocation per core operation, no background daemon (§5).
// Grounded on the teacher's cmd/serve.go for the rootCmd/Execute shape,
// generalized from an MCP-server-by-default entrypoint to a CLI whose
// subcommands cover search, render, skelebuild, cache, and (still) mcp.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Alb-O/ripdoc/internal/config"
)

var (
	flagFeatures          []string
	flagAllFeatures       bool
	flagNoDefaultFeatures bool
	flagPrivateItems      bool
	flagToolchain         string
)

var rootCmd = &cobra.Command{
	Use:   "ripdoc",
	Short: "Generate Rust crate API skeletons from rustdoc JSON",
	Long: `ripdoc indexes a local Rust crate's public API via cargo rustdoc, lets you
search and render excerpts of it, and incrementally assembles multi-target
skeleton documents via skelebuild.`,
}

// Execute runs the command tree, exiting non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&flagFeatures, "features", nil, "cargo features to enable (repeatable)")
	rootCmd.PersistentFlags().BoolVar(&flagAllFeatures, "all-features", false, "enable all cargo features")
	rootCmd.PersistentFlags().BoolVar(&flagNoDefaultFeatures, "no-default-features", false, "disable default cargo features")
	rootCmd.PersistentFlags().BoolVar(&flagPrivateItems, "private-items", false, "include non-public items")
	rootCmd.PersistentFlags().StringVar(&flagToolchain, "toolchain", "", "override the cargo binary path")

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(skelebuildCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(mcpCmd)
}

// loadConfig reads ripdoc's config file/env overrides and layers the
// command line's persistent flags on top, the flags winning per the usual
// config-then-flags precedence.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flagToolchain != "" {
		cfg.Toolchain.Path = flagToolchain
	}
	if len(flagFeatures) > 0 {
		cfg.Features.Default = flagFeatures
	}
	if flagAllFeatures {
		cfg.Features.AllFeatures = true
	}
	if flagNoDefaultFeatures {
		cfg.Features.NoDefaultFeatures = true
	}
	if flagPrivateItems {
		cfg.Render.PrivateItems = true
	}
	return cfg, nil
}
