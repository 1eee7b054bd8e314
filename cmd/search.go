package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Alb-O/ripdoc/internal/index"
)

var (
	searchIncludePrivate bool
	searchCaseSensitive  bool
	searchLimit          int
)

var searchCmd = &cobra.Command{
	Use:   "search <target> <query>",
	Short: "Search a crate's public API by name, doc text, path, or signature",
	Long: `Search finds items matching query within the crate owning target (a
filesystem path to a crate/manifest, optionally followed by "::" and an
item path; the item path does not narrow the search, which always covers
the whole crate). A query containing "|" matches any of the pipe-separated
terms; otherwise it matches as a plain substring.`,
	Example: `  ripdoc search . "serialize"
  ripdoc search ./serde_json "Deserialize|Serialize"
  ripdoc search ../my-crate::my_crate::config "Config"`,
	Args: cobra.ExactArgs(2),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().BoolVar(&searchIncludePrivate, "include-private", false, "include non-public items")
	searchCmd.Flags().BoolVar(&searchCaseSensitive, "case-sensitive", false, "match case-sensitively")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 20, "max results")
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if searchIncludePrivate {
		cfg.Render.PrivateItems = true
	}
	loader := newCrateLoader(cfg, nil)

	crate, err := loader.Load(args[0])
	if err != nil {
		return err
	}

	results := index.Search(crate.Index, index.SearchOptions{
		Query:          args[1],
		CaseSensitive:  searchCaseSensitive,
		IncludePrivate: searchIncludePrivate || cfg.Render.PrivateItems,
	})
	if len(results) > searchLimit {
		results = results[:searchLimit]
	}

	if len(results) == 0 {
		fmt.Println("no results")
		return nil
	}
	for i, r := range results {
		fmt.Printf("%d. %s (%s)\n", i+1, r.PathString, r.Kind)
		if r.Signature != "" {
			fmt.Printf("   %s\n", r.Signature)
		}
	}
	return nil
}
