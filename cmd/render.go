package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Alb-O/ripdoc/internal/render"
	"github.com/Alb-O/ripdoc/internal/resolve"
	"github.com/Alb-O/ripdoc/internal/rustdoc"
	"github.com/Alb-O/ripdoc/internal/selection"
)

var (
	renderImplementation bool
	renderFormat         string
	renderPlain          bool
)

var renderCmd = &cobra.Command{
	Use:   "render <target>",
	Short: "Render a Rust or Markdown skeleton for one target path",
	Long: `Render resolves target (a filesystem path to a crate/manifest, optionally
followed by "::" and an item path) and prints a deduplicated skeleton:
public API context in full, descendants elided with gap markers.`,
	Example: `  ripdoc render ./my-crate::my_crate::Config
  ripdoc render ./my-crate::my_crate::Client --implementation
  ripdoc render ./my-crate --format rust`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().BoolVar(&renderImplementation, "implementation", false, "pull in full method bodies for this target")
	renderCmd.Flags().StringVar(&renderFormat, "format", "markdown", `"rust" or "markdown"`)
	renderCmd.Flags().BoolVar(&renderPlain, "plain", false, "flatten output: suppress mod { ... } nesting wrappers")
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	loader := newCrateLoader(cfg, nil)

	crate, err := loader.Load(args[0])
	if err != nil {
		return err
	}
	_, itemPath := splitTargetSpec(args[0])

	format := render.FormatMarkdown
	if renderFormat == "rust" {
		format = render.FormatRust
	}

	m, err := resolve.ValidateAddTarget(crate.Index, crate.Data, crate.CrateName, crate.PkgRoot, itemPath, crate.IsLocal, cfg.Render.PrivateItems, false)
	if err != nil {
		return err
	}

	id := m.Result.ItemID
	fullSource := selection.IDSet{}
	if m.HasImpl {
		id = m.ImplID
		fullSource.Add(m.ImplID)
	}
	if renderImplementation {
		switch m.Result.Kind {
		case rustdoc.KindFunction, rustdoc.KindMethod:
			fullSource.Add(m.Result.ItemID)
		}
	}

	sel := selection.Build(crate.Data, crate.Index, []rustdoc.ItemID{id}, true, fullSource)
	text, err := render.Render(crate.Data, render.Options{
		Format:             format,
		RenderPrivateItems: cfg.Render.PrivateItems,
		RenderSourceLabels: cfg.Render.SourceLabels,
		Plain:              renderPlain,
		SourceRoot:         crate.PkgRoot,
		Selection:          sel,
		Visited:            render.NewVisitedSet(),
	})
	if err != nil {
		return err
	}
	fmt.Println(text)
	return nil
}
