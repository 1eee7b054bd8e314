// skelebuild.go wires the §4.7 incremental skeleton assembly engine
// (internal/skelebuild) into a "ripdoc skelebuild" subcommand tree: one
// cobra command per action named in the engine's Entry/State action set.
package cmd

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Alb-O/ripdoc/internal/resolve"
	"github.com/Alb-O/ripdoc/internal/skelebuild"
)

var skelebuildCmd = &cobra.Command{
	Use:   "skelebuild",
	Short: "Incrementally assemble a multi-target skeleton document",
}

var skelebuildAddCmd = &cobra.Command{
	Use:   "add <target>",
	Short: "Append a target to the skelebuild plan",
	Args:  cobra.ExactArgs(1),
	RunE:  runSkelebuildAdd,
}

var (
	addImplementation bool
	addRawSource      bool
	addValidate       bool
)

func init() {
	skelebuildAddCmd.Flags().BoolVar(&addImplementation, "implementation", false, "pull in full method bodies for this target")
	skelebuildAddCmd.Flags().BoolVar(&addRawSource, "raw-source", false, "also emit the target's raw source span")
	skelebuildAddCmd.Flags().BoolVar(&addValidate, "validate", true, "resolve the target against its crate before appending")
	skelebuildCmd.AddCommand(skelebuildAddCmd)
}

func runSkelebuildAdd(cmd *cobra.Command, args []string) error {
	spec := normalizeTargetSpec(args[0])

	if addValidate {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		loader := newCrateLoader(cfg, nil)
		crate, err := loader.Load(spec)
		if err != nil {
			return fmt.Errorf("resolving target for validation: %w", err)
		}
		_, itemPath := splitTargetSpec(spec)
		if _, err := resolve.ValidateAddTarget(crate.Index, crate.Data, crate.CrateName, crate.PkgRoot, itemPath, crate.IsLocal, cfg.Render.PrivateItems, false); err != nil {
			return fmt.Errorf("target does not resolve: %w", err)
		}
	}

	st := skelebuild.Load()
	key := st.AddTarget(spec, addImplementation, addRawSource)
	if err := st.Save(); err != nil {
		return err
	}
	fmt.Printf("added target %s (%s)\n", spec, key)
	return nil
}

// normalizeTargetSpec converts a target's leading path component to an
// absolute path, per §4.7's Add action, so the stored entry stays valid
// even if ripdoc later runs from a different working directory.
func normalizeTargetSpec(spec string) string {
	pathPart, itemPath := splitTargetSpec(spec)
	if pathPart == "" {
		return spec
	}
	abs, err := filepath.Abs(pathPart)
	if err != nil {
		return spec
	}
	if itemPath == "" {
		return abs
	}
	return abs + "::" + itemPath
}

var skelebuildAddRawCmd = &cobra.Command{
	Use:   "add-raw <file[:start[:end]]>",
	Short: "Append a raw, unelided source span to the skelebuild plan",
	Args:  cobra.ExactArgs(1),
	RunE:  runSkelebuildAddRaw,
}

func init() {
	skelebuildCmd.AddCommand(skelebuildAddRawCmd)
}

func runSkelebuildAddRaw(cmd *cobra.Command, args []string) error {
	file, start, end, err := parseRawSpec(args[0])
	if err != nil {
		return err
	}
	st := skelebuild.Load()
	key := st.AddRawSource(file, start, end)
	if err := st.Save(); err != nil {
		return err
	}
	fmt.Printf("added raw source %s (%s)\n", file, key)
	return nil
}

var (
	injectAt           int
	injectAfterTarget  string
	injectBeforeTarget string
)

var skelebuildInjectCmd = &cobra.Command{
	Use:   "inject <content>",
	Short: "Insert prose commentary into the skelebuild plan",
	Args:  cobra.ExactArgs(1),
	RunE:  runSkelebuildInject,
}

func init() {
	skelebuildInjectCmd.Flags().IntVar(&injectAt, "at", -1, "insert at this 0-based index")
	skelebuildInjectCmd.Flags().StringVar(&injectAfterTarget, "after", "", "insert after the entry matching this spec")
	skelebuildInjectCmd.Flags().StringVar(&injectBeforeTarget, "before", "", "insert before the entry matching this spec")
	skelebuildCmd.AddCommand(skelebuildInjectCmd)
}

func runSkelebuildInject(cmd *cobra.Command, args []string) error {
	st := skelebuild.Load()
	var at *int
	if injectAt >= 0 {
		at = &injectAt
	}
	key := st.AddInjection(args[0], at, injectAfterTarget, injectBeforeTarget)
	if err := st.Save(); err != nil {
		return err
	}
	fmt.Printf("injected (%s)\n", key)
	return nil
}

var (
	updateImplementation string
	updateRawSource      string
)

var skelebuildUpdateCmd = &cobra.Command{
	Use:   "update <spec>",
	Short: "Flip flags on an existing target entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runSkelebuildUpdate,
}

func init() {
	skelebuildUpdateCmd.Flags().StringVar(&updateImplementation, "implementation", "", "true/false")
	skelebuildUpdateCmd.Flags().StringVar(&updateRawSource, "raw-source", "", "true/false")
	skelebuildCmd.AddCommand(skelebuildUpdateCmd)
}

func runSkelebuildUpdate(cmd *cobra.Command, args []string) error {
	st := skelebuild.Load()
	impl, err := parseOptionalBool(updateImplementation)
	if err != nil {
		return err
	}
	raw, err := parseOptionalBool(updateRawSource)
	if err != nil {
		return err
	}
	if !st.Update(args[0], impl, raw) {
		return fmt.Errorf("no target entry matches %q", args[0])
	}
	return st.Save()
}

func parseOptionalBool(s string) (*bool, error) {
	if s == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil, fmt.Errorf("invalid boolean %q: %w", s, err)
	}
	return &b, nil
}

var skelebuildRemoveCmd = &cobra.Command{
	Use:   "remove <spec>",
	Short: "Remove the first entry matching spec",
	Args:  cobra.ExactArgs(1),
	RunE:  runSkelebuildRemove,
}

func init() {
	skelebuildCmd.AddCommand(skelebuildRemoveCmd)
}

func runSkelebuildRemove(cmd *cobra.Command, args []string) error {
	st := skelebuild.Load()
	if !st.Remove(args[0]) {
		return fmt.Errorf("no entry matches %q", args[0])
	}
	return st.Save()
}

var skelebuildResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear every entry, preserving output_path and plain",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st := skelebuild.Load()
		st.Reset()
		return st.Save()
	},
}

func init() {
	skelebuildCmd.AddCommand(skelebuildResetCmd)
}

var skelebuildStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report the entries currently queued",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		st := skelebuild.Load()
		if len(st.Entries) == 0 {
			fmt.Println("no entries queued")
			return
		}
		for i, e := range st.Entries {
			switch e.Kind {
			case skelebuild.EntryTarget:
				fmt.Printf("%d. target %s (implementation=%t raw_source=%t)\n", i, e.Path, e.Implementation, e.RawSourceFlag)
			case skelebuild.EntryInjection:
				fmt.Printf("%d. injection %q\n", i, truncate(e.Content, 60))
			case skelebuild.EntryRawSource:
				fmt.Printf("%d. raw_source %s:%d:%d\n", i, e.File, e.StartLine, e.EndLine)
			}
		}
	},
}

func init() {
	skelebuildCmd.AddCommand(skelebuildStatusCmd)
}

var (
	rebuildPreview bool
)

var skelebuildRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Recompose the output file from the current plan",
	Args:  cobra.NoArgs,
	RunE:  runSkelebuildRebuild,
}

func init() {
	skelebuildRebuildCmd.Flags().BoolVar(&rebuildPreview, "preview", false, "print to stdout instead of writing output_path")
	skelebuildCmd.AddCommand(skelebuildRebuildCmd)
}

func runSkelebuildRebuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	loader := newCrateLoader(cfg, nil)
	st := skelebuild.Load()

	if rebuildPreview {
		out, err := skelebuild.BuildOutput(st, loader)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	}
	if err := skelebuild.Rebuild(st, loader); err != nil {
		return err
	}
	path := st.OutputPath
	if path == "" {
		path = "skeleton.md"
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func parseRawSpec(spec string) (file string, start, end int, err error) {
	parts := strings.Split(spec, ":")
	file = parts[0]
	if len(parts) > 1 {
		start, err = strconv.Atoi(parts[1])
		if err != nil {
			return "", 0, 0, fmt.Errorf("invalid start line in %q: %w", spec, err)
		}
	}
	if len(parts) > 2 {
		end, err = strconv.Atoi(parts[2])
		if err != nil {
			return "", 0, 0, fmt.Errorf("invalid end line in %q: %w", spec, err)
		}
	}
	return file, start, end, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
