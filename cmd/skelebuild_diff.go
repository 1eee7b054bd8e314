// skelebuild_diff.go wires internal/gitbridge into skelebuild's
// AddChangedResolved action (§4.7): diff two revisions (or a revision
// against HEAD) and queue the touched .rs spans as raw-source
// entries. Resolving each touched span back to an owning item path (so
// it could be queued as a Target instead) would need an inverse
// span-to-item index this project doesn't build, so every hunk is queued
// as RawSource - a conservative, always-correct fallback rather than a
// best-guess Target match.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Alb-O/ripdoc/internal/gitbridge"
	"github.com/Alb-O/ripdoc/internal/skelebuild"
)

var skelebuildDiffAddCmd = &cobra.Command{
	Use:   "diff-add <from-ref> [to-ref]",
	Short: "Queue raw-source spans for .rs files changed between two revisions",
	Long: `diff-add opens the git repository containing the current directory, diffs
from-ref against to-ref (or against HEAD, when to-ref is omitted;
uncommitted changes are not included), and appends a RawSource entry for
every changed hunk in a touched .rs file.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSkelebuildDiffAdd,
}

func init() {
	skelebuildCmd.AddCommand(skelebuildDiffAddCmd)
}

func runSkelebuildDiffAdd(cmd *cobra.Command, args []string) error {
	fromRef := args[0]
	var toRef string
	if len(args) > 1 {
		toRef = args[1]
	}

	repo, err := gitbridge.OpenRepo(".")
	if err != nil {
		return err
	}

	changed, err := gitbridge.ChangedFiles(repo, fromRef, toRef)
	if err != nil {
		return err
	}
	if len(changed) == 0 {
		fmt.Println("no changed Rust files")
		return nil
	}

	var rawSpecs []skelebuild.RawSpec
	for _, cf := range changed {
		for _, h := range cf.Hunks {
			rawSpecs = append(rawSpecs, skelebuild.RawSpec{File: cf.Path, StartLine: h.Start, EndLine: h.End})
		}
	}

	st := skelebuild.Load()
	st.AddChangedResolved(nil, rawSpecs)
	if err := st.Save(); err != nil {
		return err
	}
	fmt.Printf("queued %d raw source spans across %d files\n", len(rawSpecs), len(changed))
	return nil
}
