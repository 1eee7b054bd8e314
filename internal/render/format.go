package render

import (
	"bytes"
	"os/exec"
	"strings"

	"github.com/Alb-O/ripdoc/internal/mdfmt"
)

// formatRust runs the rendered skeleton through rustfmt when available,
// degrading silently (or with an opt-in warning) to the unformatted text
// otherwise - rendering must never fail just because the toolchain isn't
// on PATH, per §7.
func formatRust(text string) string {
	path, err := exec.LookPath("rustfmt")
	if err != nil {
		warnFormatFailure("rustfmt not found on PATH", err)
		return text
	}

	cmd := exec.Command(path, "--edition", "2021")
	cmd.Stdin = strings.NewReader(text)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		warnFormatFailure("rustfmt invocation", err)
		return text
	}
	return stdout.String()
}

// toMarkdown hands the rendered skeleton to mdfmt, which fences it and
// lifts module-level doc comments into interleaving prose paragraphs, the
// renderer's Markdown output shape from §4.3.
func toMarkdown(text string) string {
	return mdfmt.Render(text)
}
