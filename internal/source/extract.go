// Package source implements the source extractor (§4.4): given a span and
// an optional package root, locate and read the original file, slice the
// requested line range, and sanitize truncated attribute fragments so the
// snippet stays syntactically non-hostile to downstream formatters.
//
// Grounded directly on the original implementation's
// src/render/utils.rs::extract_source / sanitize_extracted_snippet.
package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Alb-O/ripdoc/internal/rustdoc"
)

// Extract reads span's file (resolving it against sourceRoot when
// necessary) and returns the sanitized text of lines [begin..end].
// Read failures degrade to a one-line `// ripdoc:error: …` annotation
// rather than an error return, matching the renderer's non-fatal policy
// for source extraction.
func Extract(span *rustdoc.Span, sourceRoot string) (string, error) {
	path := resolvePath(span.Filename, sourceRoot)

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Sprintf("// ripdoc:error: failed to read source file %s: %v", path, err), nil
	}

	lines := strings.Split(string(content), "\n")
	// strings.Split on a trailing-newline file yields a spurious final
	// empty element; drop it so EOF clamping matches line-count semantics.
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	if span.Begin == 0 || span.Begin > len(lines) {
		return "", nil
	}

	startLine := span.Begin - 1
	endLine := span.End
	if endLine > len(lines) {
		endLine = len(lines)
	}

	extracted := make([]string, 0, endLine-startLine)
	for i := startLine; i < endLine; i++ {
		extracted = append(extracted, convertInnerDocMarkers(lines[i]))
	}

	return sanitizeExtractedSnippet(strings.Join(extracted, "\n")), nil
}

func resolvePath(filename, sourceRoot string) string {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename
		}
	}
	if sourceRoot == "" {
		return filename
	}
	joined := filepath.Join(sourceRoot, filename)
	if _, err := os.Stat(joined); err == nil {
		return joined
	}
	if !filepath.IsAbs(filename) {
		parts := strings.Split(filepath.ToSlash(filename), "/")
		for i := 1; i < len(parts); i++ {
			candidate := filepath.Join(append([]string{sourceRoot}, parts[i:]...)...)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}
	return joined
}

// convertInnerDocMarkers converts `//!`/`/*!` at the start of a line (after
// leading whitespace) into outer `///`/`/**` so an extracted snippet can
// stand alone as an item doc comment instead of a module-inner one.
func convertInnerDocMarkers(line string) string {
	trimmed := strings.TrimLeft(line, " \t")
	if strings.HasPrefix(trimmed, "//!") {
		pos := strings.Index(line, "//!")
		return line[:pos] + "///" + line[pos+3:]
	}
	if strings.HasPrefix(trimmed, "/*!") {
		pos := strings.Index(line, "/*!")
		return line[:pos] + "/**" + line[pos+3:]
	}
	return line
}

var itemKeywords = []string{
	"pub ", "impl ", "fn ", "struct ", "enum ", "trait ", "type ",
	"const ", "static ", "use ", "mod ",
}

// sanitizeExtractedSnippet comments out truncated standalone attribute
// lines at the start or end of a snippet, per §4.4 point 4.
func sanitizeExtractedSnippet(snippet string) string {
	lines := strings.Split(snippet, "\n")

	// Comment out a trailing standalone attribute (skipping trailing blanks).
	for len(lines) > 0 {
		last := strings.TrimSpace(lines[len(lines)-1])
		if last == "" {
			lines = lines[:len(lines)-1]
			continue
		}
		if strings.HasPrefix(last, "#") {
			lines[len(lines)-1] = "// " + lines[len(lines)-1]
		}
		break
	}

	firstNonblank := 0
	for firstNonblank < len(lines) && strings.TrimSpace(lines[firstNonblank]) == "" {
		firstNonblank++
	}
	if firstNonblank < len(lines) && strings.HasPrefix(strings.TrimSpace(lines[firstNonblank]), "#") {
		const lookahead = 8
		hasItem := false
		end := firstNonblank + lookahead
		if end > len(lines) {
			end = len(lines)
		}
		for i := firstNonblank; i < end; i++ {
			trimmed := strings.TrimLeft(lines[i], " \t")
			if trimmed == "" || strings.HasPrefix(trimmed, "#") {
				continue
			}
			hasItem = startsWithItemKeyword(trimmed)
			break
		}
		if !hasItem {
			for i := firstNonblank; i < len(lines); i++ {
				t := strings.TrimSpace(lines[i])
				if strings.HasPrefix(t, "#") {
					lines[i] = "// " + lines[i]
				} else if t != "" {
					break
				}
			}
		}
	}

	return strings.Join(lines, "\n")
}

func startsWithItemKeyword(s string) bool {
	for _, kw := range itemKeywords {
		if strings.HasPrefix(s, kw) {
			return true
		}
	}
	return false
}
