// Package mdfmt is the §4.3 "Markdown post-processing" collaborator: it
// turns a rendered Rust skeleton into the §6 Markdown output shape - fenced
// rust code blocks, with module-level doc comments lifted out into
// interleaving prose paragraphs rather than left as `///` lines inside the
// fence. Adapted from the teacher's internal/markdown/rewrite.go, which
// parses already-written markdown to an AST to find link/reference targets
// and then performs matching textual replacements; the input here is Rust
// source text rather than markdown, so there is no markdown AST to walk for
// finding doc-comment boundaries - the same "locate, then do a targeted
// textual split" shape carries over as a line-oriented scan instead.
package mdfmt

import "strings"

// isDocCommentLine matches both "///" (rustdoc outer doc) and "//!" (inner,
// used on the crate root) - both render as doc comment lines upstream.
func isDocCommentLine(line string) (text string, ok bool) {
	trimmed := strings.TrimLeft(line, "\t")
	switch {
	case strings.HasPrefix(trimmed, "/// "):
		return trimmed[4:], true
	case strings.HasPrefix(trimmed, "///"):
		return "", true
	case strings.HasPrefix(trimmed, "//! "):
		return trimmed[4:], true
	case strings.HasPrefix(trimmed, "//!"):
		return "", true
	default:
		return "", false
	}
}

// isModuleHeaderLine reports whether line opens a module block, the anchor
// a preceding doc-comment run is lifted in front of.
func isModuleHeaderLine(line string) bool {
	trimmed := strings.TrimLeft(line, "\t")
	return strings.HasPrefix(trimmed, "mod ") || strings.HasPrefix(trimmed, "pub mod ")
}

// segment is one block of the post-processed output: either a fenced code
// block or a lifted prose paragraph.
type segment struct {
	prose bool
	lines []string
}

// Render applies the fence/lift transform to a rendered Rust skeleton,
// producing the final Markdown document: code segments wrapped in
// ```rust fences, doc-comment runs immediately preceding a module header
// pulled out as plain paragraphs between fences.
func Render(rustText string) string {
	lines := strings.Split(rustText, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	segments := splitSegments(lines)

	var b strings.Builder
	for i, seg := range segments {
		if i > 0 {
			b.WriteString("\n")
		}
		if seg.prose {
			b.WriteString(strings.Join(seg.lines, "\n"))
			b.WriteString("\n")
			continue
		}
		if len(seg.lines) == 0 {
			continue
		}
		b.WriteString("```rust\n")
		b.WriteString(strings.Join(seg.lines, "\n"))
		b.WriteString("\n```\n")
	}
	return b.String()
}

// splitSegments walks lines once, accumulating code lines until it finds a
// doc-comment run immediately followed by a module header; that run is
// lifted into its own prose segment and the module header starts a new
// code segment (the comment is dropped from the code, since it now lives
// as prose ahead of the fence).
func splitSegments(lines []string) []segment {
	var segments []segment
	var code []string

	flushCode := func() {
		if len(code) == 0 {
			return
		}
		segments = append(segments, segment{lines: append([]string(nil), code...)})
		code = code[:0]
	}

	i := 0
	for i < len(lines) {
		line := lines[i]
		_, isDoc := isDocCommentLine(line)
		if !isDoc {
			code = append(code, line)
			i++
			continue
		}

		// Collect the whole contiguous doc run.
		var doc []string
		j := i
		for j < len(lines) {
			t, ok := isDocCommentLine(lines[j])
			if !ok {
				break
			}
			doc = append(doc, t)
			j++
		}

		if j < len(lines) && isModuleHeaderLine(lines[j]) {
			flushCode()
			segments = append(segments, segment{prose: true, lines: trimDocParagraph(doc)})
			i = j
			continue
		}

		// Not attached to a module header: keep as ordinary code lines
		// (rendered doc comments on structs/fns/etc. stay inline).
		code = append(code, lines[i:j]...)
		i = j
	}
	flushCode()
	return segments
}

func trimDocParagraph(doc []string) []string {
	for len(doc) > 0 && doc[0] == "" {
		doc = doc[1:]
	}
	for len(doc) > 0 && doc[len(doc)-1] == "" {
		doc = doc[:len(doc)-1]
	}
	return doc
}
