package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Alb-O/ripdoc/internal/rustdoc"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestExtractBasicRange(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "src/lib.rs", "line1\nline2\nline3\nline4\n")

	span := &rustdoc.Span{Filename: "src/lib.rs", Begin: 2, End: 3}
	got, err := Extract(span, dir)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if want := "line2\nline3"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExtractClampsToEOF(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "src/lib.rs", "line1\nline2\n")

	span := &rustdoc.Span{Filename: "src/lib.rs", Begin: 1, End: 100}
	got, err := Extract(span, dir)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if want := "line1\nline2"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExtractBeginZeroReturnsEmpty(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "src/lib.rs", "line1\n")

	span := &rustdoc.Span{Filename: "src/lib.rs", Begin: 0, End: 1}
	got, err := Extract(span, dir)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got != "" {
		t.Errorf("expected empty string for begin=0, got %q", got)
	}
}

func TestExtractBeginPastEOFReturnsEmpty(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "src/lib.rs", "line1\n")

	span := &rustdoc.Span{Filename: "src/lib.rs", Begin: 50, End: 60}
	got, err := Extract(span, dir)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got != "" {
		t.Errorf("expected empty string for begin past EOF, got %q", got)
	}
}

func TestExtractMissingFileDegradesToAnnotation(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	span := &rustdoc.Span{Filename: "does/not/exist.rs", Begin: 1, End: 1}
	got, err := Extract(span, dir)
	if err != nil {
		t.Fatalf("Extract should not return an error: %v", err)
	}
	if want := "// ripdoc:error: "; len(got) < len(want) || got[:len(want)] != want {
		t.Errorf("expected annotation prefix %q, got %q", want, got)
	}
}

func TestExtractStripsLeadingPathComponents(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "src/lib.rs", "fn hi() {}\n")

	// Filename carries a different package-name prefix than sourceRoot;
	// resolvePath should strip leading components until a match is found.
	span := &rustdoc.Span{Filename: "other_crate/src/lib.rs", Begin: 1, End: 1}
	got, err := Extract(span, dir)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if want := "fn hi() {}"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestConvertInnerDocMarkers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want string
	}{
		{"//! module docs", "/// module docs"},
		{"  //! indented", "  /// indented"},
		{"/*! block doc */", "/** block doc */"},
		{"// plain comment", "// plain comment"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := convertInnerDocMarkers(tt.name); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSanitizeExtractedSnippetTrailingAttr(t *testing.T) {
	t.Parallel()

	snippet := "fn foo() {}\n#[derive(Debug)]"
	got := sanitizeExtractedSnippet(snippet)
	want := "fn foo() {}\n// #[derive(Debug)]"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSanitizeExtractedSnippetLeadingOrphanAttrs(t *testing.T) {
	t.Parallel()

	snippet := "#[inline]\n#[must_use]\nsome_trailing_body_only()"
	got := sanitizeExtractedSnippet(snippet)
	want := "// #[inline]\n// #[must_use]\nsome_trailing_body_only()"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSanitizeExtractedSnippetLeadingAttrsBeforeItemKept(t *testing.T) {
	t.Parallel()

	snippet := "#[derive(Debug)]\npub struct Widget;"
	got := sanitizeExtractedSnippet(snippet)
	if got != snippet {
		t.Errorf("expected attrs preceding a real item to be left alone, got %q", got)
	}
}
