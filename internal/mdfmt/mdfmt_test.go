package mdfmt

import (
	"strings"
	"testing"
)

func TestIsDocCommentLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line     string
		wantText string
		wantOK   bool
	}{
		{"/// a doc line", "a doc line", true},
		{"///", "", true},
		{"//! inner doc", "inner doc", true},
		{"//!", "", true},
		{"\t/// indented", "indented", true},
		{"// plain comment", "", false},
		{"pub fn hi() {}", "", false},
	}
	for _, tt := range tests {
		text, ok := isDocCommentLine(tt.line)
		if ok != tt.wantOK || text != tt.wantText {
			t.Errorf("isDocCommentLine(%q) = (%q, %v), want (%q, %v)", tt.line, text, ok, tt.wantText, tt.wantOK)
		}
	}
}

func TestIsModuleHeaderLine(t *testing.T) {
	t.Parallel()

	if !isModuleHeaderLine("pub mod widgets {") {
		t.Error("expected pub mod header to match")
	}
	if !isModuleHeaderLine("mod widgets {") {
		t.Error("expected mod header to match")
	}
	if isModuleHeaderLine("pub fn hi() {}") {
		t.Error("did not expect a function header to match")
	}
}

func TestRenderWrapsPlainCodeInFence(t *testing.T) {
	t.Parallel()

	got := Render("pub fn hi() {}\n")
	want := "```rust\npub fn hi() {}\n```\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderLiftsModuleDocIntoProse(t *testing.T) {
	t.Parallel()

	rust := "/// Widget helpers.\npub mod widgets {\n\tpub fn hi() {}\n}\n"
	got := Render(rust)

	if !strings.Contains(got, "Widget helpers.") {
		t.Errorf("expected doc text lifted into prose, got:\n%s", got)
	}
	if strings.Contains(got, "/// Widget helpers.") {
		t.Errorf("expected doc comment marker stripped from the fenced code, got:\n%s", got)
	}
	if !strings.Contains(got, "```rust\npub mod widgets {") {
		t.Errorf("expected module header to start a fresh fence, got:\n%s", got)
	}
}

func TestRenderKeepsInlineDocOnNonModuleItems(t *testing.T) {
	t.Parallel()

	rust := "/// Does a thing.\npub fn hi() {}\n"
	got := Render(rust)
	if !strings.Contains(got, "/// Does a thing.") {
		t.Errorf("expected doc comment kept inline for a non-module item, got:\n%s", got)
	}
}

func TestTrimDocParagraph(t *testing.T) {
	t.Parallel()

	got := trimDocParagraph([]string{"", "", "body", "", ""})
	want := []string{"body"}
	if len(got) != len(want) || got[0] != want[0] {
		t.Errorf("got %v, want %v", got, want)
	}
}
