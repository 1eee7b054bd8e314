package gitbridge

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

func TestStringsProducesUnifiedHunk(t *testing.T) {
	t.Parallel()

	d, err := Strings("fn a() {}\n", "fn a() {}\nfn b() {}\n")
	if err != nil {
		t.Fatalf("Strings: %v", err)
	}
	if d == "" {
		t.Fatal("expected a non-empty diff for differing content")
	}
	if d[0] != '@' {
		t.Errorf("expected the header stripped down to the first hunk marker, got:\n%q", d)
	}
}

func TestStringsIdenticalReturnsEmpty(t *testing.T) {
	t.Parallel()

	d, err := Strings("fn a() {}\n", "fn a() {}\n")
	if err != nil {
		t.Fatalf("Strings: %v", err)
	}
	if d != "" {
		t.Errorf("expected no diff for identical content, got %q", d)
	}
}

func TestOpenRepoMissingPathErrors(t *testing.T) {
	t.Parallel()

	_, err := OpenRepo(t.TempDir())
	if err == nil {
		t.Error("expected an error opening a directory with no .git")
	}
}

func commitFile(t *testing.T, wt *git.Worktree, repoDir, relPath, content string, msg string) {
	t.Helper()
	full := filepath.Join(repoDir, relPath)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := wt.Add(relPath); err != nil {
		t.Fatalf("Add: %v", err)
	}
	_, err := wt.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: time.Unix(0, 0)},
	})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
}

func TestChangedFilesDetectsModifiedRustFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}

	commitFile(t, wt, dir, "src/lib.rs", "pub fn hi() {}\n", "initial")
	firstHead, err := repo.Head()
	if err != nil {
		t.Fatalf("Head: %v", err)
	}

	commitFile(t, wt, dir, "src/lib.rs", "pub fn hi() {}\npub fn bye() {}\n", "add bye")
	commitFile(t, wt, dir, "README.md", "docs\n", "add readme")

	opened, err := OpenRepo(dir)
	if err != nil {
		t.Fatalf("OpenRepo: %v", err)
	}

	changed, err := ChangedFiles(opened, firstHead.Hash().String(), "HEAD")
	if err != nil {
		t.Fatalf("ChangedFiles: %v", err)
	}

	var sawLibRs bool
	for _, c := range changed {
		if c.Path == "src/lib.rs" {
			sawLibRs = true
			if len(c.Hunks) == 0 {
				t.Error("expected at least one hunk for the modified file")
			}
		}
		if c.Path == "README.md" {
			t.Error("expected the non-.rs file filtered out")
		}
	}
	if !sawLibRs {
		t.Errorf("expected src/lib.rs among changed files, got %+v", changed)
	}
}
