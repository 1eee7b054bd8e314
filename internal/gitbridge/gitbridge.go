// Package gitbridge is the one skelebuild sub-operation delegated to git
// plumbing rather than implemented from scratch (§1): diffing two
// revisions (or a revision against HEAD) to find which Rust source
// spans changed, feeding skelebuild's AddChangedResolved action.
//
// Grounded on google-oss-rebuild/internal/gitdiff/gitdiff.go, which builds
// synthetic go-git Change objects and serializes a unified diff; this
// package adds the actual repository-walking half that file doesn't need
// (it only ever diffs two in-memory strings), using the same go-git/v5
// plumbing packages and github.com/pkg/errors idiom.
package gitbridge

import (
	"bytes"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/format/diff"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/pkg/errors"
)

// ChangedFile names one file touched between two revisions and the
// 1-based line ranges of its added/modified hunks, suitable for feeding
// skelebuild's AddRaw / resolver-driven Add actions.
type ChangedFile struct {
	Path   string
	Hunks  []LineRange
}

// LineRange is an inclusive, 1-based line span.
type LineRange struct {
	Start int
	End   int
}

// OpenRepo opens the git repository containing path.
func OpenRepo(path string) (*git.Repository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, errors.Wrap(err, "opening repository")
	}
	return repo, nil
}

// ChangedFiles diffs fromRef against toRef (or against HEAD, when toRef is
// ""; uncommitted working-tree changes are not included) and returns every
// changed .rs file with its touched line
// ranges, restricted to add/modify hunks (deleted files carry no target
// to resolve against and are skipped).
func ChangedFiles(repo *git.Repository, fromRef, toRef string) ([]ChangedFile, error) {
	fromTree, err := resolveTree(repo, fromRef)
	if err != nil {
		return nil, errors.Wrap(err, "resolving from-ref")
	}

	var toTree *object.Tree
	if toRef == "" {
		toTree, err = workingTreeTree(repo)
	} else {
		toTree, err = resolveTree(repo, toRef)
	}
	if err != nil {
		return nil, errors.Wrap(err, "resolving to-ref")
	}

	changes, err := fromTree.Diff(toTree)
	if err != nil {
		return nil, errors.Wrap(err, "computing tree diff")
	}

	var result []ChangedFile
	for _, change := range changes {
		path := change.To.Name
		if path == "" {
			continue // pure deletion
		}
		if !strings.HasSuffix(path, ".rs") {
			continue
		}
		patch, err := change.Patch()
		if err != nil {
			return nil, errors.Wrap(err, "generating file patch")
		}
		result = append(result, ChangedFile{Path: path, Hunks: hunkRanges(patch)})
	}
	return result, nil
}

func resolveTree(repo *git.Repository, ref string) (*object.Tree, error) {
	hash, err := repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return nil, err
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, err
	}
	return commit.Tree()
}

// workingTreeTree returns HEAD's commit tree; uncommitted changes in the
// worktree are not part of it.
func workingTreeTree(repo *git.Repository) (*object.Tree, error) {
	head, err := repo.Head()
	if err != nil {
		return nil, err
	}
	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return nil, err
	}
	return commit.Tree()
}

// hunkRanges extracts the to-side added/modified line ranges from a patch.
func hunkRanges(patch *object.Patch) []LineRange {
	var ranges []LineRange
	for _, fp := range patch.FilePatches() {
		line := 1 // next to-side line number
		for _, chunk := range fp.Chunks() {
			lines := strings.Count(chunk.Content(), "\n")
			if chunk.Content() != "" && !strings.HasSuffix(chunk.Content(), "\n") {
				lines++
			}
			if chunk.Type() == diff.Equal {
				line += lines
			}
			if chunk.Type() != diff.Add || lines == 0 {
				continue
			}
			ranges = append(ranges, LineRange{Start: line, End: line + lines - 1})
			line += lines
		}
	}
	return ranges
}

// Strings computes the header-less unified diff between two strings,
// ported directly from gitdiff.Strings: used by callers that already have
// two text snippets (e.g. comparing a cached skeleton render against a
// freshly rendered one) rather than two repository revisions.
func Strings(left, right string) (string, error) {
	storer := memory.NewStorage()
	fromEntry, err := createChangeEntry(storer, left)
	if err != nil {
		return "", errors.Wrap(err, "creating left entry")
	}
	toEntry, err := createChangeEntry(storer, right)
	if err != nil {
		return "", errors.Wrap(err, "creating right entry")
	}
	change := &object.Change{From: *fromEntry, To: *toEntry}
	patch, err := object.Changes{change}.Patch()
	if err != nil {
		return "", errors.Wrap(err, "generating patch")
	}
	var buf bytes.Buffer
	encoder := diff.NewUnifiedEncoder(&buf, diff.DefaultContextLines)
	if err := encoder.Encode(patch); err != nil {
		return "", errors.Wrap(err, "encoding patch")
	}
	fullDiff := buf.String()
	hunkStartIndex := strings.Index(fullDiff, "\n@@")
	if hunkStartIndex == -1 {
		return "", nil
	}
	d := fullDiff[hunkStartIndex+1:]
	d = strings.ReplaceAll(d, "\\ No newline at end of file\n", "")
	if !strings.HasSuffix(d, "\n") {
		d += "\n"
	}
	return d, nil
}

func createChangeEntry(storer storage.Storer, content string) (*object.ChangeEntry, error) {
	hash, err := storeBlob(storer, content)
	if err != nil {
		return nil, errors.Wrap(err, "failed to store blob")
	}
	entry := object.TreeEntry{Mode: filemode.Regular, Hash: hash}
	treeHash, err := storeTree(storer, &object.Tree{Entries: []object.TreeEntry{entry}})
	if err != nil {
		return nil, errors.Wrap(err, "failed to store tree")
	}
	liveTree, err := object.GetTree(storer, treeHash)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get tree")
	}
	return &object.ChangeEntry{Tree: liveTree, TreeEntry: entry}, nil
}

func storeBlob(storer storage.Storer, content string) (plumbing.Hash, error) {
	obj := storer.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)
	w, err := obj.Writer()
	if err != nil {
		return plumbing.ZeroHash, err
	}
	if _, err := w.Write([]byte(content)); err != nil {
		w.Close()
		return plumbing.ZeroHash, err
	}
	if err := w.Close(); err != nil {
		return plumbing.ZeroHash, err
	}
	return storer.SetEncodedObject(obj)
}

func storeTree(storer storage.Storer, tree *object.Tree) (plumbing.Hash, error) {
	obj := storer.NewEncodedObject()
	obj.SetType(plumbing.TreeObject)
	if err := tree.Encode(obj); err != nil {
		return plumbing.ZeroHash, err
	}
	return storer.SetEncodedObject(obj)
}
