// Package gitx reads conflicted index entries from a git repository.
//
// During a merge or rebase, git keeps up to three index stages for each
// conflicted path: 1 (common ancestor), 2 (ours) and 3 (theirs). GitRepo
// exposes those stages as blob IDs and reads blob contents, shelling out to
// the git binary.
package gitx

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// GitRepo provides an abstraction for git repository operations.
type GitRepo interface {
	// Discover finds the git repository root starting from cwd.
	Discover(cwd string) (root string, err error)

	// Conflicts lists every conflicted path in the index, sorted by path.
	Conflicts(root string) ([]Conflict, error)

	// ReadBlob returns the raw contents of the blob with the given object ID.
	ReadBlob(root, oid string) ([]byte, error)

	// Stage adds the given repo-relative paths to the index, marking them resolved.
	Stage(root string, paths ...string) error
}

// Conflict is one conflicted path with the blob ID of each index stage.
// A stage is empty when that side does not have the file.
type Conflict struct {
	Path     string
	Ancestor string
	Ours     string
	Theirs   string
}

// Complete reports whether all three stages are present.
func (c Conflict) Complete() bool {
	return c.Ancestor != "" && c.Ours != "" && c.Theirs != ""
}

// RealGitRepo implements GitRepo using actual git commands.
type RealGitRepo struct{}

// NewRealGitRepo creates a new RealGitRepo.
func NewRealGitRepo() *RealGitRepo {
	return &RealGitRepo{}
}

// runGit executes a git command in root and returns its raw stdout.
func (g *RealGitRepo) runGit(root string, args ...string) ([]byte, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = root

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("git %s failed: %w\nstderr: %s", args[0], err, strings.TrimSpace(stderr.String()))
	}

	return stdout.Bytes(), nil
}

// Discover finds the git repository root by walking up from cwd looking for .git directory.
func (g *RealGitRepo) Discover(cwd string) (string, error) {
	absPath, err := filepath.Abs(cwd)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	current := absPath
	for {
		gitDir := filepath.Join(current, ".git")
		if info, err := os.Stat(gitDir); err == nil {
			// .git can be a directory or a file (for worktrees/submodules)
			if info.IsDir() || info.Mode().IsRegular() {
				return current, nil
			}
		}

		parent := filepath.Dir(current)
		if parent == current {
			// Reached root directory
			return "", fmt.Errorf("not in a git repository")
		}
		current = parent
	}
}

// Conflicts parses `git ls-files -u -z`.
func (g *RealGitRepo) Conflicts(root string) ([]Conflict, error) {
	out, err := g.runGit(root, "ls-files", "-u", "-z")
	if err != nil {
		return nil, err
	}
	return parseUnmerged(out)
}

// parseUnmerged parses NUL-separated "<mode> <oid> <stage>\t<path>" records.
func parseUnmerged(out []byte) ([]Conflict, error) {
	byPath := make(map[string]*Conflict)

	for _, record := range bytes.Split(out, []byte{0}) {
		if len(record) == 0 {
			continue
		}
		meta, path, ok := bytes.Cut(record, []byte{'\t'})
		if !ok {
			return nil, fmt.Errorf("malformed ls-files record %q", record)
		}
		fields := strings.Fields(string(meta))
		if len(fields) != 3 {
			return nil, fmt.Errorf("malformed ls-files record %q", record)
		}

		p := string(path)
		c, ok := byPath[p]
		if !ok {
			c = &Conflict{Path: p}
			byPath[p] = c
		}

		oid := fields[1]
		switch fields[2] {
		case "1":
			c.Ancestor = oid
		case "2":
			c.Ours = oid
		case "3":
			c.Theirs = oid
		default:
			return nil, fmt.Errorf("unexpected index stage %q for %s", fields[2], p)
		}
	}

	conflicts := make([]Conflict, 0, len(byPath))
	for _, c := range byPath {
		conflicts = append(conflicts, *c)
	}
	sort.Slice(conflicts, func(i, j int) bool {
		return conflicts[i].Path < conflicts[j].Path
	})
	return conflicts, nil
}

// ReadBlob reads a blob with `git cat-file blob`.
func (g *RealGitRepo) ReadBlob(root, oid string) ([]byte, error) {
	if oid == "" {
		return nil, fmt.Errorf("empty object id")
	}
	return g.runGit(root, "cat-file", "blob", oid)
}

// Stage runs `git add` on the given paths.
func (g *RealGitRepo) Stage(root string, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	args := append([]string{"add", "--"}, paths...)
	_, err := g.runGit(root, args...)
	return err
}

// FakeGitRepo implements GitRepo with in-memory conflicts and blobs for testing.
type FakeGitRepo struct {
	root      string
	conflicts []Conflict
	blobs     map[string][]byte
	staged    []string
	err       error
}

// NewFakeGitRepo creates a new FakeGitRepo rooted at root.
func NewFakeGitRepo(root string) *FakeGitRepo {
	return &FakeGitRepo{
		root:  root,
		blobs: make(map[string][]byte),
	}
}

// SetError sets an error to be returned by all methods.
func (g *FakeGitRepo) SetError(err error) {
	g.err = err
}

// AddConflict registers a conflicted path. Nil contents leave that stage empty.
func (g *FakeGitRepo) AddConflict(path string, ancestor, ours, theirs []byte) {
	c := Conflict{Path: path}
	c.Ancestor = g.putBlob(path, "1", ancestor)
	c.Ours = g.putBlob(path, "2", ours)
	c.Theirs = g.putBlob(path, "3", theirs)
	g.conflicts = append(g.conflicts, c)
}

func (g *FakeGitRepo) putBlob(path, stage string, data []byte) string {
	if data == nil {
		return ""
	}
	oid := path + ":" + stage
	g.blobs[oid] = data
	return oid
}

// Staged returns the paths passed to Stage so far.
func (g *FakeGitRepo) Staged() []string {
	return g.staged
}

// Discover returns the predetermined root.
func (g *FakeGitRepo) Discover(cwd string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	return g.root, nil
}

// Conflicts returns the registered conflicts sorted by path.
func (g *FakeGitRepo) Conflicts(root string) ([]Conflict, error) {
	if g.err != nil {
		return nil, g.err
	}
	out := append([]Conflict(nil), g.conflicts...)
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// ReadBlob returns a registered blob.
func (g *FakeGitRepo) ReadBlob(root, oid string) ([]byte, error) {
	if g.err != nil {
		return nil, g.err
	}
	data, ok := g.blobs[oid]
	if !ok {
		return nil, fmt.Errorf("blob %s not found", oid)
	}
	return data, nil
}

// Stage records the staged paths.
func (g *FakeGitRepo) Stage(root string, paths ...string) error {
	if g.err != nil {
		return g.err
	}
	g.staged = append(g.staged, paths...)
	return nil
}
