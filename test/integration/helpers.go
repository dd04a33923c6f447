package integration

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danieljhkim/iconmerge/internal/clock"
	"github.com/danieljhkim/iconmerge/internal/dmi"
	"github.com/danieljhkim/iconmerge/internal/engine"
	"github.com/danieljhkim/iconmerge/internal/fsops"
	"github.com/danieljhkim/iconmerge/internal/gitx"
	"github.com/danieljhkim/iconmerge/internal/hash"
	"github.com/danieljhkim/iconmerge/internal/sheet"
)

// setupTestEngine wires an engine to the real git binary and filesystem.
func setupTestEngine(t *testing.T) *engine.Engine {
	t.Helper()
	return engine.New(gitx.NewRealGitRepo(), fsops.NewRealFS(), hash.NewSHA256Hasher(), &clock.RealClock{})
}

// git runs git in dir and fails the test on error.
func git(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %s failed: %v\n%s", strings.Join(args, " "), err, out)
	}
	return strings.TrimSpace(string(out))
}

func initRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	git(t, dir, "init")
	git(t, dir, "config", "user.email", "test@example.com")
	git(t, dir, "config", "user.name", "Test User")
	git(t, dir, "config", "commit.gpgsign", "false")
	return dir
}

func writeIcon(t *testing.T, dir, rel string, s *sheet.Sheet) {
	t.Helper()
	data, err := dmi.Marshal(s)
	if err != nil {
		t.Fatalf("dmi.Marshal failed: %v", err)
	}
	path := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write %s: %v", rel, err)
	}
}

func readIcon(t *testing.T, dir, rel string) *sheet.Sheet {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("failed to read %s: %v", rel, err)
	}
	s, err := dmi.Decode(data)
	if err != nil {
		t.Fatalf("failed to decode %s: %v", rel, err)
	}
	return s
}

// conflictRepo commits the ancestor, diverges into two branches with the
// given edits and leaves the repository mid-merge.
func conflictRepo(t *testing.T, ancestor map[string]*sheet.Sheet, ours, theirs map[string]*sheet.Sheet) string {
	t.Helper()

	dir := initRepo(t)
	for rel, s := range ancestor {
		writeIcon(t, dir, rel, s)
	}
	git(t, dir, "add", ".")
	git(t, dir, "commit", "-m", "ancestor")
	mainBranch := git(t, dir, "rev-parse", "--abbrev-ref", "HEAD")

	git(t, dir, "checkout", "-b", "theirs")
	for rel, s := range theirs {
		writeIcon(t, dir, rel, s)
	}
	git(t, dir, "commit", "-am", "theirs")

	git(t, dir, "checkout", mainBranch)
	for rel, s := range ours {
		writeIcon(t, dir, rel, s)
	}
	git(t, dir, "commit", "-am", "ours")

	cmd := exec.Command("git", "merge", "theirs")
	cmd.Dir = dir
	if err := cmd.Run(); err == nil {
		t.Fatal("expected merge to conflict")
	}
	return dir
}

func writeFile(t *testing.T, dir, rel string, data []byte) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, rel), data, 0644); err != nil {
		t.Fatalf("failed to write %s: %v", rel, err)
	}
}
