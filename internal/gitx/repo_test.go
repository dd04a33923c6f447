package gitx

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// gitCmd runs git in dir and fails the test on error.
func gitCmd(t *testing.T, dir string, args ...string) string {
	t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %s failed: %v\n%s", strings.Join(args, " "), err, out)
	}
	return strings.TrimSpace(string(out))
}

// setupGitRepo creates a temporary git repository for testing.
func setupGitRepo(t *testing.T) string {
	t.Helper()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	tmpDir := t.TempDir()
	gitCmd(t, tmpDir, "init")
	gitCmd(t, tmpDir, "config", "user.email", "test@example.com")
	gitCmd(t, tmpDir, "config", "user.name", "Test User")
	gitCmd(t, tmpDir, "config", "commit.gpgsign", "false")

	return tmpDir
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

// setupConflict leaves the repository mid-merge with icons/a.dmi conflicted.
func setupConflict(t *testing.T) string {
	t.Helper()

	dir := setupGitRepo(t)
	writeFile(t, dir, "icons/a.dmi", "base\n")
	writeFile(t, dir, "clean.txt", "clean\n")
	gitCmd(t, dir, "add", ".")
	gitCmd(t, dir, "commit", "-m", "base")
	mainBranch := gitCmd(t, dir, "rev-parse", "--abbrev-ref", "HEAD")

	gitCmd(t, dir, "checkout", "-b", "feature")
	writeFile(t, dir, "icons/a.dmi", "theirs\x00binary\n")
	gitCmd(t, dir, "commit", "-am", "theirs")

	gitCmd(t, dir, "checkout", mainBranch)
	writeFile(t, dir, "icons/a.dmi", "ours\n")
	gitCmd(t, dir, "commit", "-am", "ours")

	cmd := exec.Command("git", "merge", "feature")
	cmd.Dir = dir
	if err := cmd.Run(); err == nil {
		t.Fatal("expected merge to conflict")
	}
	return dir
}

func TestRealGitRepo_Discover(t *testing.T) {
	repo := NewRealGitRepo()

	t.Run("finds git repo from subdirectory", func(t *testing.T) {
		gitDir := setupGitRepo(t)
		subDir := filepath.Join(gitDir, "a", "b", "c")
		if err := os.MkdirAll(subDir, 0755); err != nil {
			t.Fatalf("failed to create subdirectories: %v", err)
		}

		root, err := repo.Discover(subDir)
		if err != nil {
			t.Fatalf("Discover from subdirectory failed: %v", err)
		}
		wantRoot, _ := filepath.EvalSymlinks(gitDir)
		gotRoot, _ := filepath.EvalSymlinks(root)
		if gotRoot != wantRoot {
			t.Errorf("Discover returned wrong root: got %s, want %s", root, gitDir)
		}
	})

	t.Run("returns error when not in git repo", func(t *testing.T) {
		_, err := repo.Discover(t.TempDir())
		if err == nil {
			t.Fatal("Expected error when not in git repo, got nil")
		}
		if !strings.Contains(err.Error(), "not in a git repository") {
			t.Errorf("Expected 'not in a git repository' error, got: %v", err)
		}
	})
}

func TestRealGitRepo_ConflictsAndBlobs(t *testing.T) {
	dir := setupConflict(t)
	repo := NewRealGitRepo()

	conflicts, err := repo.Conflicts(dir)
	if err != nil {
		t.Fatalf("Conflicts failed: %v", err)
	}
	if len(conflicts) != 1 {
		t.Fatalf("Conflicts = %v, want one path", conflicts)
	}
	c := conflicts[0]
	if c.Path != "icons/a.dmi" || !c.Complete() {
		t.Fatalf("conflict = %+v", c)
	}

	for oid, want := range map[string]string{
		c.Ancestor: "base\n",
		c.Ours:     "ours\n",
		c.Theirs:   "theirs\x00binary\n",
	} {
		got, err := repo.ReadBlob(dir, oid)
		if err != nil {
			t.Fatalf("ReadBlob(%s) failed: %v", oid, err)
		}
		if string(got) != want {
			t.Errorf("ReadBlob(%s) = %q, want %q", oid, got, want)
		}
	}

	writeFile(t, dir, "icons/a.dmi", "resolved\n")
	if err := repo.Stage(dir, "icons/a.dmi"); err != nil {
		t.Fatalf("Stage failed: %v", err)
	}
	conflicts, err = repo.Conflicts(dir)
	if err != nil {
		t.Fatalf("Conflicts after Stage failed: %v", err)
	}
	if len(conflicts) != 0 {
		t.Errorf("Stage did not resolve: %v", conflicts)
	}
}

func TestRealGitRepo_NoConflicts(t *testing.T) {
	dir := setupGitRepo(t)
	conflicts, err := NewRealGitRepo().Conflicts(dir)
	if err != nil {
		t.Fatalf("Conflicts failed: %v", err)
	}
	if len(conflicts) != 0 {
		t.Errorf("Conflicts = %v, want none", conflicts)
	}
}

func TestParseUnmerged(t *testing.T) {
	out := "100644 aaa 1\tb.dmi\x00" +
		"100644 bbb 2\tb.dmi\x00" +
		"100644 ccc 3\tb.dmi\x00" +
		"100644 ddd 2\ta with space.dmi\x00" +
		"100644 eee 3\ta with space.dmi\x00"

	conflicts, err := parseUnmerged([]byte(out))
	if err != nil {
		t.Fatalf("parseUnmerged failed: %v", err)
	}
	if len(conflicts) != 2 {
		t.Fatalf("got %d conflicts, want 2", len(conflicts))
	}

	added := conflicts[0]
	if added.Path != "a with space.dmi" || added.Ancestor != "" || added.Ours != "ddd" || added.Theirs != "eee" {
		t.Errorf("add/add conflict = %+v", added)
	}
	if added.Complete() {
		t.Error("add/add conflict should not be complete")
	}
	if !conflicts[1].Complete() || conflicts[1].Theirs != "ccc" {
		t.Errorf("full conflict = %+v", conflicts[1])
	}

	if _, err := parseUnmerged([]byte("garbage\x00")); err == nil {
		t.Error("expected error for malformed record")
	}
}

func TestFakeGitRepo(t *testing.T) {
	fake := NewFakeGitRepo("/repo")
	fake.AddConflict("z.dmi", []byte("a"), []byte("o"), []byte("t"))
	fake.AddConflict("a.dmi", nil, []byte("o"), []byte("t"))

	conflicts, err := fake.Conflicts("/repo")
	if err != nil {
		t.Fatalf("Conflicts failed: %v", err)
	}
	if len(conflicts) != 2 || conflicts[0].Path != "a.dmi" {
		t.Fatalf("Conflicts not sorted: %v", conflicts)
	}
	if conflicts[0].Complete() {
		t.Error("missing ancestor should be incomplete")
	}

	data, err := fake.ReadBlob("/repo", conflicts[1].Theirs)
	if err != nil || string(data) != "t" {
		t.Errorf("ReadBlob = %q, %v", data, err)
	}

	boom := errors.New("boom")
	fake.SetError(boom)
	if _, err := fake.Discover("/"); !errors.Is(err, boom) {
		t.Errorf("expected injected error, got %v", err)
	}
}
