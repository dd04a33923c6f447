package engine

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/danieljhkim/iconmerge/internal/config"
	"github.com/danieljhkim/iconmerge/internal/sheet/sheettest"
)

func testOptions() config.Options {
	opts := config.Defaults()
	opts.Workers = 2
	return opts
}

// writeWorktree writes the conflicted working tree copy of relPath.
func writeWorktree(t *testing.T, root, relPath string, data []byte) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write %s: %v", relPath, err)
	}
	return path
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return data
}

func TestResolve_MixedOutcomes(t *testing.T) {
	eng, gitRepo, _ := newTestEngine(t)
	root, _ := gitRepo.Discover("")

	a, o, th := disjointVersions(t)
	gitRepo.AddConflict("icons/good.dmi", marshal(t, a), marshal(t, o), marshal(t, th))
	goodPath := writeWorktree(t, root, "icons/good.dmi", []byte("<<<<<<< conflict"))

	clash := sheettest.Clone(t, a)
	sheettest.Paint(t, clash, "walk", blue)
	gitRepo.AddConflict("icons/clash.dmi", marshal(t, a), marshal(t, clash), marshal(t, th))
	clashPath := writeWorktree(t, root, "icons/clash.dmi", []byte("<<<<<<< conflict"))

	gitRepo.AddConflict("icons/broken.dmi", marshal(t, a), []byte("garbage"), marshal(t, th))
	gitRepo.AddConflict("icons/new.dmi", nil, marshal(t, o), marshal(t, th))
	gitRepo.AddConflict("docs/readme.md", []byte("a"), []byte("o"), []byte("t"))

	result, err := eng.Resolve(context.Background(), &ResolveRequest{CWD: root, Options: testOptions()})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if !slices.Equal(result.Succeeded, []string{"icons/good.dmi"}) {
		t.Errorf("Succeeded = %v", result.Succeeded)
	}
	wantFailed := []string{"icons/broken.dmi", "icons/clash.dmi", "icons/new.dmi"}
	if !slices.Equal(result.Failed, wantFailed) {
		t.Errorf("Failed = %v, want %v", result.Failed, wantFailed)
	}
	if !slices.Equal(result.Ignored, []string{"docs/readme.md"}) {
		t.Errorf("Ignored = %v, want [docs/readme.md]", result.Ignored)
	}

	reasons := map[string]Reason{}
	for _, f := range result.Files {
		reasons[f.Path] = f.Outcome.Reason
	}
	want := map[string]Reason{
		"icons/broken.dmi": ReasonDecodeError,
		"icons/clash.dmi":  ReasonPixelConflict,
		"icons/new.dmi":    ReasonMissingStage,
		"icons/good.dmi":   "",
	}
	for path, reason := range want {
		if reasons[path] != reason {
			t.Errorf("%s reason = %q, want %q", path, reasons[path], reason)
		}
	}

	merged := decode(t, readFile(t, goodPath))
	assertAll(t, merged, "idle", blue)
	assertAll(t, merged, "walk", yellow)

	if got := readFile(t, clashPath); string(got) != "<<<<<<< conflict" {
		t.Error("failed file was modified")
	}
	if len(gitRepo.Staged()) != 0 {
		t.Errorf("staged %v without Stage option", gitRepo.Staged())
	}
}

func TestResolve_ResultsSortedAndTimed(t *testing.T) {
	eng, gitRepo, _ := newTestEngine(t)
	root, _ := gitRepo.Discover("")

	a, o, th := disjointVersions(t)
	for _, p := range []string{"z.dmi", "m/a.dmi", "b.DMI", "a.dmi"} {
		gitRepo.AddConflict(p, marshal(t, a), marshal(t, o), marshal(t, th))
	}

	opts := testOptions()
	opts.Workers = 3
	result, err := eng.Resolve(context.Background(), &ResolveRequest{CWD: root, Options: opts})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	var paths []string
	for _, f := range result.Files {
		paths = append(paths, f.Path)
	}
	if !slices.Equal(paths, []string{"a.dmi", "b.DMI", "m/a.dmi", "z.dmi"}) {
		t.Errorf("paths = %v, want sorted", paths)
	}
	if !result.StartedAt.Equal(testStart) || result.Duration != time.Second {
		t.Errorf("timing = %v / %v", result.StartedAt, result.Duration)
	}

	digest := result.Files[0].Digest
	for _, f := range result.Files {
		if f.Digest != digest {
			t.Errorf("%s digest differs for identical inputs", f.Path)
		}
	}
}

func TestResolve_DryRun(t *testing.T) {
	eng, gitRepo, _ := newTestEngine(t)
	root, _ := gitRepo.Discover("")

	a, o, th := disjointVersions(t)
	gitRepo.AddConflict("icons/mob.dmi", marshal(t, a), marshal(t, o), marshal(t, th))
	path := writeWorktree(t, root, "icons/mob.dmi", []byte("conflict"))

	opts := testOptions()
	opts.DryRun = true
	opts.Stage = true
	result, err := eng.Resolve(context.Background(), &ResolveRequest{CWD: root, Options: opts})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if len(result.Succeeded) != 1 || !result.DryRun {
		t.Fatalf("result = %+v", result)
	}
	f := result.Files[0]
	if f.Written || f.Staged || f.Output == nil {
		t.Errorf("dry run file = written %t staged %t output %d bytes", f.Written, f.Staged, len(f.Output))
	}
	if got := readFile(t, path); string(got) != "conflict" {
		t.Error("dry run modified the working tree")
	}
	if len(gitRepo.Staged()) != 0 {
		t.Errorf("dry run staged %v", gitRepo.Staged())
	}
}

func TestResolve_StagesWrittenFiles(t *testing.T) {
	eng, gitRepo, _ := newTestEngine(t)
	root, _ := gitRepo.Discover("")

	a, o, th := disjointVersions(t)
	gitRepo.AddConflict("b.dmi", marshal(t, a), marshal(t, o), marshal(t, th))
	gitRepo.AddConflict("a.dmi", marshal(t, a), marshal(t, o), marshal(t, th))
	gitRepo.AddConflict("bad.dmi", marshal(t, a), []byte("x"), marshal(t, th))

	opts := testOptions()
	opts.Stage = true
	result, err := eng.Resolve(context.Background(), &ResolveRequest{CWD: root, Options: opts})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if !slices.Equal(gitRepo.Staged(), []string{"a.dmi", "b.dmi"}) {
		t.Errorf("Staged = %v, want [a.dmi b.dmi]", gitRepo.Staged())
	}
	for _, f := range result.Files {
		if f.Staged != f.Succeeded() {
			t.Errorf("%s staged = %t, succeeded = %t", f.Path, f.Staged, f.Succeeded())
		}
	}
}

func TestResolve_PathFilter(t *testing.T) {
	eng, gitRepo, _ := newTestEngine(t)
	root, _ := gitRepo.Discover("")

	a, o, th := disjointVersions(t)
	gitRepo.AddConflict("a.dmi", marshal(t, a), marshal(t, o), marshal(t, th))
	gitRepo.AddConflict("b.dmi", marshal(t, a), marshal(t, o), marshal(t, th))

	result, err := eng.Resolve(context.Background(), &ResolveRequest{
		CWD:     root,
		Options: testOptions(),
		Paths:   []string{"./b.dmi"},
	})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !slices.Equal(result.Succeeded, []string{"b.dmi"}) {
		t.Errorf("Succeeded = %v, want [b.dmi]", result.Succeeded)
	}

	_, err = eng.Resolve(context.Background(), &ResolveRequest{
		CWD:     root,
		Options: testOptions(),
		Paths:   []string{"../outside.dmi"},
	})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for escaping path, got %v", err)
	}
}

func TestResolve_Errors(t *testing.T) {
	t.Run("not in repo", func(t *testing.T) {
		eng, gitRepo, _ := newTestEngine(t)
		gitRepo.SetError(errors.New("no .git"))

		_, err := eng.Resolve(context.Background(), &ResolveRequest{CWD: "/tmp", Options: testOptions()})
		if !errors.Is(err, ErrNotInRepo) {
			t.Errorf("expected ErrNotInRepo, got %v", err)
		}
	})

	t.Run("zero workers", func(t *testing.T) {
		eng, _, _ := newTestEngine(t)
		opts := testOptions()
		opts.Workers = 0

		_, err := eng.Resolve(context.Background(), &ResolveRequest{Options: opts})
		if !errors.Is(err, ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("no conflicts is not an error", func(t *testing.T) {
		eng, gitRepo, _ := newTestEngine(t)
		root, _ := gitRepo.Discover("")

		result, err := eng.Resolve(context.Background(), &ResolveRequest{CWD: root, Options: testOptions()})
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if len(result.Files) != 0 || len(result.Succeeded) != 0 || len(result.Failed) != 0 {
			t.Errorf("result = %+v, want empty", result)
		}
	})
}

func TestResolve_CanceledContext(t *testing.T) {
	eng, gitRepo, _ := newTestEngine(t)
	root, _ := gitRepo.Discover("")

	a, o, th := disjointVersions(t)
	gitRepo.AddConflict("a.dmi", marshal(t, a), marshal(t, o), marshal(t, th))
	path := writeWorktree(t, root, "a.dmi", []byte("conflict"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := eng.Resolve(ctx, &ResolveRequest{CWD: root, Options: testOptions()})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result == nil || len(result.Succeeded) != 0 {
		t.Errorf("result = %+v, want no merged files", result)
	}
	if got := readFile(t, path); !bytes.Equal(got, []byte("conflict")) {
		t.Error("canceled run modified the working tree")
	}
}
