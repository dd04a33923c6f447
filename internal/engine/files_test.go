package engine

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/danieljhkim/iconmerge/internal/sheet/sheettest"
)

func TestMergeFiles(t *testing.T) {
	eng, _, _ := newTestEngine(t)

	setup := func(t *testing.T, ours []byte) (dir string, req *MergeFilesRequest) {
		t.Helper()
		a, o, th := disjointVersions(t)
		if ours == nil {
			ours = marshal(t, o)
		}
		dir = t.TempDir()
		return dir, &MergeFilesRequest{
			Ancestor: writeWorktree(t, dir, "base.dmi", marshal(t, a)),
			Ours:     writeWorktree(t, dir, "ours.dmi", ours),
			Theirs:   writeWorktree(t, dir, "theirs.dmi", marshal(t, th)),
			Path:     "icons/mob.dmi",
		}
	}

	t.Run("writes merged result over ours", func(t *testing.T) {
		_, req := setup(t, nil)
		if err := os.Chmod(req.Ours, 0600); err != nil {
			t.Fatalf("chmod failed: %v", err)
		}

		result, err := eng.MergeFiles(context.Background(), req)
		if err != nil {
			t.Fatalf("MergeFiles failed: %v", err)
		}
		if !result.Succeeded() || !result.Written || result.Path != "icons/mob.dmi" {
			t.Fatalf("result = %+v", result)
		}

		merged := decode(t, readFile(t, req.Ours))
		assertAll(t, merged, "idle", blue)
		assertAll(t, merged, "walk", yellow)

		info, err := os.Stat(req.Ours)
		if err != nil {
			t.Fatalf("Stat failed: %v", err)
		}
		if info.Mode().Perm() != 0600 {
			t.Errorf("mode = %v, want 0600 kept", info.Mode().Perm())
		}
	})

	t.Run("conflict leaves ours untouched", func(t *testing.T) {
		a := ancestorSheet(t)
		clash := sheettest.Clone(t, a)
		sheettest.Paint(t, clash, "walk", purple)
		oursBytes := marshal(t, clash)
		_, req := setup(t, oursBytes)

		result, err := eng.MergeFiles(context.Background(), req)
		if err != nil {
			t.Fatalf("MergeFiles failed: %v", err)
		}
		if result.Succeeded() || result.Written {
			t.Fatalf("expected conflict, got %+v", result.Outcome)
		}
		if !bytes.Equal(readFile(t, req.Ours), oursBytes) {
			t.Error("ours was modified on conflict")
		}
	})

	t.Run("dry run", func(t *testing.T) {
		_, req := setup(t, nil)
		before := readFile(t, req.Ours)
		req.DryRun = true

		result, err := eng.MergeFiles(context.Background(), req)
		if err != nil {
			t.Fatalf("MergeFiles failed: %v", err)
		}
		if !result.Succeeded() || result.Written {
			t.Errorf("result = %+v", result)
		}
		if !bytes.Equal(readFile(t, req.Ours), before) {
			t.Error("dry run modified ours")
		}
	})

	t.Run("missing input", func(t *testing.T) {
		dir, req := setup(t, nil)
		req.Theirs = filepath.Join(dir, "gone.dmi")
		if _, err := eng.MergeFiles(context.Background(), req); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}
