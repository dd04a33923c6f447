package integration

import (
	"context"
	"image/color"
	"slices"
	"testing"

	"github.com/danieljhkim/iconmerge/internal/config"
	"github.com/danieljhkim/iconmerge/internal/engine"
	"github.com/danieljhkim/iconmerge/internal/sheet"
	"github.com/danieljhkim/iconmerge/internal/sheet/sheettest"
)

var (
	red    = color.NRGBA{R: 255, A: 255}
	green  = color.NRGBA{G: 255, A: 255}
	blue   = color.NRGBA{B: 255, A: 255}
	yellow = color.NRGBA{R: 255, G: 255, A: 255}
)

func mob(t *testing.T, idle, walk color.NRGBA) *sheet.Sheet {
	t.Helper()
	return sheettest.Build(t, 4,
		sheettest.StateSpec{Name: "idle", Dirs: sheet.Four, Frames: 1, Color: idle},
		sheettest.StateSpec{Name: "walk", Dirs: sheet.Four, Frames: 2, Color: walk},
	)
}

func TestResolve_FullCycle(t *testing.T) {
	dir := conflictRepo(t,
		map[string]*sheet.Sheet{
			"icons/mob.dmi":   mob(t, red, green),
			"icons/clash.dmi": mob(t, red, green),
		},
		map[string]*sheet.Sheet{
			"icons/mob.dmi":   mob(t, blue, green),
			"icons/clash.dmi": mob(t, blue, green),
		},
		map[string]*sheet.Sheet{
			"icons/mob.dmi":   mob(t, red, yellow),
			"icons/clash.dmi": mob(t, yellow, green),
		},
	)

	eng := setupTestEngine(t)
	opts := config.Defaults()
	opts.Stage = true

	result, err := eng.Resolve(context.Background(), &engine.ResolveRequest{CWD: dir, Options: opts})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if !slices.Equal(result.Succeeded, []string{"icons/mob.dmi"}) {
		t.Errorf("Succeeded = %v", result.Succeeded)
	}
	if !slices.Equal(result.Failed, []string{"icons/clash.dmi"}) {
		t.Errorf("Failed = %v", result.Failed)
	}

	merged := readIcon(t, dir, "icons/mob.dmi")
	if got := sheettest.Pixel(t, merged, "idle", sheet.North, 0, 0, 0); got != blue {
		t.Errorf("idle = %v, want ours' blue", got)
	}
	if got := sheettest.Pixel(t, merged, "walk", sheet.West, 1, 3, 3); got != yellow {
		t.Errorf("walk = %v, want theirs' yellow", got)
	}

	remaining := git(t, dir, "diff", "--name-only", "--diff-filter=U")
	if remaining != "icons/clash.dmi" {
		t.Errorf("unmerged paths = %q, want only icons/clash.dmi", remaining)
	}
}

func TestResolve_ConfigFileAndDryRun(t *testing.T) {
	dir := conflictRepo(t,
		map[string]*sheet.Sheet{"a.dmi": mob(t, red, green)},
		map[string]*sheet.Sheet{"a.dmi": mob(t, blue, green)},
		map[string]*sheet.Sheet{"a.dmi": mob(t, red, yellow)},
	)
	writeFile(t, dir, ".iconmerge.yaml", []byte("dry_run: true\nworkers: 1\n"))

	opts, err := config.Load(dir, nil)
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}
	if !opts.DryRun || opts.Workers != 1 {
		t.Fatalf("config not applied: %+v", opts)
	}

	result, err := setupTestEngine(t).Resolve(context.Background(), &engine.ResolveRequest{CWD: dir, Options: *opts})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(result.Succeeded) != 1 || result.Files[0].Written {
		t.Errorf("dry run result = %+v", result.Files[0])
	}
	if remaining := git(t, dir, "diff", "--name-only", "--diff-filter=U"); remaining != "a.dmi" {
		t.Errorf("dry run resolved the conflict: %q", remaining)
	}
}
