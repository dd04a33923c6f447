package engine

import (
	"image/color"
	"testing"
	"time"

	"github.com/danieljhkim/iconmerge/internal/clock"
	"github.com/danieljhkim/iconmerge/internal/dmi"
	"github.com/danieljhkim/iconmerge/internal/fsops"
	"github.com/danieljhkim/iconmerge/internal/gitx"
	"github.com/danieljhkim/iconmerge/internal/hash"
	"github.com/danieljhkim/iconmerge/internal/sheet"
	"github.com/danieljhkim/iconmerge/internal/sheet/sheettest"
)

var (
	red    = color.NRGBA{R: 255, A: 255}
	green  = color.NRGBA{G: 255, A: 255}
	blue   = color.NRGBA{B: 255, A: 255}
	yellow = color.NRGBA{R: 255, G: 255, A: 255}
	purple = color.NRGBA{R: 128, B: 128, A: 255}
)

// ancestorSheet builds the common ancestor: idle (4 dirs) in red and walk
// (4 dirs, 2 frames) in green.
func ancestorSheet(t *testing.T) *sheet.Sheet {
	t.Helper()
	return sheettest.Build(t, 4,
		sheettest.StateSpec{Name: "idle", Dirs: sheet.Four, Frames: 1, Color: red},
		sheettest.StateSpec{Name: "walk", Dirs: sheet.Four, Frames: 2, Color: green},
	)
}

func marshal(t *testing.T, s *sheet.Sheet) []byte {
	t.Helper()
	data, err := dmi.Marshal(s)
	if err != nil {
		t.Fatalf("dmi.Marshal failed: %v", err)
	}
	return data
}

func decode(t *testing.T, data []byte) *sheet.Sheet {
	t.Helper()
	s, err := dmi.Decode(data)
	if err != nil {
		t.Fatalf("dmi.Decode failed: %v", err)
	}
	return s
}

// disjointVersions returns ancestor, ours and theirs where ours repaints
// idle and theirs repaints walk.
func disjointVersions(t *testing.T) (a, o, th *sheet.Sheet) {
	t.Helper()
	a = ancestorSheet(t)
	o = sheettest.Clone(t, a)
	sheettest.Paint(t, o, "idle", blue)
	th = sheettest.Clone(t, a)
	sheettest.Paint(t, th, "walk", yellow)
	return a, o, th
}

var testStart = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

// newTestEngine wires a FakeGitRepo rooted at a temp dir to real filesystem
// and hashing, with a fake clock that ticks once per second.
func newTestEngine(t *testing.T) (*Engine, *gitx.FakeGitRepo, *clock.FakeClock) {
	t.Helper()
	gitRepo := gitx.NewFakeGitRepo(t.TempDir())
	clk := clock.NewFakeClock(testStart)
	clk.SetStep(time.Second)
	return New(gitRepo, fsops.NewRealFS(), hash.NewSHA256Hasher(), clk), gitRepo, clk
}
