// Package sheettest builds small in-memory sheets for tests.
package sheettest

import (
	"image"
	"image/color"
	"testing"

	"github.com/danieljhkim/iconmerge/internal/sheet"
)

// IconSize is the edge length of every icon built by this package.
const IconSize = 4

// StateSpec describes one state to lay out.
type StateSpec struct {
	Name   string
	Dirs   sheet.DirSet
	Frames int
	Offset image.Point
	Color  color.NRGBA
}

// Build lays the specs out in order on a grid cols icons wide and paints
// every icon of a state with its Color.
func Build(t testing.TB, cols int, specs ...StateSpec) *sheet.Sheet {
	t.Helper()

	states := make([]*sheet.State, 0, len(specs))
	icons := 0
	for _, spec := range specs {
		frames := spec.Frames
		if frames == 0 {
			frames = 1
		}
		delays := make([]float64, frames)
		for i := range delays {
			delays[i] = 1
		}
		st := &sheet.State{
			Name:   spec.Name,
			Dirs:   spec.Dirs,
			Delays: delays,
			Offset: spec.Offset,
		}
		states = append(states, st)
		icons += st.Icons()
	}

	rows := (icons + cols - 1) / cols
	if rows == 0 {
		rows = 1
	}
	grid := image.NewNRGBA(image.Rect(0, 0, cols*IconSize, rows*IconSize))

	s, err := sheet.New(grid, IconSize, IconSize, states)
	if err != nil {
		t.Fatalf("failed to build sheet: %v", err)
	}
	for _, spec := range specs {
		Paint(t, s, spec.Name, spec.Color)
	}
	return s
}

// Paint fills every icon of the named state with c.
func Paint(t testing.TB, s *sheet.Sheet, name string, c color.NRGBA) {
	t.Helper()

	st, ok := s.State(name)
	if !ok {
		t.Fatalf("state %q not in sheet", name)
	}
	for _, dir := range st.Dirs.Directions() {
		for frame := 0; frame < st.Frames(); frame++ {
			r, err := s.Rect(name, dir, frame)
			if err != nil {
				t.Fatalf("failed to resolve %q: %v", name, err)
			}
			for y := r.Min.Y; y < r.Max.Y; y++ {
				for x := r.Min.X; x < r.Max.X; x++ {
					s.Grid.SetNRGBA(x, y, c)
				}
			}
		}
	}
}

// SetPixel sets one pixel of one icon, relative to the icon's origin.
func SetPixel(t testing.TB, s *sheet.Sheet, name string, dir sheet.Direction, frame, x, y int, c color.NRGBA) {
	t.Helper()

	r, err := s.Rect(name, dir, frame)
	if err != nil {
		t.Fatalf("failed to resolve %q: %v", name, err)
	}
	s.Grid.SetNRGBA(r.Min.X+x, r.Min.Y+y, c)
}

// Pixel returns one pixel of one icon, relative to the icon's origin.
func Pixel(t testing.TB, s *sheet.Sheet, name string, dir sheet.Direction, frame, x, y int) color.NRGBA {
	t.Helper()

	r, err := s.Rect(name, dir, frame)
	if err != nil {
		t.Fatalf("failed to resolve %q: %v", name, err)
	}
	return s.Grid.NRGBAAt(r.Min.X+x, r.Min.Y+y)
}

// Clone returns a deep copy of s, including its grid and states.
func Clone(t testing.TB, s *sheet.Sheet) *sheet.Sheet {
	t.Helper()

	grid := image.NewNRGBA(s.Grid.Bounds())
	copy(grid.Pix, s.Grid.Pix)

	states := make([]*sheet.State, 0, len(s.Order))
	for _, name := range s.Order {
		states = append(states, s.Catalogue[name].Clone())
	}
	out, err := sheet.New(grid, s.IconWidth, s.IconHeight, states)
	if err != nil {
		t.Fatalf("failed to clone sheet: %v", err)
	}
	out.Chunks = s.Chunks
	return out
}
