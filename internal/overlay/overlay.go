// Package overlay copies the icons of selected states from one sheet onto
// another.
package overlay

import (
	"errors"
	"fmt"
	"image"

	"github.com/danieljhkim/iconmerge/internal/sheet"
)

// ErrGeometryMismatch indicates a state whose icons differ in size between
// the base and the increment. The merge planner never asks for such a state,
// so seeing it means a caller broke that precondition.
var ErrGeometryMismatch = errors.New("icon geometry mismatch")

// SkipReason explains why a requested state was not copied.
type SkipReason string

const (
	// MissingInBase means the base catalogue has no such state, typically
	// because the base side removed it.
	MissingInBase SkipReason = "missing-in-base"

	// MissingInIncrement means the increment has no such state to copy from.
	MissingInIncrement SkipReason = "missing-in-increment"
)

// Skip records one requested state that was left as the base had it.
type Skip struct {
	State  string     `json:"state"`
	Reason SkipReason `json:"reason"`
}

// Result is the outcome of one overlay.
type Result struct {
	// Grid is a new grid equal to the base grid except inside copied icons.
	Grid *image.NRGBA

	// Copied lists the states whose icons were copied, in request order.
	Copied []string

	// Skipped lists the requested states that were not copied.
	Skipped []Skip
}

// Overlay copies every icon of the named states from inc onto a copy of
// base's grid. Rectangles are resolved through each sheet's own catalogue.
// Neither input sheet is modified.
//
// States absent from either catalogue are skipped and reported rather than
// treated as errors.
func Overlay(base, inc *sheet.Sheet, names []string) (*Result, error) {
	grid := image.NewNRGBA(base.Grid.Bounds())
	copy(grid.Pix, base.Grid.Pix)

	result := &Result{Grid: grid}
	for _, name := range names {
		st, ok := base.State(name)
		if !ok {
			result.Skipped = append(result.Skipped, Skip{State: name, Reason: MissingInBase})
			continue
		}
		if _, ok := inc.State(name); !ok {
			result.Skipped = append(result.Skipped, Skip{State: name, Reason: MissingInIncrement})
			continue
		}

		if err := copyState(grid, base, inc, st); err != nil {
			return nil, err
		}
		result.Copied = append(result.Copied, name)
	}

	return result, nil
}

func copyState(grid *image.NRGBA, base, inc *sheet.Sheet, st *sheet.State) error {
	for _, dir := range st.Dirs.Directions() {
		for frame := 0; frame < st.Frames(); frame++ {
			dst, err := base.Rect(st.Name, dir, frame)
			if err != nil {
				return fmt.Errorf("base %s/%s/%d: %w", st.Name, dir, frame, err)
			}
			src, err := inc.Rect(st.Name, dir, frame)
			if err != nil {
				return fmt.Errorf("%w: increment %s/%s/%d: %v", ErrGeometryMismatch, st.Name, dir, frame, err)
			}
			if dst.Size() != src.Size() {
				return fmt.Errorf("%w: state %q base %v increment %v", ErrGeometryMismatch, st.Name, dst.Size(), src.Size())
			}

			copyRect(grid, dst, inc.Grid, src.Min)
		}
	}
	return nil
}

// copyRect copies raw pixel rows so non-premultiplied values survive exactly.
func copyRect(dst *image.NRGBA, r image.Rectangle, src *image.NRGBA, sp image.Point) {
	rowBytes := r.Dx() * 4
	for y := 0; y < r.Dy(); y++ {
		d := dst.PixOffset(r.Min.X, r.Min.Y+y)
		s := src.PixOffset(sp.X, sp.Y+y)
		copy(dst.Pix[d:d+rowBytes], src.Pix[s:s+rowBytes])
	}
}
