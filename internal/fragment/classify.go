package fragment

import (
	"bytes"

	"github.com/danieljhkim/iconmerge/internal/sheet"
)

// Classify compares every state named in src or dst and returns a fresh report.
// Neither sheet is modified.
func Classify(src, dst *sheet.Sheet) Report {
	return ClassifyWith(src, dst, nil)
}

// MetaDiffFunc receives both versions of a state whose non-offset metadata differs.
type MetaDiffFunc func(name string, was, now *sheet.State)

// ClassifyWith is Classify with a hook called for every ChangedMeta state
// caused by a metadata difference. A nil hook is allowed.
func ClassifyWith(src, dst *sheet.Sheet, onMeta MetaDiffFunc) Report {
	report := make(Report, len(src.Catalogue)+len(dst.Catalogue))
	sameGeometry := src.SameGeometry(dst)

	for name := range unionNames(src, dst) {
		was, inSrc := src.State(name)
		if !inSrc {
			report[name] = Added
			continue
		}
		now, inDst := dst.State(name)
		if !inDst {
			report[name] = Removed
			continue
		}

		if !was.MetaEqual(now) {
			if onMeta != nil {
				onMeta(name, was, now)
			}
			report[name] = ChangedMeta
			continue
		}
		if !sameGeometry {
			report[name] = ChangedMeta
			continue
		}

		status := Unchanged
		if was.Offset != now.Offset {
			status = ChangedOffsetOnly
		}
		if !pixelsEqual(src, dst, was) {
			status = status.promote()
		}
		report[name] = status
	}

	return report
}

func unionNames(a, b *sheet.Sheet) map[string]struct{} {
	names := make(map[string]struct{}, len(a.Catalogue)+len(b.Catalogue))
	for name := range a.Catalogue {
		names[name] = struct{}{}
	}
	for name := range b.Catalogue {
		names[name] = struct{}{}
	}
	return names
}

// pixelsEqual compares every icon of st in both sheets, stopping at the first
// mismatch. Rectangles are resolved independently per sheet.
func pixelsEqual(src, dst *sheet.Sheet, st *sheet.State) bool {
	for _, dir := range st.Dirs.Directions() {
		for frame := 0; frame < st.Frames(); frame++ {
			if !iconEqual(src, dst, st.Name, dir, frame) {
				return false
			}
		}
	}
	return true
}

// Decode validates every rectangle, so a lookup error here is a decoder defect.
func iconEqual(src, dst *sheet.Sheet, name string, dir sheet.Direction, frame int) bool {
	srcRect, err := src.Rect(name, dir, frame)
	if err != nil {
		panic(err)
	}
	dstRect, err := dst.Rect(name, dir, frame)
	if err != nil {
		panic(err)
	}
	if srcRect.Size() != dstRect.Size() {
		return false
	}

	rowBytes := srcRect.Dx() * 4
	for y := 0; y < srcRect.Dy(); y++ {
		a := src.Grid.PixOffset(srcRect.Min.X, srcRect.Min.Y+y)
		b := dst.Grid.PixOffset(dstRect.Min.X, dstRect.Min.Y+y)
		if !bytes.Equal(src.Grid.Pix[a:a+rowBytes], dst.Grid.Pix[b:b+rowBytes]) {
			return false
		}
	}
	return true
}
