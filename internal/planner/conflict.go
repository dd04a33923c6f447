package planner

import (
	"fmt"
	"sort"

	"github.com/danieljhkim/iconmerge/internal/fragment"
)

// Plan decides how to merge a file given both fragment reports.
//
// Any state whose pixels changed on both sides makes the whole file
// unmergeable; no partial merge is attempted. If both sides changed
// metadata the file is unmergeable as well. Otherwise the side that changed
// metadata (ours when neither did) becomes the base.
func Plan(ours, theirs fragment.Report) *MergePlan {
	plan := NewMergePlan()

	for _, name := range unionNames(ours, theirs) {
		o, t := ours.Get(name), theirs.Get(name)
		if o.HasPixelChange() && t.HasPixelChange() {
			plan.AddConflict(Conflict{
				Kind:   PixelConflict,
				State:  name,
				Reason: fmt.Sprintf("both sides changed state %q (ours: %s, theirs: %s)", name, o, t),
				Ours:   o,
				Theirs: t,
			})
		}
	}
	if plan.HasConflicts() {
		return plan
	}

	metaOurs := ours.AnyMetaChange()
	metaTheirs := theirs.AnyMetaChange()
	if metaOurs && metaTheirs {
		plan.AddConflict(Conflict{
			Kind:   MetaConflict,
			Reason: "both sides changed the sheet metadata",
		})
		return plan
	}

	increment := theirs
	plan.Base, plan.Increment = Ours, Theirs
	if metaTheirs {
		increment = ours
		plan.Base, plan.Increment = Theirs, Ours
	}

	// Only states the increment repainted are copied. An unchanged increment
	// state still holds ancestor pixels and would undo edits made on the base.
	plan.Overlay = increment.Filter(fragment.Status.HasPixelChange)

	return plan
}

func unionNames(a, b fragment.Report) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	for name := range a {
		seen[name] = struct{}{}
	}
	for name := range b {
		seen[name] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
