package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/danieljhkim/iconmerge/internal/dmi"
	"github.com/danieljhkim/iconmerge/internal/fragment"
	"github.com/danieljhkim/iconmerge/internal/overlay"
	"github.com/danieljhkim/iconmerge/internal/planner"
	"github.com/danieljhkim/iconmerge/internal/sheet"
)

// Merge performs a three-way merge of decoded sheets. It never modifies its
// inputs and never returns an error: every failure is an Outcome.
func Merge(ancestor, ours, theirs *sheet.Sheet) *Outcome {
	out := &Outcome{}
	out.Ours = fragment.ClassifyWith(ancestor, ours, out.recordMeta(planner.Ours))
	out.Theirs = fragment.ClassifyWith(ancestor, theirs, out.recordMeta(planner.Theirs))
	sortMetaDiffs(out.MetaDiffs)

	plan := planner.Plan(out.Ours, out.Theirs)
	out.Plan = plan
	if plan.HasConflicts() {
		return out.fail(conflictReason(plan.Kind()), describeConflicts(plan.Conflicts))
	}

	base, inc := ours, theirs
	if plan.Base == planner.Theirs {
		base, inc = theirs, ours
	}

	res, err := overlay.Overlay(base, inc, plan.Overlay)
	if err != nil {
		return out.fail(ReasonCompositeError, err.Error())
	}

	out.Status = Succeeded
	out.Base = plan.Base
	out.Skipped = res.Skipped
	out.Merged = base.WithGrid(res.Grid)
	return out
}

// MergeBlobs decodes the three versions of path, merges them and encodes the
// result with the base side's text chunks.
func (e *Engine) MergeBlobs(ctx context.Context, path string, ancestor, ours, theirs []byte) *FileResult {
	result := &FileResult{Path: path}

	var sheets [3]*sheet.Sheet
	for i, blob := range [][]byte{ancestor, ours, theirs} {
		if err := ctx.Err(); err != nil {
			result.Outcome = failed(ReasonCanceled, err.Error())
			return result
		}
		s, err := dmi.Decode(blob)
		if err != nil {
			result.Outcome = failed(ReasonDecodeError, fmt.Sprintf("%s: %v", versionNames[i], err))
			return result
		}
		sheets[i] = s
	}

	if err := ctx.Err(); err != nil {
		result.Outcome = failed(ReasonCanceled, err.Error())
		return result
	}

	outcome := Merge(sheets[0], sheets[1], sheets[2])
	result.Outcome = outcome
	if !outcome.Succeeded() {
		return result
	}

	data, err := dmi.EncodeSheet(outcome.Merged)
	if err != nil {
		outcome.fail(ReasonEncodeError, err.Error())
		return result
	}

	result.Output = data
	result.Size = len(data)
	result.Digest = e.hasher.HashBytes(data)
	return result
}

var versionNames = [3]string{"ancestor", "ours", "theirs"}

func (o *Outcome) recordMeta(side planner.Side) fragment.MetaDiffFunc {
	return func(name string, was, now *sheet.State) {
		o.MetaDiffs = append(o.MetaDiffs, MetaDiff{Side: side, State: name, Was: was, Now: now})
	}
}

func sortMetaDiffs(diffs []MetaDiff) {
	sort.Slice(diffs, func(i, j int) bool {
		if diffs[i].Side != diffs[j].Side {
			return diffs[i].Side == planner.Ours
		}
		return diffs[i].State < diffs[j].State
	})
}

func conflictReason(kind planner.ConflictKind) Reason {
	if kind == planner.MetaConflict {
		return ReasonMetaConflict
	}
	return ReasonPixelConflict
}

func describeConflicts(conflicts []planner.Conflict) string {
	if len(conflicts) == 1 && conflicts[0].State == "" {
		return conflicts[0].Reason
	}
	names := make([]string, 0, len(conflicts))
	for _, c := range conflicts {
		names = append(names, c.State)
	}
	return "both sides changed pixels of: " + strings.Join(names, ", ")
}
