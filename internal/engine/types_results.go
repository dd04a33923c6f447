package engine

import (
	"time"

	"github.com/danieljhkim/iconmerge/internal/fragment"
	"github.com/danieljhkim/iconmerge/internal/overlay"
	"github.com/danieljhkim/iconmerge/internal/planner"
	"github.com/danieljhkim/iconmerge/internal/sheet"
)

// Status is the final state of one merge.
type Status string

// Status constants
const (
	Succeeded Status = "succeeded"
	Failed    Status = "failed"
)

// Reason explains a failed merge.
type Reason string

// Failure reasons
const (
	ReasonPixelConflict  Reason = "pixel-conflict"
	ReasonMetaConflict   Reason = "meta-conflict"
	ReasonDecodeError    Reason = "decode-error"
	ReasonCompositeError Reason = "composite-error"
	ReasonEncodeError    Reason = "encode-error"
	ReasonMissingStage   Reason = "missing-stage"
	ReasonReadError      Reason = "read-error"
	ReasonWriteError     Reason = "write-error"
	ReasonCanceled       Reason = "canceled"
)

// MetaDiff records one state whose metadata differs from the ancestor.
type MetaDiff struct {
	// Side is the version the difference was found in (empty for plain diffs)
	Side planner.Side `json:"side,omitempty"`

	// State is the state name
	State string `json:"state"`

	// Was and Now are the ancestor's and the side's catalogue entries
	Was *sheet.State `json:"was"`
	Now *sheet.State `json:"now"`
}

// Outcome represents the result of one three-way merge.
type Outcome struct {
	// Status is Succeeded or Failed
	Status Status `json:"status"`

	// Reason is set when Status is Failed
	Reason Reason `json:"reason,omitempty"`

	// Detail is a human-readable explanation of the failure
	Detail string `json:"detail,omitempty"`

	// Ours and Theirs are the fragment reports of each side against the ancestor
	Ours   fragment.Report `json:"ours,omitempty"`
	Theirs fragment.Report `json:"theirs,omitempty"`

	// MetaDiffs lists every state whose metadata changed, ordered by side then state
	MetaDiffs []MetaDiff `json:"meta_diffs,omitempty"`

	// Plan is the planner decision (nil when decoding failed)
	Plan *planner.MergePlan `json:"plan,omitempty"`

	// Base is the side whose catalogue and chunks the merged sheet carries
	Base planner.Side `json:"base,omitempty"`

	// Skipped lists overlay states that were left as the base had them
	Skipped []overlay.Skip `json:"skipped,omitempty"`

	// Merged is the merged sheet when Status is Succeeded
	Merged *sheet.Sheet `json:"-"`
}

// Succeeded reports whether the merge produced a sheet.
func (o *Outcome) Succeeded() bool {
	return o.Status == Succeeded
}

func (o *Outcome) fail(reason Reason, detail string) *Outcome {
	o.Status = Failed
	o.Reason = reason
	o.Detail = detail
	o.Merged = nil
	return o
}

func failed(reason Reason, detail string) *Outcome {
	return (&Outcome{}).fail(reason, detail)
}

// FileResult represents the result of merging one conflicted file.
type FileResult struct {
	// Path is the repository-relative path of the file
	Path string `json:"path"`

	// Outcome is the merge outcome
	Outcome *Outcome `json:"outcome"`

	// Output is the encoded merged icon (nil on failure)
	Output []byte `json:"-"`

	// Size is len(Output)
	Size int `json:"size,omitempty"`

	// Digest is the hex SHA-256 of Output
	Digest string `json:"digest,omitempty"`

	// Written indicates Output replaced the working tree file
	Written bool `json:"written"`

	// Staged indicates the written file was added to the index
	Staged bool `json:"staged"`
}

// Succeeded reports whether the file merged.
func (r *FileResult) Succeeded() bool {
	return r.Outcome != nil && r.Outcome.Succeeded()
}

// ResolveResult represents the result of a repository-wide run.
type ResolveResult struct {
	// Root is the repository root
	Root string `json:"root"`

	// Files holds one result per processed file, sorted by path
	Files []*FileResult `json:"files"`

	// Succeeded and Failed partition the processed paths
	Succeeded []string `json:"succeeded"`
	Failed    []string `json:"failed"`

	// Ignored lists conflicted paths that did not match the configured extensions
	Ignored []string `json:"ignored,omitempty"`

	// DryRun indicates nothing was written
	DryRun bool `json:"dry_run"`

	// StartedAt and Duration time the run
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

// DiffResult represents the classification of one file against another.
type DiffResult struct {
	// From and To are the compared paths
	From string `json:"from"`
	To   string `json:"to"`

	// FromDigest and ToDigest are the hex SHA-256 of each file
	FromDigest string `json:"from_digest"`
	ToDigest   string `json:"to_digest"`

	// Report classifies every state named by either file
	Report fragment.Report `json:"report"`

	// Changes lists the meaningful changes sorted by state name
	Changes []fragment.Entry `json:"changes"`

	// MetaDiffs lists states whose metadata changed, sorted by state
	MetaDiffs []MetaDiff `json:"meta_diffs,omitempty"`
}
