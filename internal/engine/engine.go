// Package engine provides the merge orchestration for iconmerge.
//
// The engine package acts as the layer between CLI commands and the pure
// merge core. It decodes the three versions of a conflicted icon, classifies
// both sides against the ancestor, plans and composes the merge, and writes
// the result back to the working tree.
//
// Key components:
//   - Merge: the pure three-way merge of decoded sheets
//   - MergeBlobs: Merge wrapped with decoding and encoding
//   - Resolve: every conflicted icon of a repository on a bounded worker pool
//   - Diff: classification of two icon files for inspection
package engine

import (
	"github.com/danieljhkim/iconmerge/internal/clock"
	"github.com/danieljhkim/iconmerge/internal/fsops"
	"github.com/danieljhkim/iconmerge/internal/gitx"
	"github.com/danieljhkim/iconmerge/internal/hash"
)

// Engine orchestrates all iconmerge operations.
// It is the main API surface called by the CLI.
type Engine struct {
	gitRepo gitx.GitRepo
	fs      fsops.FS
	hasher  hash.Hasher
	clock   clock.Clock
}

// New creates a new Engine with the given dependencies.
func New(
	gitRepo gitx.GitRepo,
	fs fsops.FS,
	hasher hash.Hasher,
	clk clock.Clock,
) *Engine {
	return &Engine{
		gitRepo: gitRepo,
		fs:      fs,
		hasher:  hasher,
		clock:   clk,
	}
}
