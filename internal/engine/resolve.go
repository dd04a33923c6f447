package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/danieljhkim/iconmerge/internal/config"
	"github.com/danieljhkim/iconmerge/internal/fsops"
	"github.com/danieljhkim/iconmerge/internal/gitx"
)

// Resolve merges every conflicted icon of the repository containing req.CWD.
//
// Files are merged concurrently, at most Options.Workers at a time. A file
// that fails is reported and left untouched; it never stops the others.
// Successful merges are written atomically unless DryRun is set, and staged
// afterwards when Stage is set. Cancelling ctx stops scheduling new files;
// the files finished so far are returned together with the context error.
func (e *Engine) Resolve(ctx context.Context, req *ResolveRequest) (*ResolveResult, error) {
	opts := req.Options
	if opts.Workers < 1 {
		return nil, fmt.Errorf("%w: workers must be at least 1", ErrValidation)
	}

	root, err := e.DiscoverRoot(req.CWD)
	if err != nil {
		return nil, err
	}

	conflicts, err := e.gitRepo.Conflicts(root)
	if err != nil {
		return nil, fmt.Errorf("failed to list conflicts: %w", err)
	}

	selected, ignored, err := e.selectConflicts(conflicts, &opts, req.Paths)
	if err != nil {
		return nil, err
	}

	result := &ResolveResult{
		Root:      root,
		Ignored:   ignored,
		DryRun:    opts.DryRun,
		StartedAt: e.clock.Now(),
	}

	files := make([]*FileResult, len(selected))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, c := range selected {
		if gctx.Err() != nil {
			break
		}
		i, c := i, c
		g.Go(func() error {
			files[i] = e.resolveOne(gctx, root, c, &opts)
			return nil
		})
	}
	_ = g.Wait()

	for _, f := range files {
		if f != nil {
			result.Files = append(result.Files, f)
		}
	}
	sort.Slice(result.Files, func(i, j int) bool { return result.Files[i].Path < result.Files[j].Path })

	var stageErr error
	if opts.Stage && !opts.DryRun {
		stageErr = e.stage(root, result.Files)
	}

	for _, f := range result.Files {
		if f.Succeeded() {
			result.Succeeded = append(result.Succeeded, f.Path)
		} else {
			result.Failed = append(result.Failed, f.Path)
		}
	}
	result.Duration = e.clock.Since(result.StartedAt)

	if err := ctx.Err(); err != nil {
		return result, err
	}
	if stageErr != nil {
		return result, stageErr
	}
	return result, nil
}

// selectConflicts keeps the conflicts whose path matches the configured
// extensions and, when given, the requested paths.
func (e *Engine) selectConflicts(conflicts []gitx.Conflict, opts *config.Options, paths []string) (selected []gitx.Conflict, ignored []string, err error) {
	var wanted map[string]bool
	if len(paths) > 0 {
		wanted = make(map[string]bool, len(paths))
		for _, p := range paths {
			if err := e.fs.ValidateRelPath(p); err != nil {
				return nil, nil, fmt.Errorf("%w: %v", ErrValidation, err)
			}
			wanted[filepath.ToSlash(filepath.Clean(p))] = true
		}
	}

	for _, c := range conflicts {
		if wanted != nil && !wanted[c.Path] {
			continue
		}
		if !opts.MatchesExtension(c.Path) {
			ignored = append(ignored, c.Path)
			continue
		}
		selected = append(selected, c)
	}
	return selected, ignored, nil
}

// resolveOne reads, merges and writes a single conflicted file.
func (e *Engine) resolveOne(ctx context.Context, root string, c gitx.Conflict, opts *config.Options) *FileResult {
	if !c.Complete() {
		return &FileResult{
			Path:    c.Path,
			Outcome: failed(ReasonMissingStage, missingStages(c)),
		}
	}

	blobs := make([][]byte, 0, 3)
	for _, oid := range []string{c.Ancestor, c.Ours, c.Theirs} {
		data, err := e.gitRepo.ReadBlob(root, oid)
		if err != nil {
			return &FileResult{Path: c.Path, Outcome: failed(ReasonReadError, err.Error())}
		}
		blobs = append(blobs, data)
	}

	result := e.MergeBlobs(ctx, c.Path, blobs[0], blobs[1], blobs[2])
	if !result.Succeeded() || opts.DryRun {
		return result
	}

	if err := e.write(root, c.Path, result.Output); err != nil {
		result.Outcome.fail(ReasonWriteError, err.Error())
		result.Output, result.Size, result.Digest = nil, 0, ""
		return result
	}
	result.Written = true
	return result
}

// write replaces the working tree file, keeping its permission bits.
func (e *Engine) write(root, relPath string, data []byte) error {
	if err := e.fs.ValidateRelPath(relPath); err != nil {
		return err
	}
	path := filepath.Join(root, filepath.FromSlash(relPath))
	mode, err := fsops.FileMode(e.fs, path, 0644)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", relPath, err)
	}
	return e.fs.AtomicWrite(path, data, mode)
}

// stage adds every written file to the index in one git invocation.
func (e *Engine) stage(root string, files []*FileResult) error {
	var paths []string
	for _, f := range files {
		if f.Written {
			paths = append(paths, f.Path)
		}
	}
	if len(paths) == 0 {
		return nil
	}
	if err := e.gitRepo.Stage(root, paths...); err != nil {
		return fmt.Errorf("failed to stage merged files: %w", err)
	}
	for _, f := range files {
		if f.Written {
			f.Staged = true
		}
	}
	return nil
}

func missingStages(c gitx.Conflict) string {
	var missing []string
	if c.Ancestor == "" {
		missing = append(missing, "ancestor")
	}
	if c.Ours == "" {
		missing = append(missing, "ours")
	}
	if c.Theirs == "" {
		missing = append(missing, "theirs")
	}
	return "no " + strings.Join(missing, ", ") + " version in the index"
}
