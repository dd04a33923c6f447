package engine

import (
	"context"
	"fmt"
)

// MergeFiles merges three icon files and, on success, replaces req.Ours with
// the result. A failed merge leaves every file untouched and is reported
// through the returned FileResult; the error is reserved for I/O problems.
func (e *Engine) MergeFiles(ctx context.Context, req *MergeFilesRequest) (*FileResult, error) {
	var blobs [3][]byte
	for i, path := range []string{req.Ancestor, req.Ours, req.Theirs} {
		if path == "" {
			return nil, fmt.Errorf("%w: missing %s path", ErrValidation, versionNames[i])
		}
		exists, err := e.fs.Exists(path)
		if err != nil {
			return nil, fmt.Errorf("failed to check %s: %w", path, err)
		}
		if !exists {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		data, err := e.fs.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		blobs[i] = data
	}

	name := req.Path
	if name == "" {
		name = req.Ours
	}

	result := e.MergeBlobs(ctx, name, blobs[0], blobs[1], blobs[2])
	if !result.Succeeded() || req.DryRun {
		return result, nil
	}

	info, err := e.fs.Lstat(req.Ours)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", req.Ours, err)
	}
	if err := e.fs.AtomicWrite(req.Ours, result.Output, info.Mode().Perm()); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", req.Ours, err)
	}
	result.Written = true
	return result, nil
}

// DiscoverRoot returns the repository root containing cwd.
func (e *Engine) DiscoverRoot(cwd string) (string, error) {
	root, err := e.gitRepo.Discover(cwd)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotInRepo, err)
	}
	return root, nil
}
