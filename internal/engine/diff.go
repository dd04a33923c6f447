package engine

import (
	"fmt"
	"sort"

	"github.com/danieljhkim/iconmerge/internal/dmi"
	"github.com/danieljhkim/iconmerge/internal/fragment"
	"github.com/danieljhkim/iconmerge/internal/sheet"
)

// Diff classifies every state of req.To against req.From.
func (e *Engine) Diff(req *DiffRequest) (*DiffResult, error) {
	from, fromDigest, err := e.loadSheet(req.From)
	if err != nil {
		return nil, err
	}
	to, toDigest, err := e.loadSheet(req.To)
	if err != nil {
		return nil, err
	}

	result := &DiffResult{
		From:       req.From,
		To:         req.To,
		FromDigest: fromDigest,
		ToDigest:   toDigest,
	}
	result.Report = fragment.ClassifyWith(from, to, func(name string, was, now *sheet.State) {
		result.MetaDiffs = append(result.MetaDiffs, MetaDiff{State: name, Was: was, Now: now})
	})
	sort.Slice(result.MetaDiffs, func(i, j int) bool { return result.MetaDiffs[i].State < result.MetaDiffs[j].State })
	result.Changes = result.Report.Meaningful()

	return result, nil
}

func (e *Engine) loadSheet(path string) (*sheet.Sheet, string, error) {
	exists, err := e.fs.Exists(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check %s: %w", path, err)
	}
	if !exists {
		return nil, "", fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	data, err := e.fs.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	s, err := dmi.Decode(data)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode %s: %w", path, err)
	}
	digest, err := e.hasher.HashFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return s, digest, nil
}
