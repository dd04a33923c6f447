package engine

import "github.com/danieljhkim/iconmerge/internal/config"

// ResolveRequest represents a request to merge every conflicted icon of a repository.
type ResolveRequest struct {
	// CWD is the current working directory (any path inside the repository)
	CWD string

	// Options are the loaded run options
	Options config.Options

	// Paths optionally restricts the run to these repository-relative paths
	Paths []string
}

// DiffRequest represents a request to classify one icon file against another.
type DiffRequest struct {
	// From is the path of the older version
	From string

	// To is the path of the newer version
	To string
}

// MergeFilesRequest represents a request to merge three icon files on disk,
// as a git merge driver does.
type MergeFilesRequest struct {
	// Ancestor, Ours and Theirs are the paths of the three versions
	Ancestor string
	Ours     string
	Theirs   string

	// Path is the repository path being merged, used for reporting only
	Path string

	// DryRun merges without writing the result over Ours
	DryRun bool
}
