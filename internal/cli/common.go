package cli

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/danieljhkim/iconmerge/internal/clock"
	"github.com/danieljhkim/iconmerge/internal/engine"
	"github.com/danieljhkim/iconmerge/internal/fsops"
	"github.com/danieljhkim/iconmerge/internal/gitx"
	"github.com/danieljhkim/iconmerge/internal/hash"
)

// errUnresolved is returned when at least one file could not be merged, so
// the process exits non-zero after the report has been printed.
var errUnresolved = errors.New("some files could not be merged")

// newEngine creates a new engine with real implementations of all dependencies.
func newEngine() *engine.Engine {
	return engine.New(
		gitx.NewRealGitRepo(),
		fsops.NewRealFS(),
		hash.NewSHA256Hasher(),
		&clock.RealClock{},
	)
}

// formatError formats an error for display.
func formatError(err error) string {
	return errorColor.Sprintf("Error: %v", err)
}

// outputJSON outputs a value as JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
