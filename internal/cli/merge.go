package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/iconmerge/internal/config"
	"github.com/danieljhkim/iconmerge/internal/engine"
)

var mergeCmd = &cobra.Command{
	Use:     "merge [path...]",
	Aliases: []string{"resolve"},
	Short:   "Merge every conflicted icon in the repository",
	Long: `Merge every conflicted icon in the current git repository.

For each conflicted path the ancestor, ours and theirs versions are read from the
index and merged state by state. Merged files replace the conflicted working tree
copy; files that cannot be merged are left untouched and listed at the end.

Options are read from .iconmerge.yaml at the repository root and from ICONMERGE_*
environment variables; flags given on the command line take precedence.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng := newEngine()

		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		root, err := eng.DiscoverRoot(cwd)
		if err != nil {
			return err
		}

		opts, err := config.Load(root, cmd.Flags())
		if err != nil {
			return err
		}

		paths := make([]string, 0, len(args))
		for _, arg := range args {
			rel, err := repoRelative(root, cwd, arg)
			if err != nil {
				return err
			}
			paths = append(paths, rel)
		}

		result, err := eng.Resolve(cmd.Context(), &engine.ResolveRequest{
			CWD:     cwd,
			Options: *opts,
			Paths:   paths,
		})
		if result != nil {
			if jsonOutput {
				if jsonErr := outputJSON(result); jsonErr != nil {
					return jsonErr
				}
			} else {
				printResolveResult(result)
			}
		}
		if err != nil {
			return err
		}
		if len(result.Failed) > 0 {
			return errUnresolved
		}
		return nil
	},
}

func init() {
	mergeCmd.Flags().IntP("workers", "j", runtime.NumCPU(), "Number of files merged in parallel")
	mergeCmd.Flags().Bool("stage", false, "Stage merged files with git add")
	mergeCmd.Flags().BoolP("dry-run", "n", false, "Merge without writing or staging anything")
	mergeCmd.Flags().StringSlice("ext", []string{".dmi"}, "File extensions treated as icons")
}

// repoRelative turns a command-line path into a slash-separated path relative
// to the repository root.
func repoRelative(root, cwd, arg string) (string, error) {
	abs := arg
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(cwd, arg)
	}
	rootPath, err := filepath.EvalSymlinks(root)
	if err != nil {
		rootPath = root
	}
	if dir, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		abs = filepath.Join(dir, filepath.Base(abs))
	}
	rel, err := filepath.Rel(rootPath, abs)
	if err != nil {
		return "", fmt.Errorf("%w: %s is outside the repository", engine.ErrValidation, arg)
	}
	return filepath.ToSlash(rel), nil
}
