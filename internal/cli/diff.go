package cli

import (
	"github.com/spf13/cobra"

	"github.com/danieljhkim/iconmerge/internal/engine"
)

var diffCmd = &cobra.Command{
	Use:   "diff <from.dmi> <to.dmi>",
	Short: "Show which states changed between two icon files",
	Long: `Classify every state of the second file against the first.

Each state is reported as added, removed, meta (catalogue entry changed),
pixels (only pixels changed) or offset-only. Use --verbose to print both
catalogue entries of every metadata change.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := newEngine().Diff(&engine.DiffRequest{From: args[0], To: args[1]})
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(result)
		}

		printDiffResult(result)
		return nil
	},
}
