package cli

import (
	"github.com/spf13/cobra"

	"github.com/danieljhkim/iconmerge/internal/engine"
)

var driverCmd = &cobra.Command{
	Use:   "driver <ancestor> <ours> <theirs> [path]",
	Short: "Run as a git merge driver",
	Long: `Merge three icon files the way git calls a custom merge driver.

The merged result replaces <ours>; the command exits non-zero when the files
cannot be merged so that git keeps the conflict. To enable it:

  git config merge.dmi.name "iconmerge"
  git config merge.dmi.driver "iconmerge driver %O %A %B %P"
  echo '*.dmi merge=dmi' >> .gitattributes`,
	Args: cobra.RangeArgs(3, 4),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := &engine.MergeFilesRequest{
			Ancestor: args[0],
			Ours:     args[1],
			Theirs:   args[2],
		}
		if len(args) == 4 {
			req.Path = args[3]
		}

		result, err := newEngine().MergeFiles(cmd.Context(), req)
		if err != nil {
			return err
		}

		if jsonOutput {
			if err := outputJSON(result); err != nil {
				return err
			}
		} else {
			printFileResult(result)
		}

		if !result.Succeeded() {
			return errUnresolved
		}
		return nil
	},
}
