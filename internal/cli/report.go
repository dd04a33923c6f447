package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/danieljhkim/iconmerge/internal/engine"
	"github.com/danieljhkim/iconmerge/internal/fragment"
)

// printChanges lists the meaningful changes of one side.
func printChanges(side string, report fragment.Report) {
	PrintSubsection(side + " changes:")
	entries := report.Meaningful()
	if len(entries) == 0 {
		PrintEmptyState("  (none)")
		return
	}
	items := make([]string, 0, len(entries))
	for _, e := range entries {
		items = append(items, fmt.Sprintf("%s - %s", e.State, e.Status))
	}
	PrintList(items, 2)
}

// printMetaDiffs shows both catalogue entries of every metadata change.
func printMetaDiffs(diffs []engine.MetaDiff) {
	for _, d := range diffs {
		label := d.State
		if d.Side != "" {
			label = fmt.Sprintf("%s (%s)", d.State, d.Side)
		}
		PrintLabelValue(label, "")
		_, _ = dimColor.Printf("      was: %s\n", d.Was)
		_, _ = dimColor.Printf("      now: %s\n", d.Now)
	}
}

// printFileResult reports one merged or failed file.
func printFileResult(f *engine.FileResult) {
	PrintSection(f.Path)

	out := f.Outcome
	if out.Ours != nil || out.Theirs != nil {
		printChanges("our", out.Ours)
		printChanges("their", out.Theirs)
	}
	if verbose && len(out.MetaDiffs) > 0 {
		printMetaDiffs(out.MetaDiffs)
	}

	if !out.Succeeded() {
		PrintWarning(fmt.Sprintf("%s: %s", out.Reason, out.Detail))
		return
	}

	for _, s := range out.Skipped {
		PrintLabelValue("skipped", fmt.Sprintf("%s (%s)", s.State, s.Reason))
	}

	action := "merged"
	switch {
	case f.Staged:
		action = "merged and staged"
	case !f.Written:
		action = "would merge"
	}
	PrintSuccess(fmt.Sprintf("%s using %s file as base (%s)", action, out.Base, formatSize(f.Size)))
}

// printResolveResult reports a repository-wide run.
func printResolveResult(r *engine.ResolveResult) {
	for _, f := range r.Files {
		printFileResult(f)
	}

	if len(r.Ignored) > 0 {
		fmt.Println()
		PrintSubsection("Ignored (not an icon):")
		PrintList(r.Ignored, 2)
	}

	if len(r.Files) == 0 {
		PrintInfo("There are no conflicted icons in the repository.")
		return
	}

	fmt.Println()
	if len(r.Succeeded) > 0 {
		verb := "Merged"
		if r.DryRun {
			verb = "Would merge"
		}
		PrintSuccess(fmt.Sprintf("%s %s:", verb, PrintCount(len(r.Succeeded), "file", "files")))
		PrintList(r.Succeeded, 1)
	}
	if len(r.Failed) > 0 {
		PrintWarning(fmt.Sprintf("Could not merge %s:", PrintCount(len(r.Failed), "file", "files")))
		PrintList(r.Failed, 1)
	}
	_, _ = dimColor.Printf("Done in %s.\n", r.Duration.Round(time.Millisecond))

	if !r.DryRun && len(r.Succeeded) > 0 && !anyStaged(r.Files) {
		PrintInfo("Review the merged files, then mark them resolved with git add.")
	}
}

func anyStaged(files []*engine.FileResult) bool {
	for _, f := range files {
		if f.Staged {
			return true
		}
	}
	return false
}

// printDiffResult reports the classification of two files.
func printDiffResult(r *engine.DiffResult) {
	PrintSection(fmt.Sprintf("%s → %s", r.From, r.To))
	PrintLabelValue("from", shortDigest(r.FromDigest))
	PrintLabelValue("to", shortDigest(r.ToDigest))
	fmt.Println()

	if len(r.Changes) == 0 {
		PrintEmptyState("No meaningful changes detected")
	} else {
		rows := make([][]string, 0, len(r.Changes))
		for _, c := range r.Changes {
			rows = append(rows, []string{c.State, c.Status.String()})
		}
		PrintTable([]string{"STATE", "STATUS"}, rows)
	}

	if verbose && len(r.MetaDiffs) > 0 {
		fmt.Println()
		printMetaDiffs(r.MetaDiffs)
	}

	offsets := r.Report.Filter(func(s fragment.Status) bool { return s == fragment.ChangedOffsetOnly })
	if len(offsets) > 0 {
		_, _ = dimColor.Printf("  offset only: %s\n", strings.Join(offsets, ", "))
	}
}

func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}
