package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/KostasZigo/clony/internal/objects"
	"github.com/KostasZigo/clony/internal/refs"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// logDateFormat matches git's default log date rendering.
const logDateFormat = "Mon Jan 2 15:04:05 2006 -0700"

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show commit history from HEAD",
	Long: `Walk the parent chain starting at HEAD and print each commit,
newest first.`,
	SilenceUsage: true,
	Args:         maximumArgs(0),
	RunE:         runLog,
}

var logMaxCount int

func init() {
	rootCmd.AddCommand(logCmd)

	logCmd.Flags().IntVarP(&logMaxCount, "max-count", "n", 0, "Limit the number of commits shown (0 shows all)")
}

func runLog(cmd *cobra.Command, args []string) error {
	repoPath, err := findRepoRoot()
	if err != nil {
		return err
	}

	resolver := refs.NewResolver(repoPath)
	hash, err := resolver.HeadCommit()
	if err != nil {
		return err
	}
	if hash == "" {
		head, err := resolver.CurrentRef()
		if err != nil {
			return err
		}
		return fmt.Errorf("your current branch '%s' does not have any commits yet", head.Branch())
	}

	store := objects.NewObjectStore(repoPath)
	for shown := 0; hash != "" && (logMaxCount <= 0 || shown < logMaxCount); shown++ {
		commit, err := store.ReadCommit(hash)
		if err != nil {
			return fmt.Errorf("failed to read commit %s: %w", hash, err)
		}
		if shown > 0 {
			fmt.Fprintln(cmd.OutOrStdout())
		}
		printLogEntry(cmd.OutOrStdout(), commit)
		hash = commit.ParentHash()
	}
	return nil
}

func printLogEntry(out io.Writer, commit *objects.Commit) {
	author := commit.Author()

	color.New(color.FgYellow).Fprintf(out, "commit %s\n", commit.Hash())
	fmt.Fprintf(out, "Author: %s\n", author)
	fmt.Fprintf(out, "Date:   %s\n\n", author.Timestamp.Format(logDateFormat))
	for _, line := range strings.Split(strings.TrimRight(commit.Message(), "\n"), "\n") {
		fmt.Fprintf(out, "    %s\n", line)
	}
}
