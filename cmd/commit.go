package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/KostasZigo/clony/internal/commit"
	"github.com/KostasZigo/clony/internal/constants"
	"github.com/KostasZigo/clony/internal/refs"
	"github.com/KostasZigo/clony/internal/repository"
	"github.com/KostasZigo/clony/internal/staging"
	"github.com/spf13/cobra"
)

var commitCmd = &cobra.Command{
	Use:   "commit -m <message>",
	Short: "Record the working tree as a new commit",
	Long: `Snapshot the working tree into tree and blob objects, write a commit whose parent
is the current HEAD, advance the current branch (or detached HEAD) and clear the staging index.

Author identity defaults to [user] name and email in .clony/config.toml.

Examples:
  clony commit -m "Initial commit"
  clony commit -m "Fix typo" --author-name "Jane Doe" --author-email jane@example.com`,
	SilenceUsage: true,
	Args:         maximumArgs(0),
	RunE:         runCommit,
}

var (
	commitMessage     string
	commitAuthorName  string
	commitAuthorEmail string
)

func init() {
	rootCmd.AddCommand(commitCmd)

	commitCmd.Flags().StringVarP(&commitMessage, "message", "m", "", "Commit message")
	commitCmd.Flags().StringVar(&commitAuthorName, "author-name", "", "Author name (defaults to user.name)")
	commitCmd.Flags().StringVar(&commitAuthorEmail, "author-email", "", "Author email (defaults to user.email)")
}

// runCommit validates flags, then hands off to the Committer under the repository lock.
// Committer failures are already logged, so cobra does not print them a second time.
func runCommit(cmd *cobra.Command, args []string) error {
	cmd.SilenceErrors = false

	if strings.TrimSpace(commitMessage) == "" {
		cmd.SilenceUsage = false
		return errors.New("commit message must not be empty (use -m)")
	}

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	committer := commit.NewCommitter(
		commit.WithLogger(slog.Default()),
		commit.WithWorkingDir(cwd))

	authorName, authorEmail := commitAuthorName, commitAuthorEmail
	record := func() error {
		hash, err := committer.Commit(commitMessage, authorName, authorEmail)
		if err != nil {
			cmd.SilenceErrors = true
			return err
		}
		printCommitSummary(cmd, hash)
		return nil
	}

	repoPath, err := repository.FindRepositoryRoot(cwd)
	if err != nil {
		// The Committer reports the missing repository
		return record()
	}

	cfg, err := repository.LoadConfig(repoPath)
	if err != nil {
		return err
	}
	if authorName == "" {
		authorName = cfg.User.Name
	}
	if authorEmail == "" {
		authorEmail = cfg.User.Email
	}
	if strings.TrimSpace(authorName) == "" {
		cmd.SilenceUsage = false
		return fmt.Errorf("author name required: pass --author-name or set user.name in %s/%s", constants.Clony, constants.ConfigFile)
	}

	// Locking touches the lock file, so an empty index is reported without it.
	// The Committer re-reads the index under the lock.
	staged, err := staging.Read(repoPath)
	if err != nil {
		return err
	}
	if len(staged) == 0 {
		return record()
	}

	return withRepoLock(cmd, repoPath, record)
}

// printCommitSummary prints "[<branch> <short-hash>] <subject>".
func printCommitSummary(cmd *cobra.Command, hash string) {
	label := "detached HEAD"
	if repoPath, err := findRepoRoot(); err == nil {
		if head, err := refs.NewResolver(repoPath).CurrentRef(); err == nil && !head.IsDetached() {
			label = head.Branch()
		}
	}

	subject, _, _ := strings.Cut(strings.TrimSpace(commitMessage), "\n")
	fmt.Fprintf(cmd.OutOrStdout(), "[%s %s] %s\n", label, hash[:constants.ShortHashLength], subject)
}
