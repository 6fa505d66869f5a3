package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/KostasZigo/clony/internal/constants"
	"github.com/KostasZigo/clony/internal/objects"
	"github.com/KostasZigo/clony/internal/staging"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <file>...",
	Short: "Stage file contents for the next commit",
	Long: `Store each file as a blob and record it in the staging index (.clony/index).
A later 'clony commit' requires at least one staged file.`,
	SilenceUsage: true,
	Args:         minimumArgs(1, "file"),
	RunE:         runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)
}

// runAdd stores and stages every argument under the repository lock.
func runAdd(cmd *cobra.Command, args []string) error {
	repoPath, err := findRepoRoot()
	if err != nil {
		return err
	}

	store := objects.NewObjectStore(repoPath)
	return withRepoLock(cmd, repoPath, func() error {
		for _, path := range args {
			relPath, err := repoRelativePath(repoPath, path)
			if err != nil {
				return err
			}

			blob, err := objects.NewBlobFromFile(path)
			if err != nil {
				return err
			}
			if err := store.Store(blob); err != nil {
				return fmt.Errorf("failed to store object: %w", err)
			}
			if err := staging.Stage(repoPath, relPath, blob.Hash()); err != nil {
				return err
			}

			slog.Debug("Staged file",
				"path", relPath,
				"hash", blob.Hash())
		}
		return nil
	})
}

// repoRelativePath returns path relative to repoPath with forward slashes.
// Paths outside the repository or inside a reserved directory are rejected.
func repoRelativePath(repoPath, path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	relPath, err := filepath.Rel(repoPath, absPath)
	if err != nil || relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside repository at %s", path, repoPath)
	}

	relPath = filepath.ToSlash(relPath)
	if slices.Contains(constants.ReservedDirs, strings.Split(relPath, "/")[0]) {
		return "", fmt.Errorf("cannot stage %s: inside reserved directory", path)
	}
	return relPath, nil
}
