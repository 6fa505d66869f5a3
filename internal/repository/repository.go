// Package repository creates, locates and configures clony repositories.
package repository

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/KostasZigo/clony/internal/constants"
)

// ErrRepositoryNotFound is returned when no .clony directory exists at or above a path.
var ErrRepositoryNotFound = errors.New("not a clony repository. Run 'clony init' to create one")

func InitRepository(path string) error {
	// Resolves and adds OS specific separator
	clonyDir := filepath.Join(path, constants.Clony)

	if err := checkRepositoryDoesNotExist(clonyDir); err != nil {
		return err
	}

	// Cleanup runs unless every directory and file was created
	var initSuccess bool
	defer func() {
		if !initSuccess {
			cleanupRepository(clonyDir)
		}
	}()

	directories := []string{
		clonyDir,
		filepath.Join(clonyDir, constants.Objects),
		filepath.Join(clonyDir, constants.Refs),
		filepath.Join(clonyDir, constants.Refs, constants.Heads),
		filepath.Join(clonyDir, constants.Refs, constants.Tags),
	}

	for _, directory := range directories {
		if err := os.MkdirAll(directory, constants.DirPerms); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", directory, err)
		}
	}

	// HEAD starts attached to the default branch, which has no commit yet
	headFile := filepath.Join(clonyDir, constants.Head)
	headContent := constants.DefaultRefPrefix + constants.DefaultBranch + "\n"
	if err := os.WriteFile(headFile, []byte(headContent), constants.FilePerms); err != nil {
		return fmt.Errorf("failed to create HEAD file: %w", err)
	}

	if err := WriteConfig(path, DefaultConfig()); err != nil {
		return err
	}

	// Locking opens this file, so it must exist before the first add or commit
	lockFile := filepath.Join(clonyDir, constants.LockFile)
	if err := os.WriteFile(lockFile, nil, constants.FilePerms); err != nil {
		return fmt.Errorf("failed to create lock file: %w", err)
	}

	initSuccess = true
	slog.Debug("Initialized repository", "path", clonyDir)
	return nil
}

// FindRepositoryRoot walks up from cwd and returns the first directory containing .clony.
func FindRepositoryRoot(cwd string) (string, error) {
	dir, err := filepath.Abs(cwd)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", cwd, err)
	}

	for {
		clonyPath := filepath.Join(dir, constants.Clony)
		if info, err := os.Stat(clonyPath); err == nil && info.IsDir() {
			return dir, nil
		}

		// Dir returns all but the last element of path
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrRepositoryNotFound
		}
		dir = parent
	}
}

func checkRepositoryDoesNotExist(path string) error {
	_, err := os.Stat(path)

	// If path doesn't exist there is no error
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to check repository path: %w", err)
	}

	return fmt.Errorf("repository already exists at %s", path)
}

// Removes the entire .clony directory if it exists
func cleanupRepository(clonyDir string) {
	if _, err := os.Stat(clonyDir); err != nil {
		return
	}

	slog.Debug("Cleaning up partial repository initialization",
		"path", clonyDir)

	if err := os.RemoveAll(clonyDir); err != nil {
		slog.Warn("Failed to cleanup repository directory",
			"path", clonyDir,
			"error", err)
		return
	}

	slog.Debug("Successfully cleaned up repository directory",
		"path", clonyDir)
}
