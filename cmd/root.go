package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/KostasZigo/clony/internal/logging"
	"github.com/KostasZigo/clony/internal/repository"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

// lockTimeout bounds how long mutating commands wait for another clony process.
const lockTimeout = 5 * time.Second

var verboseFlag bool

// rootCmd defines the base command for the clony CLI.
// All subcommands (init, add, commit, etc.) register under this root.
var rootCmd = &cobra.Command{
	Use:   "clony",
	Short: "A minimal content-addressed version control system",
	Long: `Clony is a minimal version control system that stores files, directories and commits
as content-addressed objects, with commands like init, add, commit and log.`,
	PersistentPreRunE: configureLogging,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable debug logging")
}

// Execute runs the root command and handles exit codes.
// Called from main.go to start CLI execution.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// configureLogging installs the colored slog handler on stderr.
// The level comes from core.log_level when run inside a repository, and --verbose forces debug.
func configureLogging(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo

	if root, err := findRepoRoot(); err == nil {
		cfg, err := repository.LoadConfig(root)
		if err != nil {
			return err
		}
		if level, err = logging.ParseLevel(cfg.Core.LogLevel); err != nil {
			return err
		}
	}

	if verboseFlag {
		level = slog.LevelDebug
	}

	slog.SetDefault(logging.New(cmd.ErrOrStderr(), level))
	return nil
}

// findRepoRoot locates the repository containing the working directory.
func findRepoRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return repository.FindRepositoryRoot(cwd)
}

// withRepoLock runs fn while holding the repository lock, so mutating commands do not interleave.
func withRepoLock(cmd *cobra.Command, root string, fn func() error) (retErr error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()

	unlock, err := repository.Lock(ctx, root)
	if err != nil {
		return err
	}
	defer func() {
		if err := unlock(); err != nil {
			retErr = multierr.Append(retErr, fmt.Errorf("failed to release repository lock: %w", err))
		}
	}()

	return fn()
}
