package cmd

import (
	"bytes"
	"os"
	"testing"

	"github.com/KostasZigo/clony/internal/repository"
	"github.com/KostasZigo/clony/testutils"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// createTestRootCmd creates a fresh root command with cmd as its only subcommand.
// Flags and silence settings left over from earlier executions are reset.
func createTestRootCmd(cmd *cobra.Command) *cobra.Command {
	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		flag.Value.Set(flag.DefValue)
		flag.Changed = false
	})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = false

	testRootCmd := &cobra.Command{Use: "clony"}
	testRootCmd.AddCommand(cmd)
	return testRootCmd
}

// captureStdout returns command stdout output as string.
func captureStdout(cmd *cobra.Command) *bytes.Buffer {
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	return &stdout
}

// captureStderr returns command stderr output as string.
func captureStderr(cmd *cobra.Command) *bytes.Buffer {
	var stderr bytes.Buffer
	cmd.SetErr(&stderr)
	return &stderr
}

// executeCommand runs cmd with args and returns stdout, stderr and the error.
func executeCommand(cmd *cobra.Command, args ...string) (string, string, error) {
	testRootCmd := createTestRootCmd(cmd)
	stdout := captureStdout(testRootCmd)
	stderr := captureStderr(testRootCmd)
	testRootCmd.SetArgs(args)

	err := testRootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

// changeToRepoDir changes working directory to repo path and registers cleanup.
func changeToRepoDir(t *testing.T, repoPath string) {
	t.Helper()

	oldDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get current directory: %v", err)
	}

	if err := os.Chdir(repoPath); err != nil {
		t.Fatalf("Failed to change to directory %s: %v", repoPath, err)
	}

	t.Cleanup(func() {
		os.Chdir(oldDir)
	})
}

// setupInitializedRepo initializes a repository with a configured user and changes into it.
func setupInitializedRepo(t *testing.T) string {
	t.Helper()

	repoPath := t.TempDir()
	if err := repository.InitRepository(repoPath); err != nil {
		t.Fatalf("InitRepository failed: %v", err)
	}

	cfg := repository.DefaultConfig()
	cfg.User = repository.UserConfig{Name: "Test User", Email: "test@example.com"}
	if err := repository.WriteConfig(repoPath, cfg); err != nil {
		t.Fatalf("WriteConfig failed: %v", err)
	}

	changeToRepoDir(t, repoPath)
	return repoPath
}

// addAndCommit writes a file, stages it and commits it through the CLI commands.
func addAndCommit(t *testing.T, repoPath, name, content, message string) {
	t.Helper()

	testutils.CreateTestFile(t, repoPath, name, []byte(content))
	if _, _, err := executeCommand(addCmd, "add", name); err != nil {
		t.Fatalf("add %s failed: %v", name, err)
	}
	if _, _, err := executeCommand(commitCmd, "commit", "-m", message); err != nil {
		t.Fatalf("commit %q failed: %v", message, err)
	}
}
