package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KostasZigo/clony/internal/constants"
	"github.com/KostasZigo/clony/testutils"
	"github.com/agiledragon/gomonkey/v2"
)

// TestInitCommand_Success verifies successful repository initialization in current directory.
func TestInitCommand_Success(t *testing.T) {
	repoPath := t.TempDir()
	changeToRepoDir(t, repoPath)

	stdout, _, err := executeCommand(initCmd, constants.InitCmdName)
	if err != nil {
		t.Fatalf("%s command failed: %v", constants.InitCmdName, err)
	}

	expectedMsg := "Initialized empty Clony repository in ./.clony/\n"
	if !strings.Contains(stdout, expectedMsg) {
		t.Errorf("Expected output to contain %q, got: %s", expectedMsg, stdout)
	}

	testutils.AssertRepositoryStructure(t, repoPath)
	testutils.AssertFileExists(t, filepath.Join(repoPath, constants.Clony, constants.ConfigFile))
}

// TestInitCommand_WithDirectory_Success verifies initialization with explicit directory path.
func TestInitCommand_WithDirectory_Success(t *testing.T) {
	targetDirectory := filepath.Join(t.TempDir(), "my-project")

	if _, _, err := executeCommand(initCmd, constants.InitCmdName, targetDirectory); err != nil {
		t.Fatalf("%s command with directory failed: %v", constants.InitCmdName, err)
	}

	testutils.AssertRepositoryStructure(t, targetDirectory)
}

// TestInitCommand_AlreadyExists verifies error when repository already exists.
func TestInitCommand_AlreadyExists(t *testing.T) {
	repoPath := t.TempDir()

	if _, _, err := executeCommand(initCmd, constants.InitCmdName, repoPath); err != nil {
		t.Fatalf("First init failed: %v", err)
	}

	_, _, err := executeCommand(initCmd, constants.InitCmdName, repoPath)
	if err == nil {
		t.Fatal("Expected error when repository already exists")
	}

	expectedErrorMsg := fmt.Sprintf("failed to initialize repository - repository already exists at %s",
		filepath.Join(repoPath, constants.Clony))
	if !strings.Contains(err.Error(), expectedErrorMsg) {
		t.Errorf("Expected error to contain %q, got: %q", expectedErrorMsg, err.Error())
	}
}

// TestInitCommand_TooManyArguments verifies argument validation and usage output.
func TestInitCommand_TooManyArguments(t *testing.T) {
	stdout, _, err := executeCommand(initCmd, constants.InitCmdName, "dir1", "dir2")
	if err == nil {
		t.Fatal("Expected error for too many arguments")
	}

	expectedErrorMsg := fmt.Sprintf("%s command accepts at most 1 arg(s), received 2", constants.InitCmdName)
	if !strings.Contains(err.Error(), expectedErrorMsg) {
		t.Errorf("Expected error to contain %q, got: %q", expectedErrorMsg, err.Error())
	}
	if !strings.Contains(stdout, "Usage:") {
		t.Errorf("Expected usage to be printed, got: %s", stdout)
	}
}

// TestInitCommand_Fail verifies cleanup on initialization failure.
func TestInitCommand_Fail(t *testing.T) {
	repoPath := t.TempDir()

	mockError := errors.New("mocked write failure")
	patches := gomonkey.ApplyFunc(os.WriteFile, func(name string, data []byte, perm os.FileMode) error {
		return mockError
	})
	defer patches.Reset()

	_, _, err := executeCommand(initCmd, constants.InitCmdName, repoPath)
	if !errors.Is(err, mockError) {
		t.Fatalf("Expected error to wrap the mock error %v, but got: %v", mockError, err)
	}

	testutils.AssertFileNotExists(t, filepath.Join(repoPath, constants.Clony))
}
