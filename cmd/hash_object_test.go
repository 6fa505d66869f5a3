package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KostasZigo/clony/internal/constants"
	"github.com/KostasZigo/clony/internal/objects"
	"github.com/KostasZigo/clony/internal/repository"
	"github.com/KostasZigo/clony/testutils"
	"github.com/KostasZigo/clony/utils"
	"github.com/agiledragon/gomonkey/v2"
)

// objectFilePath returns the fan-out path of hash inside repoPath.
func objectFilePath(repoPath, hash string) string {
	return filepath.Join(repoPath, constants.Clony, constants.Objects, hash[:constants.HashDirPrefixLength], hash[constants.HashDirPrefixLength:])
}

// TestHashObjectCommand_Success_NoStorage verifies hash computation without storage.
func TestHashObjectCommand_Success_NoStorage(t *testing.T) {
	repoPath := testutils.SetupTestRepoWithClonyDir(t)
	changeToRepoDir(t, repoPath)

	testFileContent := []byte("hello world\nHave a nice day")
	testutils.CreateTestFile(t, repoPath, "test.txt", testFileContent)

	stdout, _, err := executeCommand(hashObjectCmd, constants.HashObjectCmdName, "test.txt")
	if err != nil {
		t.Fatalf("%s command failed: %v", constants.HashObjectCmdName, err)
	}

	outputHash := strings.TrimSpace(stdout)
	expectedHash, err := utils.ComputeHash(testFileContent, utils.BlobObjectType)
	if err != nil {
		t.Fatalf("Failed to compute hash: %v", err)
	}
	if expectedHash != outputHash {
		t.Fatalf("Expected hash %s, got %s", expectedHash, outputHash)
	}

	testutils.AssertFileNotExists(t, objectFilePath(repoPath, outputHash))
}

// TestHashObjectCommand_Success_WithStorage verifies hash computation with storage.
func TestHashObjectCommand_Success_WithStorage(t *testing.T) {
	repoPath := testutils.SetupTestRepoWithClonyDir(t)
	changeToRepoDir(t, repoPath)

	testFileContent := []byte("hello world\nHave a nice day")
	testutils.CreateTestFile(t, repoPath, "test.txt", testFileContent)

	stdout, _, err := executeCommand(hashObjectCmd, constants.HashObjectCmdName, "test.txt", "-w")
	if err != nil {
		t.Fatalf("%s command failed: %v", constants.HashObjectCmdName, err)
	}

	expectedHash := objects.NewBlob(testFileContent).Hash()
	if outputHash := strings.TrimSpace(stdout); expectedHash != outputHash {
		t.Fatalf("Expected hash %s, got %s", expectedHash, outputHash)
	}
	testutils.AssertFileExists(t, objectFilePath(repoPath, expectedHash))

	blob, err := objects.NewObjectStore(repoPath).ReadBlob(expectedHash)
	if err != nil {
		t.Fatalf("Failed to read stored blob: %v", err)
	}
	if !bytes.Equal(blob.Content(), testFileContent) {
		t.Errorf("Stored blob content mismatch: expected %q, got %q", testFileContent, blob.Content())
	}
}

// TestHashObject_FileNotFound verifies error for non-existent file.
func TestHashObject_FileNotFound(t *testing.T) {
	repoPath := testutils.SetupTestRepoWithClonyDir(t)
	changeToRepoDir(t, repoPath)

	_, _, err := executeCommand(hashObjectCmd, constants.HashObjectCmdName, "dummy.txt")
	if err == nil {
		t.Fatalf("%s command SHOULD fail", constants.HashObjectCmdName)
	}

	expectedErrorMessage := "failed to read file dummy.txt"
	if !strings.Contains(err.Error(), expectedErrorMessage) {
		t.Fatalf("Expected error message to contain [%s] but got error message [%s]", expectedErrorMessage, err.Error())
	}
}

// TestHashObjectCommand_ArgumentCount verifies argument validation errors.
func TestHashObjectCommand_ArgumentCount(t *testing.T) {
	tests := map[string][]string{
		"no arguments":   {},
		"too many files": {"a.txt", "b.txt"},
	}

	for name, files := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := executeCommand(hashObjectCmd, append([]string{constants.HashObjectCmdName}, files...)...)
			if err == nil {
				t.Fatal("Expected argument validation error")
			}

			expectedErrorMessage := fmt.Sprintf("%s command requires exactly 1 argument (filepath), received %d", constants.HashObjectCmdName, len(files))
			if !strings.Contains(err.Error(), expectedErrorMessage) {
				t.Fatalf("Expected error message to contain [%s] but got error message [%s]", expectedErrorMessage, err.Error())
			}
		})
	}
}

// TestHashObjectCommand_FileNotInRepository verifies -w fails outside a repository.
func TestHashObjectCommand_FileNotInRepository(t *testing.T) {
	repoPath := t.TempDir()
	changeToRepoDir(t, repoPath)
	testutils.CreateTestFile(t, repoPath, "test.txt", []byte("Pikachu I choose you !"))

	_, _, err := executeCommand(hashObjectCmd, constants.HashObjectCmdName, "test.txt", "-w")
	if !errors.Is(err, repository.ErrRepositoryNotFound) {
		t.Fatalf("Expected ErrRepositoryNotFound, got %v", err)
	}
}

// TestHashObjectCommand_StoreFailure verifies error handling when storage fails.
func TestHashObjectCommand_StoreFailure(t *testing.T) {
	repoPath := testutils.SetupTestRepoWithClonyDir(t)
	changeToRepoDir(t, repoPath)
	testutils.CreateTestFile(t, repoPath, "test.txt", []byte("Charmander used Ember !"))

	mockError := errors.New("failed to store blob to .clony/objects")
	patches := gomonkey.ApplyMethod(&objects.ObjectStore{}, "Store",
		func(_ *objects.ObjectStore, _ objects.Object) error {
			return mockError
		})
	defer patches.Reset()

	_, _, err := executeCommand(hashObjectCmd, constants.HashObjectCmdName, "test.txt", "-w")
	if err == nil {
		t.Fatalf("Expected %s command to fail according to mocking", constants.HashObjectCmdName)
	}

	expectedErrorMessage := "failed to store object: " + mockError.Error()
	if !strings.Contains(err.Error(), expectedErrorMessage) {
		t.Fatalf("Expected error message to contain [%s] but got error message [%s]", expectedErrorMessage, err.Error())
	}
}

// TestHashObjectCommand_SameContentSingleObject verifies content-addressable storage.
func TestHashObjectCommand_SameContentSingleObject(t *testing.T) {
	repoPath := testutils.SetupTestRepoWithClonyDir(t)
	changeToRepoDir(t, repoPath)

	content := []byte("identical content\n")
	testutils.CreateTestFile(t, repoPath, "file1.txt", content)
	testutils.CreateTestFile(t, repoPath, "file2.txt", content)

	var hashes []string
	for _, name := range []string{"file1.txt", "file2.txt"} {
		stdout, _, err := executeCommand(hashObjectCmd, constants.HashObjectCmdName, "-w", name)
		if err != nil {
			t.Fatalf("Failed to hash %s: %v", name, err)
		}
		hashes = append(hashes, strings.TrimSpace(stdout))
	}

	if hashes[0] != hashes[1] {
		t.Errorf("Identical content should produce same hash: %s != %s", hashes[0], hashes[1])
	}
	if count := testutils.CountObjects(t, repoPath); count != 1 {
		t.Errorf("Expected 1 object, found %d", count)
	}
}

// TestHashObjectCommand_EmptyFile verifies the well-known empty blob hash.
func TestHashObjectCommand_EmptyFile(t *testing.T) {
	repoPath := testutils.SetupTestRepoWithClonyDir(t)
	changeToRepoDir(t, repoPath)
	testutils.CreateTestFile(t, repoPath, "empty.txt", []byte{})

	stdout, _, err := executeCommand(hashObjectCmd, constants.HashObjectCmdName, "-w", "empty.txt")
	if err != nil {
		t.Fatalf("%s should succeed for empty file: %v", constants.HashObjectCmdName, err)
	}

	if outputHash := strings.TrimSpace(stdout); outputHash != "e69de29bb2d1d6434b8b29ae775ad8c2e48c5391" {
		t.Errorf("Unexpected empty blob hash %s", outputHash)
	}
}

// TestHashObjectCommand_LargeFile verifies hash computation for a 1MB file.
func TestHashObjectCommand_LargeFile(t *testing.T) {
	repoPath := testutils.SetupTestRepoWithClonyDir(t)
	changeToRepoDir(t, repoPath)

	largeContent := bytes.Repeat([]byte("A"), 1024*1024)
	testutils.CreateTestFile(t, repoPath, "large.bin", largeContent)

	stdout, _, err := executeCommand(hashObjectCmd, constants.HashObjectCmdName, "-w", "large.bin")
	if err != nil {
		t.Fatalf("%s should succeed for large file: %v", constants.HashObjectCmdName, err)
	}

	expectedHash := objects.NewBlob(largeContent).Hash()
	if outputHash := strings.TrimSpace(stdout); expectedHash != outputHash {
		t.Fatalf("Expected hash %s, got %s", expectedHash, outputHash)
	}
}
