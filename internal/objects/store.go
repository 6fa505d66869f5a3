package objects

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/KostasZigo/clony/internal/constants"
	"github.com/KostasZigo/clony/utils"
)

var objectsRelativeFilePath string = filepath.Join(constants.Clony, constants.Objects)

// ObjectStore manages storage of content-addressed objects
type ObjectStore struct {
	repoPath string // Path to repository root
}

func NewObjectStore(repoPath string) *ObjectStore {
	return &ObjectStore{
		repoPath: repoPath,
	}
}

// objectPath returns .clony/objects/<first 2 chars>/<rest> for hash.
func (store *ObjectStore) objectPath(hash string) (string, error) {
	if !utils.IsValidHash(hash) {
		return "", fmt.Errorf("%w: %q", ErrInvalidHash, hash)
	}
	prefix := constants.HashDirPrefixLength
	return filepath.Join(store.repoPath, objectsRelativeFilePath, hash[:prefix], hash[prefix:]), nil
}

// Store saves an object to .clony/objects/<first 2 chars>/<rest>
// Returns nil if object already exists
func (store *ObjectStore) Store(object Object) error {
	_, err := store.write(object.Hash(), object.Data())
	return err
}

// Write stores an object and returns its hash.
func (store *ObjectStore) Write(object Object) (string, error) {
	return store.write(object.Hash(), object.Data())
}

// WriteRaw frames payload with the header for objectType, stores it and returns its hash.
func (store *ObjectStore) WriteRaw(objectType utils.ObjectType, payload []byte) (string, error) {
	if !objectType.IsValid() {
		return "", fmt.Errorf("invalid object type: %s", objectType)
	}
	framed := utils.FrameObject(objectType, payload)
	return store.write(utils.HashFramed(framed), framed)
}

func (store *ObjectStore) write(hash string, framed []byte) (string, error) {
	objectFile, err := store.objectPath(hash)
	if err != nil {
		return "", err
	}

	// Check if object already exists (content-addressable)
	_, err = os.Stat(objectFile)
	if err == nil {
		slog.Debug("Object with this hash already exists",
			"hash", hash)
		return hash, nil
	}
	if !(errors.Is(err, fs.ErrNotExist)) {
		return "", err
	}

	objectDir := filepath.Dir(objectFile)
	if err := os.MkdirAll(objectDir, constants.DirPerms); err != nil {
		return "", fmt.Errorf("failed to create object directory: %w", err)
	}

	compressedData, err := Compress(framed)
	if err != nil {
		return "", fmt.Errorf("failed to compress object: %w", err)
	}

	if err := utils.WriteFileAtomic(objectFile, compressedData, constants.ObjectPerms); err != nil {
		return "", fmt.Errorf("failed to write object file: %w", err)
	}

	slog.Debug("Stored object",
		"hash", hash,
		"bytes", len(compressedData))
	return hash, nil
}

// Read returns the framed bytes ("<type> <size>\0<content>") stored under hash.
func (store *ObjectStore) Read(hash string) ([]byte, error) {
	objectFile, err := store.objectPath(hash)
	if err != nil {
		return nil, err
	}

	compressedData, err := os.ReadFile(objectFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, hash)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read object file %s: %w", hash, err)
	}

	framed, err := Decompress(compressedData)
	if err != nil {
		return nil, fmt.Errorf("object %s: %w", hash, err)
	}

	if actual := utils.HashFramed(framed); actual != hash {
		return nil, fmt.Errorf("%w: hash mismatch: expected %s, got %s", ErrCorruptObject, hash, actual)
	}

	return framed, nil
}

// ReadObject returns the type and payload of the object stored under hash.
func (store *ObjectStore) ReadObject(hash string) (utils.ObjectType, []byte, error) {
	framed, err := store.Read(hash)
	if err != nil {
		return "", nil, err
	}

	objectType, content, err := ParseFrame(framed)
	if err != nil {
		return "", nil, fmt.Errorf("object %s: %w", hash, err)
	}
	return objectType, content, nil
}

func (store *ObjectStore) readTyped(hash string, want utils.ObjectType) ([]byte, error) {
	objectType, content, err := store.ReadObject(hash)
	if err != nil {
		return nil, err
	}
	if objectType != want {
		return nil, fmt.Errorf("object %s: type mismatch: got %q, want %q", hash, objectType, want)
	}
	return content, nil
}

// ReadBlob reads a blob from storage by hash
func (store *ObjectStore) ReadBlob(hash string) (*Blob, error) {
	content, err := store.readTyped(hash, utils.BlobObjectType)
	if err != nil {
		return nil, err
	}
	return NewBlob(content), nil
}

// ReadTree reads a tree from storage by hash
func (store *ObjectStore) ReadTree(hash string) (*Tree, error) {
	content, err := store.readTyped(hash, utils.TreeObjectType)
	if err != nil {
		return nil, err
	}
	return ParseTree(content)
}

// ReadCommit reads a commit from storage by hash
func (store *ObjectStore) ReadCommit(hash string) (*Commit, error) {
	content, err := store.readTyped(hash, utils.CommitObjectType)
	if err != nil {
		return nil, err
	}
	return ParseCommit(content)
}

// Exists checks if an object exists in storage
func (store *ObjectStore) Exists(hash string) bool {
	objectFile, err := store.objectPath(hash)
	if err != nil {
		return false
	}
	_, err = os.Stat(objectFile)
	return err == nil
}
