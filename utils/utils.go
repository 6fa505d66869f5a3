package utils

import (
	"crypto/sha1"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/KostasZigo/clony/internal/constants"
	"go.uber.org/multierr"
)

type ObjectType string

const (
	BlobObjectType   ObjectType = "blob"
	TreeObjectType   ObjectType = "tree"
	CommitObjectType ObjectType = "commit"
)

func (ot ObjectType) IsValid() bool {
	switch ot {
	case BlobObjectType, TreeObjectType, CommitObjectType:
		return true
	default:
		return false
	}
}

// FrameObject prepends the object header to content.
// format: "ObjectType <size>\0<content>"
func FrameObject(objectType ObjectType, content []byte) []byte {
	header := string(objectType) + " " + strconv.Itoa(len(content)) + "\x00"
	framed := make([]byte, 0, len(header)+len(content))
	framed = append(framed, header...)
	return append(framed, content...)
}

// HashFramed returns the hex SHA-1 of already framed object bytes.
func HashFramed(framed []byte) string {
	return fmt.Sprintf("%x", sha1.Sum(framed))
}

// ComputeHash calculates SHA-1 hash for Object content
func ComputeHash(content []byte, objectType ObjectType) (string, error) {
	if !objectType.IsValid() {
		return "", fmt.Errorf("invalid object type: %s - hash not computed", objectType)
	}

	return HashFramed(FrameObject(objectType, content)), nil
}

// IsValidHash reports whether hash is a 40 character lowercase hex string.
func IsValidHash(hash string) bool {
	if len(hash) != constants.HashStringLength {
		return false
	}
	for _, c := range hash {
		if !(c >= '0' && c <= '9') && !(c >= 'a' && c <= 'f') {
			return false
		}
	}
	return true
}

// BuildDirPath constructs os-agnostic display direcotry path with trailing separator preserving all components.
// Unlike filepath.Join, does not normalize "." or remove redundant separators.
func BuildDirPath(dirs ...string) string {
	return strings.Join(dirs, string(filepath.Separator)) + string(filepath.Separator)
}

// WriteFileAtomic writes data to a temp file next to path and renames it into place,
// so readers observe either the old content or the new content.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) (retErr error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		if retErr != nil {
			retErr = multierr.Append(retErr, ignoreNotExist(os.Remove(tmpName)))
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return multierr.Append(err, tmp.Close())
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

func ignoreNotExist(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
