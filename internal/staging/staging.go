// Package staging maintains the .clony/index mapping of staged paths to blob hashes.
//
// The index holds one "<path> <blob-hash>" line per entry. Lines that do not
// split into exactly two fields are ignored when reading.
package staging

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/KostasZigo/clony/internal/constants"
	"github.com/KostasZigo/clony/utils"
)

func indexPath(repoPath string) string {
	return filepath.Join(repoPath, constants.Clony, constants.Index)
}

// Read returns the staged mapping. A missing index is an empty mapping.
func Read(repoPath string) (map[string]string, error) {
	staged := make(map[string]string)

	data, err := os.ReadFile(indexPath(repoPath))
	if errors.Is(err, fs.ErrNotExist) {
		return staged, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read index: %w", err)
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) != 2 {
			continue
		}
		staged[fields[0]] = fields[1]
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to parse index: %w", err)
	}

	return staged, nil
}

// Stage records path as staged with the given blob hash, replacing any earlier entry.
// path is stored slash-separated and must not contain whitespace.
func Stage(repoPath, path, hash string) error {
	path = filepath.ToSlash(path)
	if path == "" || strings.ContainsFunc(path, isSpace) {
		return fmt.Errorf("cannot stage path %q: empty or contains whitespace", path)
	}
	if !utils.IsValidHash(hash) {
		return fmt.Errorf("cannot stage %s: invalid hash %q", path, hash)
	}

	staged, err := Read(repoPath)
	if err != nil {
		return err
	}
	staged[path] = hash

	var buf bytes.Buffer
	for _, p := range slices.Sorted(maps.Keys(staged)) {
		fmt.Fprintf(&buf, "%s %s\n", p, staged[p])
	}

	if err := utils.WriteFileAtomic(indexPath(repoPath), buf.Bytes(), constants.FilePerms); err != nil {
		return fmt.Errorf("failed to write index: %w", err)
	}
	return nil
}

// Clear truncates the index to empty.
func Clear(repoPath string) error {
	if err := os.WriteFile(indexPath(repoPath), nil, constants.FilePerms); err != nil {
		return fmt.Errorf("failed to clear index: %w", err)
	}
	return nil
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
