// Package worktree snapshots a working directory into tree and blob objects.
package worktree

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"

	"github.com/KostasZigo/clony/internal/constants"
	"github.com/KostasZigo/clony/internal/objects"
	"github.com/bmatcuk/doublestar/v4"
)

var (
	// ErrFilesystem wraps any failure to list or read the working tree.
	ErrFilesystem = errors.New("filesystem error")

	// ErrUnsupportedEntry marks entries that cannot be snapshotted:
	// symlinks not pointing at a regular file, devices, pipes and sockets.
	ErrUnsupportedEntry = errors.New("unsupported file type")
)

// Builder writes blob and tree objects for a directory hierarchy.
type Builder struct {
	store   *objects.ObjectStore
	ignore  []string
	logger  *slog.Logger
	written int
}

// Option configures a Builder.
type Option func(*Builder)

// WithIgnorePatterns skips paths matching any doublestar pattern.
// Patterns match slash-separated paths relative to the directory passed to BuildTree.
func WithIgnorePatterns(patterns ...string) Option {
	return func(b *Builder) {
		b.ignore = append(b.ignore, patterns...)
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

func NewBuilder(store *objects.ObjectStore, opts ...Option) (*Builder, error) {
	builder := &Builder{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(builder)
	}

	for _, pattern := range builder.ignore {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid ignore pattern: %q", pattern)
		}
	}

	return builder, nil
}

// ObjectsWritten returns how many store writes the builder has issued,
// one per file and one per directory.
func (b *Builder) ObjectsWritten() int {
	return b.written
}

// BuildTree snapshots dir and returns the hash of its root tree.
// Objects written before a failure are left in the store.
func (b *Builder) BuildTree(dir string) (string, error) {
	return b.buildTree(dir, "")
}

// buildTree lists dir once and turns each child into a tree entry,
// recursing into subdirectories before writing the tree itself.
func (b *Builder) buildTree(dir, relDir string) (string, error) {
	listing, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("%w: failed to list directory %s: %w", ErrFilesystem, dir, err)
	}

	entries := make([]objects.TreeEntry, 0, len(listing))
	for _, dirEntry := range listing {
		name := dirEntry.Name()
		relPath := path.Join(relDir, name)

		if b.skip(name, relPath) {
			b.logger.Debug("Skipping path", "path", relPath)
			continue
		}

		entry, err := b.buildEntry(filepath.Join(dir, name), relPath, dirEntry)
		if err != nil {
			return "", err
		}
		entries = append(entries, *entry)
	}

	tree, err := objects.NewTree(entries)
	if err != nil {
		return "", fmt.Errorf("failed to create tree for %s: %w", dir, err)
	}

	return b.write(tree, relDir)
}

// skip reports whether a child is a reserved control directory or ignored.
func (b *Builder) skip(name, relPath string) bool {
	if slices.Contains(constants.ReservedDirs, name) {
		return true
	}
	for _, pattern := range b.ignore {
		// Patterns are validated in NewBuilder
		if matched, _ := doublestar.Match(pattern, relPath); matched {
			return true
		}
	}
	return false
}

func (b *Builder) buildEntry(fullPath, relPath string, dirEntry fs.DirEntry) (*objects.TreeEntry, error) {
	switch fileType := dirEntry.Type(); {
	case fileType.IsDir():
		hash, err := b.buildTree(fullPath, relPath)
		if err != nil {
			return nil, err
		}
		return objects.NewTreeEntry(objects.ModeDirectory, dirEntry.Name(), hash)

	case fileType.IsRegular():
		info, err := dirEntry.Info()
		if err != nil {
			return nil, fmt.Errorf("%w: failed to stat %s: %w", ErrFilesystem, fullPath, err)
		}
		return b.buildBlobEntry(fullPath, relPath, dirEntry.Name(), info)

	case fileType&fs.ModeSymlink != 0:
		// Symlinks are snapshotted as the regular file they point at
		info, err := os.Stat(fullPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %w: dangling symlink %s: %w", ErrFilesystem, ErrUnsupportedEntry, fullPath, err)
		}
		if !info.Mode().IsRegular() {
			return nil, fmt.Errorf("%w: %w: symlink %s does not point at a regular file", ErrFilesystem, ErrUnsupportedEntry, fullPath)
		}
		return b.buildBlobEntry(fullPath, relPath, dirEntry.Name(), info)

	default:
		return nil, fmt.Errorf("%w: %w: %s (%s)", ErrFilesystem, ErrUnsupportedEntry, fullPath, fileType)
	}
}

func (b *Builder) buildBlobEntry(fullPath, relPath, name string, info fs.FileInfo) (*objects.TreeEntry, error) {
	content, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read file %s: %w", ErrFilesystem, fullPath, err)
	}

	hash, err := b.write(objects.NewBlob(content), relPath)
	if err != nil {
		return nil, err
	}

	return objects.NewTreeEntry(FileModeFromInfo(info), name, hash)
}

func (b *Builder) write(object objects.Object, relPath string) (string, error) {
	hash, err := b.store.Write(object)
	if err != nil {
		return "", fmt.Errorf("failed to store %s for %q: %w", object.Type(), relPath, err)
	}
	b.written++
	return hash, nil
}

// FileModeFromInfo maps permission bits to a tree entry mode.
// Any execute bit makes the file executable.
func FileModeFromInfo(info fs.FileInfo) objects.FileMode {
	if info.IsDir() {
		return objects.ModeDirectory
	}
	if info.Mode().Perm()&0o111 != 0 {
		return objects.ModeExecutable
	}
	return objects.ModeRegularFile
}
