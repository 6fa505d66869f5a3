// Package refs reads and advances HEAD and branch references.
package refs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/KostasZigo/clony/internal/constants"
	"github.com/KostasZigo/clony/utils"
)

var (
	// ErrInvalidHead is returned when HEAD is neither a symbolic ref nor a commit hash.
	ErrInvalidHead = errors.New("invalid HEAD")

	// ErrRefNotFound is returned when a branch file does not exist.
	ErrRefNotFound = errors.New("reference not found")
)

// Head is the parsed content of the HEAD file.
// Exactly one of Target and Commit is set.
type Head struct {
	Target string // ref path, e.g. "refs/heads/main"
	Commit string // commit hash when detached
}

// IsDetached reports whether HEAD holds a raw commit hash.
func (h Head) IsDetached() bool {
	return h.Target == ""
}

// Branch returns the branch name of an attached HEAD.
func (h Head) Branch() string {
	return strings.TrimPrefix(h.Target, constants.HeadsRefPrefix)
}

func (h Head) String() string {
	if h.IsDetached() {
		return h.Commit
	}
	return constants.SymbolicRefPrefix + h.Target
}

// Resolver resolves references stored under <repo>/.clony.
type Resolver struct {
	clonyDir string
}

func NewResolver(repoPath string) *Resolver {
	return &Resolver{
		clonyDir: filepath.Join(repoPath, constants.Clony),
	}
}

// CurrentRef reads HEAD.
func (r *Resolver) CurrentRef() (Head, error) {
	data, err := os.ReadFile(filepath.Join(r.clonyDir, constants.Head))
	if err != nil {
		return Head{}, fmt.Errorf("failed to read %s: %w", constants.Head, err)
	}

	content := strings.TrimSpace(string(data))
	if target, ok := strings.CutPrefix(content, constants.SymbolicRefPrefix); ok {
		target = strings.TrimSpace(target)
		if err := validateRefPath(target); err != nil {
			return Head{}, fmt.Errorf("%w: %w", ErrInvalidHead, err)
		}
		return Head{Target: target}, nil
	}

	if utils.IsValidHash(content) {
		return Head{Commit: content}, nil
	}

	return Head{}, fmt.Errorf("%w: %q", ErrInvalidHead, content)
}

// HeadCommit returns the commit HEAD currently resolves to.
// An attached HEAD whose branch file does not exist yet resolves to "".
func (r *Resolver) HeadCommit() (string, error) {
	head, err := r.CurrentRef()
	if err != nil {
		return "", err
	}
	if head.IsDetached() {
		return head.Commit, nil
	}

	commit, err := r.readRef(head.Target)
	if errors.Is(err, ErrRefNotFound) {
		return "", nil
	}
	return commit, err
}

// ReadBranch returns the commit hash stored in refs/heads/<name>.
func (r *Resolver) ReadBranch(name string) (string, error) {
	return r.readRef(constants.HeadsRefPrefix + name)
}

// Advance points head at commitID: the branch file when attached, HEAD itself when detached.
// No ancestry check is made.
func (r *Resolver) Advance(head Head, commitID string) error {
	if !utils.IsValidHash(commitID) {
		return fmt.Errorf("refusing to advance %s to invalid hash %q", head, commitID)
	}

	content := []byte(commitID + "\n")
	if head.IsDetached() {
		return r.writeFile(constants.Head, content)
	}

	if err := validateRefPath(head.Target); err != nil {
		return err
	}
	return r.writeFile(head.Target, content)
}

func (r *Resolver) readRef(refPath string) (string, error) {
	if err := validateRefPath(refPath); err != nil {
		return "", err
	}

	data, err := os.ReadFile(filepath.Join(r.clonyDir, filepath.FromSlash(refPath)))
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrRefNotFound, refPath)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read ref %s: %w", refPath, err)
	}

	commit := strings.TrimSpace(string(data))
	if !utils.IsValidHash(commit) {
		return "", fmt.Errorf("ref %s holds invalid hash %q", refPath, commit)
	}
	return commit, nil
}

func (r *Resolver) writeFile(refPath string, content []byte) error {
	fullPath := filepath.Join(r.clonyDir, filepath.FromSlash(refPath))
	if err := os.MkdirAll(filepath.Dir(fullPath), constants.DirPerms); err != nil {
		return fmt.Errorf("failed to create ref directory for %s: %w", refPath, err)
	}
	if err := utils.WriteFileAtomic(fullPath, content, constants.FilePerms); err != nil {
		return fmt.Errorf("failed to write %s: %w", refPath, err)
	}
	return nil
}

// validateRefPath keeps ref paths inside refs/.
func validateRefPath(refPath string) error {
	if !strings.HasPrefix(refPath, constants.Refs+"/") {
		return fmt.Errorf("ref %q is outside %s/", refPath, constants.Refs)
	}
	if path.Clean(refPath) != refPath || strings.Contains(refPath, "..") {
		return fmt.Errorf("ref %q is not a clean path", refPath)
	}
	return nil
}
