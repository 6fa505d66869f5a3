// Package commit records the working tree of a repository as a new commit.
//
// A commit moves through NoRepo, NothingStaged, Committing and Committed.
// The branch (or detached HEAD) is advanced only after the commit object is
// stored, and staging is cleared only after the reference is advanced.
package commit

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/KostasZigo/clony/internal/constants"
	"github.com/KostasZigo/clony/internal/objects"
	"github.com/KostasZigo/clony/internal/refs"
	"github.com/KostasZigo/clony/internal/repository"
	"github.com/KostasZigo/clony/internal/staging"
	"github.com/KostasZigo/clony/internal/worktree"
)

var (
	// ErrRepositoryNotFound is returned when no repository contains the working directory.
	ErrRepositoryNotFound = repository.ErrRepositoryNotFound

	// ErrNothingStaged is returned when the staging index is missing or empty.
	ErrNothingStaged = errors.New("nothing to commit. Run 'clony add <file>' to stage changes")

	// ErrCommitFailed matches every *CommitError.
	ErrCommitFailed = errors.New("commit failed")
)

// CommitError wraps a failure that happened while building or recording a commit.
type CommitError struct {
	Err error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("%s: %v", ErrCommitFailed, e.Err)
}

func (e *CommitError) Unwrap() error {
	return e.Err
}

func (e *CommitError) Is(target error) bool {
	return target == ErrCommitFailed
}

// Committer creates commits. Collaborators are injectable for tests.
type Committer struct {
	logger     *slog.Logger
	now        func() time.Time
	workDir    string
	findRoot   func(cwd string) (string, error)
	readStaged func(root string) (map[string]string, error)
	clearStage func(root string) error
	loadConfig func(root string) (repository.Config, error)
}

// Option configures a Committer.
type Option func(*Committer)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Committer) {
		c.logger = logger
	}
}

// WithClock replaces time.Now as the source of commit timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Committer) {
		c.now = now
	}
}

// WithWorkingDir sets the directory the repository search starts from.
// Defaults to the process working directory.
func WithWorkingDir(dir string) Option {
	return func(c *Committer) {
		c.workDir = dir
	}
}

func WithRepositoryFinder(find func(cwd string) (string, error)) Option {
	return func(c *Committer) {
		c.findRoot = find
	}
}

func WithStaging(read func(root string) (map[string]string, error), clear func(root string) error) Option {
	return func(c *Committer) {
		c.readStaged = read
		c.clearStage = clear
	}
}

func NewCommitter(opts ...Option) *Committer {
	committer := &Committer{
		logger:     slog.Default(),
		now:        time.Now,
		findRoot:   repository.FindRepositoryRoot,
		readStaged: staging.Read,
		clearStage: staging.Clear,
		loadConfig: repository.LoadConfig,
	}
	for _, opt := range opts {
		opt(committer)
	}
	return committer
}

// Commit snapshots the repository working tree and returns the new commit hash.
//
// Errors match ErrRepositoryNotFound, ErrNothingStaged or ErrCommitFailed.
// Each is logged once before it is returned. Objects written before a
// failure are left in the store.
func (c *Committer) Commit(message, authorName, authorEmail string) (string, error) {
	cwd := c.workDir
	if cwd == "" {
		var err error
		if cwd, err = os.Getwd(); err != nil {
			c.logger.Error(ErrRepositoryNotFound.Error(), "error", err)
			return "", fmt.Errorf("%w: %w", ErrRepositoryNotFound, err)
		}
	}

	root, err := c.findRoot(cwd)
	if err != nil {
		c.logger.Error(ErrRepositoryNotFound.Error())
		if !errors.Is(err, ErrRepositoryNotFound) {
			err = fmt.Errorf("%w: %w", ErrRepositoryNotFound, err)
		}
		return "", err
	}

	staged, err := c.readStaged(root)
	if err != nil {
		return "", c.fail(err)
	}
	if len(staged) == 0 {
		c.logger.Error(ErrNothingStaged.Error())
		return "", ErrNothingStaged
	}

	hash, err := c.record(root, message, authorName, authorEmail)
	if err != nil {
		return "", c.fail(err)
	}
	c.logger.Info(fmt.Sprintf("Created commit %s with message: %s", hash[:constants.ShortHashLength], message))

	// The commit exists once the ref moved, so the hash is returned even if clearing fails
	if err := c.clearStage(root); err != nil {
		return hash, c.fail(fmt.Errorf("failed to clear staging area: %w", err))
	}
	c.logger.Info("Staging area cleared")

	return hash, nil
}

// record writes the tree and commit objects and advances HEAD.
func (c *Committer) record(root, message, authorName, authorEmail string) (string, error) {
	cfg, err := c.loadConfig(root)
	if err != nil {
		return "", err
	}

	store := objects.NewObjectStore(root)
	builder, err := worktree.NewBuilder(store,
		worktree.WithIgnorePatterns(cfg.Core.Ignore...),
		worktree.WithLogger(c.logger))
	if err != nil {
		return "", err
	}

	treeHash, err := builder.BuildTree(root)
	if err != nil {
		return "", err
	}
	c.logger.Debug("Built tree",
		"tree", treeHash,
		"writes", builder.ObjectsWritten())

	resolver := refs.NewResolver(root)
	head, err := resolver.CurrentRef()
	if err != nil {
		return "", err
	}
	parentHash, err := resolver.HeadCommit()
	if err != nil {
		return "", err
	}

	timestamp, err := c.timestamp(store, parentHash)
	if err != nil {
		return "", err
	}

	author := objects.Author{
		Name:      authorName,
		Email:     authorEmail,
		Timestamp: timestamp,
	}
	commit, err := objects.NewCommit(treeHash, parentHash, message, author)
	if err != nil {
		return "", err
	}

	if err := store.Store(commit); err != nil {
		return "", fmt.Errorf("failed to store commit: %w", err)
	}

	if err := resolver.Advance(head, commit.Hash()); err != nil {
		return "", err
	}
	c.logger.Debug("Advanced reference",
		"head", head.String(),
		"commit", commit.Hash())

	return commit.Hash(), nil
}

// timestamp returns the clock time, raised to the parent's timestamp when the clock is behind it.
func (c *Committer) timestamp(store *objects.ObjectStore, parentHash string) (time.Time, error) {
	now := c.now()
	if parentHash == "" {
		return now, nil
	}

	parent, err := store.ReadCommit(parentHash)
	if errors.Is(err, objects.ErrObjectNotFound) {
		c.logger.Debug("Parent commit not in store", "parent", parentHash)
		return now, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read parent commit: %w", err)
	}

	parentTime := parent.Committer().Timestamp
	if now.Unix() < parentTime.Unix() {
		c.logger.Debug("Clock behind parent commit, using parent timestamp",
			"parent", parentHash,
			"clock", now.Unix(),
			"parentTime", parentTime.Unix())
		return time.Unix(parentTime.Unix(), 0).In(now.Location()), nil
	}
	return now, nil
}

func (c *Committer) fail(err error) error {
	commitErr := &CommitError{Err: err}
	c.logger.Error(fmt.Sprintf("Error creating commit: %v", err))
	return commitErr
}
