package constants

import "os"

// Command name constants used in tests and error messages.
// Cobra Use fields remain inline for CLI discoverability.
const (
	InitCmdName       = "init"
	HashObjectCmdName = "hash-object"
	AddCmdName        = "add"
	CommitCmdName     = "commit"
	CatFileCmdName    = "cat-file"
	LogCmdName        = "log"
)

// Repository directory and file names define the clony metadata structure.
const (
	// Clony is the repository metadata directory.
	Clony = ".clony"

	// Objects stores content-addressable objects (blobs, trees, commits).
	Objects = "objects"

	// Refs contains branch and tag references.
	Refs = "refs"

	// Heads stores branch pointers under refs/.
	Heads = "heads"

	// Tags stores tag pointers under refs/.
	Tags = "tags"

	// Head points to current branch or detached commit.
	Head = "HEAD"

	// Index is the staging mapping file.
	Index = "index"

	// ConfigFile holds repository-local settings.
	ConfigFile = "config.toml"

	// LockFile serializes mutating commands across processes.
	LockFile = "clony.lock"
)

// ReservedDirs are control directories never snapshotted into trees.
var ReservedDirs = []string{Clony, ".git"}

// Default repository values.
const (
	// DefaultBranch is the initial branch name for new repositories.
	DefaultBranch = "main"

	// SymbolicRefPrefix marks HEAD content that points at a ref.
	SymbolicRefPrefix = "ref: "

	// HeadsRefPrefix is the ref path prefix for branches.
	HeadsRefPrefix = "refs/heads/"

	// DefaultRefPrefix is prepended to branch names in HEAD file.
	DefaultRefPrefix = SymbolicRefPrefix + HeadsRefPrefix
)

// File system permissions for created files and directories.
const (
	// DirPerms grants read/write/execute to owner, read/execute to others (rwxr-xr-x).
	DirPerms os.FileMode = 0755

	// FilePerms grants read/write to owner, read-only to others (rw-r--r--).
	FilePerms os.FileMode = 0644

	// ObjectPerms makes stored objects read-only (r--r--r--).
	ObjectPerms os.FileMode = 0444
)

// Cryptographic hash properties.
const (
	// HashByteLength is byte length of SHA-1 hash (20 bytes).
	HashByteLength = 20

	// HashStringLength is hex string length of SHA-1 hash (40 characters).
	HashStringLength = 40

	// HashDirPrefixLength is subdirectory prefix length under objects/ (2 characters).
	HashDirPrefixLength = 2

	// ShortHashLength is the abbreviated hash length used in user output.
	ShortHashLength = 7
)

// Commit metadata markers.
const (
	// CommitTreePrefix marks the tree line in commit objects.
	CommitTreePrefix = "tree "

	// CommitParentPrefix marks parent commit lines in commit objects.
	CommitParentPrefix = "parent "

	// CommitAuthorPrefix marks author metadata in commit objects.
	CommitAuthorPrefix = "author "

	// CommitCommitterPrefix marks committer metadata in commit objects.
	CommitCommitterPrefix = "committer "
)

// Object format constants.
const (
	// NullByte separates header from content in objects.
	NullByte = '\x00'
)

// Time conversion constants for timezone formatting.
const (
	SecondsPerHour   = 3600
	SecondsPerMinute = 60
)
