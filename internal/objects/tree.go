package objects

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"

	"github.com/KostasZigo/clony/internal/constants"
	"github.com/KostasZigo/clony/utils"
)

type FileMode string

const (
	ModeRegularFile FileMode = "100644" // Regular non-executable file
	ModeExecutable  FileMode = "100755" // Executable file
	ModeDirectory   FileMode = "40000"  // Directory (tree)
)

func (m FileMode) IsValid() bool {
	switch m {
	case ModeRegularFile, ModeExecutable, ModeDirectory:
		return true
	default:
		return false
	}
}

// TreeEntry represents a single entry in a tree object
type TreeEntry struct {
	mode FileMode
	name string
	hash string // hex hash of the child blob or tree
}

func NewTreeEntry(mode FileMode, name string, hash string) (*TreeEntry, error) {
	if !mode.IsValid() {
		return nil, fmt.Errorf("invalid file mode: %s", mode)
	}
	if err := validateEntryName(name); err != nil {
		return nil, err
	}
	if !utils.IsValidHash(hash) {
		return nil, fmt.Errorf("%w: %q for entry %s", ErrInvalidHash, hash, name)
	}
	return &TreeEntry{
		mode: mode,
		name: name,
		hash: hash,
	}, nil
}

// validateEntryName rejects names that are not a single path component.
func validateEntryName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("invalid tree entry name: %q", name)
	case strings.ContainsAny(name, "/\x00"):
		return fmt.Errorf("invalid tree entry name: %q", name)
	}
	return nil
}

func (e *TreeEntry) Mode() FileMode {
	return e.mode
}

func (e *TreeEntry) Name() string {
	return e.name
}

func (e *TreeEntry) Hash() string {
	return e.hash
}

func (treeEntry *TreeEntry) IsDirectory() bool {
	return treeEntry.mode == ModeDirectory
}

func (treeEntry *TreeEntry) IsExecutable() bool {
	return treeEntry.mode == ModeExecutable
}

// Tree represents a directory snapshot
type Tree struct {
	entries []TreeEntry
	hash    string
}

// NewTree creates a tree object from the list of Tree Entries.
// Entries are copied and sorted; duplicate names are rejected.
//
// The order is git's, not plain name order: a directory sorts as if its
// name ended in "/", so file "a-b" comes before directory "a".
func NewTree(treeEntries []TreeEntry) (*Tree, error) {
	entries := make([]TreeEntry, len(treeEntries))
	copy(entries, treeEntries)

	slices.SortStableFunc(entries, compareTreeEntries)

	for i := 1; i < len(entries); i++ {
		if entries[i].Name() == entries[i-1].Name() {
			return nil, fmt.Errorf("duplicate tree entry: %s", entries[i].Name())
		}
	}

	treeContent := buildTreeContent(entries)
	hash, err := utils.ComputeHash(treeContent, utils.TreeObjectType)
	if err != nil {
		return nil, fmt.Errorf("failed to compute hash for tree: %v", err)
	}

	return &Tree{
		entries: entries,
		hash:    hash,
	}, nil
}

// compareTreeEntries orders entries by name, with directory names
// compared as if they had a trailing "/".
func compareTreeEntries(a, b TreeEntry) int {
	nameA := getSortableName(a)
	nameB := getSortableName(b)
	return strings.Compare(nameA, nameB)
}

// getSortableName returns the name used for sorting.
// For directories, appends "/" to follow Git's sorting convention.
func getSortableName(entry TreeEntry) string {
	if entry.IsDirectory() {
		return entry.Name() + "/"
	}
	return entry.Name()
}

// buildTreeContent creates the raw tree content
// <mode> <name>\0<20-byte binary SHA> , ex:
// 100644 README.md\0[binary SHA for README blob]
// 100644 main.go\0[binary SHA for main.go blob]
// 40000 src\0[binary SHA for src/ tree]
func buildTreeContent(entries []TreeEntry) []byte {
	var buf bytes.Buffer

	for _, entry := range entries {
		buf.WriteString(string(entry.Mode()))
		buf.WriteByte(' ')
		buf.WriteString(entry.Name())
		buf.WriteByte(constants.NullByte)

		// Hashes are validated on entry creation
		hashBytes, _ := hex.DecodeString(entry.Hash())
		buf.Write(hashBytes)
	}

	return buf.Bytes()
}

// ParseTree decodes a tree payload produced by buildTreeContent.
// Entries must already be in tree order so the parsed tree keeps the hash it was stored under.
func ParseTree(content []byte) (*Tree, error) {
	var entries []TreeEntry

	rest := content
	for len(rest) > 0 {
		spaceIndex := bytes.IndexByte(rest, ' ')
		if spaceIndex == -1 {
			return nil, fmt.Errorf("%w: tree entry missing mode separator", ErrCorruptObject)
		}
		mode := FileMode(rest[:spaceIndex])
		rest = rest[spaceIndex+1:]

		nullByteIndex := bytes.IndexByte(rest, constants.NullByte)
		if nullByteIndex == -1 {
			return nil, fmt.Errorf("%w: tree entry missing name terminator", ErrCorruptObject)
		}
		name := string(rest[:nullByteIndex])
		rest = rest[nullByteIndex+1:]

		if len(rest) < constants.HashByteLength {
			return nil, fmt.Errorf("%w: tree entry %s truncated hash", ErrCorruptObject, name)
		}
		hash := hex.EncodeToString(rest[:constants.HashByteLength])
		rest = rest[constants.HashByteLength:]

		entry, err := NewTreeEntry(mode, name, hash)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptObject, err)
		}
		if n := len(entries); n > 0 && compareTreeEntries(entries[n-1], *entry) >= 0 {
			return nil, fmt.Errorf("%w: tree entry %s out of order", ErrCorruptObject, name)
		}
		entries = append(entries, *entry)
	}

	tree, err := NewTree(entries)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptObject, err)
	}
	return tree, nil
}

// Hash returns the SHA-1 hash of the tree
func (t *Tree) Hash() string {
	return t.hash
}

func (t *Tree) Type() utils.ObjectType {
	return utils.TreeObjectType
}

// Entries returns all tree entries
func (t *Tree) Entries() []TreeEntry {
	return t.entries
}

// Size returns the size of the tree content
func (t *Tree) Size() int {
	return len(buildTreeContent(t.entries))
}

// Content returns the raw tree content
func (t *Tree) Content() []byte {
	return buildTreeContent(t.entries)
}

func (t *Tree) Data() []byte {
	return utils.FrameObject(utils.TreeObjectType, t.Content())
}

// String returns a human-readable representation
func (t *Tree) String() string {
	return fmt.Sprintf("Tree{hash: %s, entries: %d}", t.hash, len(t.entries))
}

// FindEntry finds an entry by name
func (t *Tree) FindEntry(name string) (*TreeEntry, bool) {
	for _, entry := range t.entries {
		if entry.Name() == name {
			return &entry, true
		}
	}
	return nil, false
}
