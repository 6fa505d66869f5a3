package objects

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/KostasZigo/clony/internal/constants"
	"github.com/KostasZigo/clony/utils"
)

// Represents commit author/committer
type Author struct {
	Name      string
	Email     string
	Timestamp time.Time
}

func (a Author) String() string {
	return fmt.Sprintf("%s <%s>",
		a.Name,
		a.Email)
}

// signature renders "<name> <<email>> <unix> <±HHMM>" as stored in commit objects.
func (a Author) signature() string {
	_, offset := a.Timestamp.Zone()
	return fmt.Sprintf("%s <%s> %d %s", a.Name, a.Email, a.Timestamp.Unix(), calculateTimezone(offset))
}

// Represents a snapshot of the repository
type Commit struct {
	hash       string
	treeHash   string
	parentHash string
	author     Author
	committer  Author
	message    string
}

// NewCommit builds a commit whose committer is the author.
// An empty parentHash produces a root commit without a parent line.
func NewCommit(treeHash, parentHash, message string, author Author) (*Commit, error) {
	return newCommit(treeHash, parentHash, message, author, author)
}

func NewInitialCommit(treeHash, message string, author Author) (*Commit, error) {
	return NewCommit(treeHash, "", message, author)
}

func newCommit(treeHash, parentHash, message string, author, committer Author) (*Commit, error) {
	content := buildCommitContent(treeHash, parentHash, message, author, committer)
	hash, err := utils.ComputeHash(content, utils.CommitObjectType)
	if err != nil {
		return nil, fmt.Errorf("failed to compute hash for commit: %v", err)
	}

	return &Commit{
		hash:       hash,
		treeHash:   treeHash,
		parentHash: parentHash,
		author:     author,
		committer:  committer,
		message:    message,
	}, nil
}

func buildCommitContent(treeHash, parentHash, message string, author, committer Author) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s%s\n", constants.CommitTreePrefix, treeHash)

	// Root commits carry no parent line
	if parentHash != "" {
		fmt.Fprintf(&buf, "%s%s\n", constants.CommitParentPrefix, parentHash)
	}

	fmt.Fprintf(&buf, "%s%s\n", constants.CommitAuthorPrefix, author.signature())
	fmt.Fprintf(&buf, "%s%s\n", constants.CommitCommitterPrefix, committer.signature())

	// Blank line before message
	buf.WriteByte('\n')

	buf.WriteString(message)

	// Ensure message ends in newLine
	if len(message) > 0 && message[len(message)-1] != '\n' {
		buf.WriteByte('\n')
	}

	return buf.Bytes()
}

func calculateTimezone(offset int) string {
	// offset is in seconds, convert to ±HHMM format
	sign := '+'
	if offset < 0 {
		sign = '-'
		offset = -offset
	}
	hours := offset / constants.SecondsPerHour
	minutes := (offset % constants.SecondsPerHour) / constants.SecondsPerMinute

	return fmt.Sprintf("%c%02d%02d", sign, hours, minutes)
}

// parseTimezone is the inverse of calculateTimezone.
func parseTimezone(tz string) (*time.Location, error) {
	if len(tz) != 5 || (tz[0] != '+' && tz[0] != '-') {
		return nil, fmt.Errorf("invalid timezone %q", tz)
	}
	hours, err := strconv.Atoi(tz[1:3])
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q", tz)
	}
	minutes, err := strconv.Atoi(tz[3:5])
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q", tz)
	}
	offset := hours*constants.SecondsPerHour + minutes*constants.SecondsPerMinute
	if tz[0] == '-' {
		offset = -offset
	}
	return time.FixedZone("", offset), nil
}

// parseSignature decodes "<name> <<email>> <unix> <±HHMM>".
func parseSignature(line string) (Author, error) {
	open := strings.LastIndexByte(line, '<')
	closing := strings.LastIndexByte(line, '>')
	if open == -1 || closing < open {
		return Author{}, fmt.Errorf("invalid signature %q", line)
	}

	fields := strings.Fields(line[closing+1:])
	if len(fields) != 2 {
		return Author{}, fmt.Errorf("invalid signature time %q", line)
	}
	seconds, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return Author{}, fmt.Errorf("invalid signature timestamp %q", fields[0])
	}
	location, err := parseTimezone(fields[1])
	if err != nil {
		return Author{}, err
	}

	return Author{
		Name:      strings.TrimSuffix(line[:open], " "),
		Email:     line[open+1 : closing],
		Timestamp: time.Unix(seconds, 0).In(location),
	}, nil
}

// ParseCommit decodes a commit payload. The stored message is kept verbatim,
// including the trailing newline added on creation.
func ParseCommit(content []byte) (*Commit, error) {
	headers, message, found := strings.Cut(string(content), "\n\n")
	if !found {
		return nil, fmt.Errorf("%w: commit missing message separator", ErrCorruptObject)
	}

	var (
		treeHash, parentHash string
		author, committer    *Author
	)
	for _, line := range strings.Split(headers, "\n") {
		switch {
		case strings.HasPrefix(line, constants.CommitTreePrefix):
			treeHash = strings.TrimPrefix(line, constants.CommitTreePrefix)
		case strings.HasPrefix(line, constants.CommitParentPrefix):
			if parentHash != "" {
				return nil, fmt.Errorf("%w: commit has more than one parent", ErrCorruptObject)
			}
			parentHash = strings.TrimPrefix(line, constants.CommitParentPrefix)
		case strings.HasPrefix(line, constants.CommitAuthorPrefix):
			signature, err := parseSignature(strings.TrimPrefix(line, constants.CommitAuthorPrefix))
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrCorruptObject, err)
			}
			author = &signature
		case strings.HasPrefix(line, constants.CommitCommitterPrefix):
			signature, err := parseSignature(strings.TrimPrefix(line, constants.CommitCommitterPrefix))
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrCorruptObject, err)
			}
			committer = &signature
		default:
			return nil, fmt.Errorf("%w: unexpected commit header %q", ErrCorruptObject, line)
		}
	}

	if treeHash == "" || author == nil || committer == nil {
		return nil, fmt.Errorf("%w: commit missing tree, author or committer", ErrCorruptObject)
	}

	return newCommit(treeHash, parentHash, message, *author, *committer)
}

func (c *Commit) Hash() string {
	return c.hash
}

func (c *Commit) Type() utils.ObjectType {
	return utils.CommitObjectType
}

func (c *Commit) TreeHash() string {
	return c.treeHash
}

func (c *Commit) ParentHash() string {
	return c.parentHash
}

func (c *Commit) Author() Author {
	return c.author
}

func (c *Commit) Committer() Author {
	return c.committer
}

func (c *Commit) Message() string {
	return c.message
}

func (c *Commit) Content() []byte {
	return buildCommitContent(c.treeHash, c.parentHash, c.message, c.author, c.committer)
}

func (c *Commit) Size() int {
	return len(c.Content())
}

func (c *Commit) Data() []byte {
	return utils.FrameObject(utils.CommitObjectType, c.Content())
}

func (c *Commit) IsInitialCommit() bool {
	return c.parentHash == ""
}

func (c *Commit) String() string {
	return fmt.Sprintf("Commit{hash: %s, tree: %s, parent: %s, author: %s, message: %q}",
		c.hash, c.treeHash, c.parentHash, c.author.String(), c.message)
}
