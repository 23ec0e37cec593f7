package domain

import (
	"strings"
	"time"
)

// ChangeType describes what happened to a file in a commit
type ChangeType string

const (
	ChangeAdded    ChangeType = "added"
	ChangeModified ChangeType = "modified"
	ChangeDeleted  ChangeType = "deleted"
	ChangeRenamed  ChangeType = "renamed"
	ChangeCopied   ChangeType = "copied"
)

// NodeType is the kind of entry in a tree listing
type NodeType string

const (
	NodeFile      NodeType = "file"
	NodeDirectory NodeType = "directory"
	NodeSymlink   NodeType = "symlink"
	NodeSubmodule NodeType = "submodule"
)

// RefType distinguishes branches from tags
type RefType string

const (
	RefBranch RefType = "branch"
	RefTag    RefType = "tag"
)

// LineType is the kind of a single diff line
type LineType string

const (
	LineContext   LineType = "context"
	LineAddition  LineType = "addition"
	LineDeletion  LineType = "deletion"
	LineNoNewline LineType = "no_newline"
)

// CloneProtocol tags a clone URL by transport
type CloneProtocol string

const (
	CloneHTTPS CloneProtocol = "https"
	CloneSSH   CloneProtocol = "ssh"
	CloneGit   CloneProtocol = "git"
)

// UnknownPath is reported when no strategy could recover a diff file path
const UnknownPath = "unknown"

// Project is one repository in the index page
type Project struct {
	Name         string     `json:"name" yaml:"name"`
	Path         string     `json:"path" yaml:"path"`
	Description  string     `json:"description,omitempty" yaml:"description,omitempty"`
	Owner        string     `json:"owner,omitempty" yaml:"owner,omitempty"`
	LastActivity *time.Time `json:"last_activity,omitempty" yaml:"last_activity,omitempty"`
	Category     string     `json:"category,omitempty" yaml:"category,omitempty"`
}

// CommitSummary is one row of a commit log
type CommitSummary struct {
	SHA         string    `json:"sha" yaml:"sha"`
	ShortSHA    string    `json:"short_sha" yaml:"short_sha"`
	Message     string    `json:"message" yaml:"message"`
	Subject     string    `json:"subject" yaml:"subject"`
	AuthorName  string    `json:"author_name" yaml:"author_name"`
	AuthorEmail string    `json:"author_email,omitempty" yaml:"author_email,omitempty"`
	Date        time.Time `json:"date" yaml:"date"`
	Decorations []string  `json:"decorations,omitempty" yaml:"decorations,omitempty"`
}

// NewCommitSummary fills the derived fields from sha and message
func NewCommitSummary(sha, message string) CommitSummary {
	return CommitSummary{
		SHA:      sha,
		ShortSHA: ShortSHA(sha),
		Message:  message,
		Subject:  FirstLine(message),
	}
}

// CommitLog is a page of commit summaries
type CommitLog struct {
	Commits []CommitSummary `json:"commits" yaml:"commits"`
	HasMore bool            `json:"has_more" yaml:"has_more"`
	// NextOffset is nil when there are no more pages or when the pager
	// link exists but carries no ofs parameter.
	NextOffset *int `json:"next_offset,omitempty" yaml:"next_offset,omitempty"`
}

// Signature identifies an author or committer
type Signature struct {
	Name  string    `json:"name" yaml:"name"`
	Email string    `json:"email,omitempty" yaml:"email,omitempty"`
	Date  time.Time `json:"date" yaml:"date"`
}

// DiffStats aggregates the change counts of a commit
type DiffStats struct {
	FilesChanged int `json:"files_changed" yaml:"files_changed"`
	Insertions   int `json:"insertions" yaml:"insertions"`
	Deletions    int `json:"deletions" yaml:"deletions"`
}

// ChangedFile is one entry of a commit's diffstat
type ChangedFile struct {
	Path       string     `json:"path" yaml:"path"`
	OldPath    string     `json:"old_path,omitempty" yaml:"old_path,omitempty"`
	ChangeType ChangeType `json:"change_type" yaml:"change_type"`
	Additions  int        `json:"additions" yaml:"additions"`
	Deletions  int        `json:"deletions" yaml:"deletions"`
}

// CommitDetail is the full metadata of one commit page
type CommitDetail struct {
	SHA          string        `json:"sha" yaml:"sha"`
	Message      string        `json:"message" yaml:"message"`
	Author       Signature     `json:"author" yaml:"author"`
	Committer    *Signature    `json:"committer,omitempty" yaml:"committer,omitempty"`
	Parents      []string      `json:"parents" yaml:"parents"`
	Tree         string        `json:"tree,omitempty" yaml:"tree,omitempty"`
	ChangeID     string        `json:"change_id,omitempty" yaml:"change_id,omitempty"`
	Stats        *DiffStats    `json:"stats,omitempty" yaml:"stats,omitempty"`
	ChangedFiles []ChangedFile `json:"changed_files" yaml:"changed_files"`
	Diff         []DiffFile    `json:"diff,omitempty" yaml:"diff,omitempty"`
}

// IsMerge reports whether the commit has more than one parent
func (c *CommitDetail) IsMerge() bool {
	return len(c.Parents) > 1
}

// TreeNode is one entry of a directory listing
type TreeNode struct {
	Name string   `json:"name" yaml:"name"`
	Path string   `json:"path" yaml:"path"`
	Type NodeType `json:"type" yaml:"type"`
	Mode string   `json:"mode,omitempty" yaml:"mode,omitempty"`
	// Size is nil when the listing does not report one.
	Size *int64 `json:"size,omitempty" yaml:"size,omitempty"`
}

// Ref is a branch or a tag
type Ref struct {
	Name    string     `json:"name" yaml:"name"`
	SHA     string     `json:"sha,omitempty" yaml:"sha,omitempty"`
	Message string     `json:"message,omitempty" yaml:"message,omitempty"`
	Author  string     `json:"author,omitempty" yaml:"author,omitempty"`
	Date    *time.Time `json:"date,omitempty" yaml:"date,omitempty"`
	Type    RefType    `json:"type" yaml:"type"`
}

// Refs keeps branches and tags apart, each in page order
type Refs struct {
	Branches []Ref `json:"branches" yaml:"branches"`
	Tags     []Ref `json:"tags" yaml:"tags"`
}

// DiffLine is a single line of a hunk. Line numbers are 0 when absent:
// additions carry only NewLine, deletions only OldLine.
type DiffLine struct {
	Type    LineType `json:"type" yaml:"type"`
	Content string   `json:"content" yaml:"content"`
	OldLine int      `json:"old_line,omitempty" yaml:"old_line,omitempty"`
	NewLine int      `json:"new_line,omitempty" yaml:"new_line,omitempty"`
}

// DiffHunk is one @@ block
type DiffHunk struct {
	OldStart int        `json:"old_start" yaml:"old_start"`
	OldCount int        `json:"old_count" yaml:"old_count"`
	NewStart int        `json:"new_start" yaml:"new_start"`
	NewCount int        `json:"new_count" yaml:"new_count"`
	Header   string     `json:"header" yaml:"header"`
	Lines    []DiffLine `json:"lines" yaml:"lines"`
}

// DiffFile is the change to one file
type DiffFile struct {
	// OldPath is empty for newly added files.
	OldPath    string     `json:"old_path,omitempty" yaml:"old_path,omitempty"`
	NewPath    string     `json:"new_path" yaml:"new_path"`
	ChangeType ChangeType `json:"change_type" yaml:"change_type"`
	Binary     bool       `json:"binary,omitempty" yaml:"binary,omitempty"`
	Hunks      []DiffHunk `json:"hunks" yaml:"hunks"`
}

// Additions counts the added lines over all hunks
func (f *DiffFile) Additions() int {
	return f.count(LineAddition)
}

// Deletions counts the deleted lines over all hunks
func (f *DiffFile) Deletions() int {
	return f.count(LineDeletion)
}

func (f *DiffFile) count(t LineType) int {
	n := 0
	for _, h := range f.Hunks {
		for _, l := range h.Lines {
			if l.Type == t {
				n++
			}
		}
	}
	return n
}

// CloneURL is a clone address tagged with its protocol
type CloneURL struct {
	URL      string        `json:"url" yaml:"url"`
	Protocol CloneProtocol `json:"protocol" yaml:"protocol"`
}

// RepositorySummary is the overview page of a repository
type RepositorySummary struct {
	Name             string         `json:"name" yaml:"name"`
	Description      string         `json:"description,omitempty" yaml:"description,omitempty"`
	LastCommit       *CommitSummary `json:"last_commit,omitempty" yaml:"last_commit,omitempty"`
	CloneURLs        []CloneURL     `json:"clone_urls" yaml:"clone_urls"`
	BranchCount      int            `json:"branch_count" yaml:"branch_count"`
	TagCount         int            `json:"tag_count" yaml:"tag_count"`
	ContributorCount int            `json:"contributor_count" yaml:"contributor_count"`
}

// AboutContent is the sanitized README/about body. An empty HTML means
// the repository has no about content.
type AboutContent struct {
	HTML string `json:"html" yaml:"html"`
}

// IsEmpty reports the "no content" state
func (a *AboutContent) IsEmpty() bool {
	return a.HTML == ""
}

// Blob is the content of a file view page
type Blob struct {
	Path string `json:"path" yaml:"path"`
	// Content is empty for binary files.
	Content string `json:"content,omitempty" yaml:"content,omitempty"`
	Binary  bool   `json:"binary,omitempty" yaml:"binary,omitempty"`
	// Size is nil when the page does not report one.
	Size *int64 `json:"size,omitempty" yaml:"size,omitempty"`
}

// ShortSHA returns the first 7 characters of sha
func ShortSHA(sha string) string {
	if len(sha) <= 7 {
		return sha
	}
	return sha[:7]
}

// FirstLine returns the first line of a message
func FirstLine(message string) string {
	line, _, _ := strings.Cut(message, "\n")
	return strings.TrimRight(line, "\r")
}
