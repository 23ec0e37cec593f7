package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/quantmind-br/cgitscrape/internal/domain"
)

var (
	gitHeaderPattern  = regexp.MustCompile(`^diff --git a/(.*) b/(.*)$`)
	hunkHeaderPattern = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@(.*)$`)
)

type scanState int

const (
	betweenFiles scanState = iota
	inFileHeader
	betweenHunks
	inHunk
)

// unifiedScan is the accumulator of the unified diff fold. step never
// mutates its receiver's visible state: it returns the next accumulator.
type unifiedScan struct {
	state scanState
	done  []domain.DiffFile

	file    domain.DiffFile
	hasFile bool
	header  []string

	hunk    domain.DiffHunk
	hasHunk bool

	oldLine, newLine int
	oldLeft, newLeft int
	// blankTail counts the empty lines at the end of the open hunk that were
	// taken as context and are not yet confirmed by a later hunk line.
	blankTail int
}

// parseUnified folds a unified diff text into files. Files whose path the
// text does not carry come back with an empty NewPath.
func parseUnified(text string) []domain.DiffFile {
	var s unifiedScan
	for _, line := range strings.Split(strings.TrimSuffix(text, "\n"), "\n") {
		s = s.step(strings.TrimSuffix(line, "\r"))
	}
	return s.finish()
}

func (s unifiedScan) finish() []domain.DiffFile {
	s = s.closeFile()
	if s.done == nil {
		return []domain.DiffFile{}
	}
	return s.done
}

func (s unifiedScan) step(line string) unifiedScan {
	if s.state == inHunk && s.budgetLeft() {
		if next, ok := s.hunkLine(line); ok {
			return next
		}
	}

	switch {
	case strings.HasPrefix(line, "diff --git "):
		return s.openFile(line)
	case strings.HasPrefix(line, "@@"):
		return s.openHunk(line)
	case strings.HasPrefix(line, `\`):
		if s.hasHunk {
			s.hunk.Lines = append(s.hunk.Lines, domain.DiffLine{Type: domain.LineNoNewline, Content: line})
			s.blankTail = 0
		}
		return s
	}

	switch s.state {
	case inFileHeader:
		s.header = append(s.header, line)
		return s
	case inHunk:
		if strings.HasPrefix(line, "--- ") || strings.HasPrefix(line, "+++ ") || line == "-- " || line == "--" {
			s = s.closeHunk()
			if strings.HasPrefix(line, "--- ") {
				return s.openPlainFile(line)
			}
			return s
		}
		if next, ok := s.hunkLine(line); ok && line != "" {
			return next
		}
		return s
	default:
		if strings.HasPrefix(line, "--- ") {
			return s.openPlainFile(line)
		}
		return s
	}
}

func (s unifiedScan) budgetLeft() bool {
	return s.oldLeft > 0 || s.newLeft > 0
}

// hunkLine records one +, - or context line
func (s unifiedScan) hunkLine(line string) (unifiedScan, bool) {
	var dl domain.DiffLine
	switch {
	case line == "":
		// editors and mail clients strip the lone space of empty context lines
		dl = domain.DiffLine{Type: domain.LineContext, OldLine: s.oldLine, NewLine: s.newLine}
		s.oldLine++
		s.newLine++
		s.oldLeft--
		s.newLeft--
		s.blankTail++
		s.hunk.Lines = append(s.hunk.Lines, dl)
		return s, true
	case line[0] == ' ':
		dl = domain.DiffLine{Type: domain.LineContext, Content: line[1:], OldLine: s.oldLine, NewLine: s.newLine}
		s.oldLine++
		s.newLine++
		s.oldLeft--
		s.newLeft--
	case line[0] == '+':
		dl = domain.DiffLine{Type: domain.LineAddition, Content: line[1:], NewLine: s.newLine}
		s.newLine++
		s.newLeft--
	case line[0] == '-':
		dl = domain.DiffLine{Type: domain.LineDeletion, Content: line[1:], OldLine: s.oldLine}
		s.oldLine++
		s.oldLeft--
	default:
		return s, false
	}
	s.hunk.Lines = append(s.hunk.Lines, dl)
	s.blankTail = 0
	return s, true
}

func (s unifiedScan) openFile(line string) unifiedScan {
	s = s.closeFile()
	s.file = domain.DiffFile{ChangeType: domain.ChangeModified}
	if m := gitHeaderPattern.FindStringSubmatch(line); m != nil {
		s.file.OldPath, s.file.NewPath = m[1], m[2]
	}
	s.hasFile = true
	s.header = []string{}
	s.state = inFileHeader
	return s
}

// openPlainFile starts a file from a "--- " line of a diff without a
// "diff --git" preamble.
func (s unifiedScan) openPlainFile(line string) unifiedScan {
	s = s.closeFile()
	s.file = domain.DiffFile{ChangeType: domain.ChangeModified}
	s.hasFile = true
	s.header = []string{line}
	s.state = inFileHeader
	return s
}

func (s unifiedScan) openHunk(line string) unifiedScan {
	s = s.closeHunk()
	if !s.hasFile {
		// a bare hunk: the path has to be recovered from the surrounding page
		s.file = domain.DiffFile{ChangeType: domain.ChangeModified}
		s.hasFile = true
	}
	if s.state == inFileHeader {
		s.file = applyFileHeader(s.file, s.header)
	}

	m := hunkHeaderPattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		// combined diffs and other headers we do not model
		s.state = betweenHunks
		return s
	}

	h := domain.DiffHunk{
		OldStart: atoiOr(m[1], 0),
		OldCount: atoiOr(m[2], 1),
		NewStart: atoiOr(m[3], 0),
		NewCount: atoiOr(m[4], 1),
		Header:   strings.TrimSpace(line),
		Lines:    []domain.DiffLine{},
	}
	s.hunk = h
	s.hasHunk = true
	s.oldLine, s.newLine = h.OldStart, h.NewStart
	s.oldLeft, s.newLeft = h.OldCount, h.NewCount
	s.state = inHunk
	return s
}

func (s unifiedScan) closeHunk() unifiedScan {
	if s.hasHunk {
		// trailing blanks count only when they settle the header's ranges
		if s.blankTail > 0 && (s.oldLeft != 0 || s.newLeft != 0) {
			s.hunk.Lines = s.hunk.Lines[:len(s.hunk.Lines)-s.blankTail]
		}
		s.file.Hunks = append(s.file.Hunks, s.hunk)
		s.hunk = domain.DiffHunk{}
		s.hasHunk = false
	}
	s.oldLeft, s.newLeft = 0, 0
	s.blankTail = 0
	if s.state == inHunk {
		s.state = betweenHunks
	}
	return s
}

func (s unifiedScan) closeFile() unifiedScan {
	s = s.closeHunk()
	if !s.hasFile {
		return s
	}
	if s.state == inFileHeader {
		s.file = applyFileHeader(s.file, s.header)
	}
	if s.header == nil {
		s.file = inferChangeFromHunks(s.file)
	}
	if s.file.Hunks == nil {
		s.file.Hunks = []domain.DiffHunk{}
	}
	s.done = append(s.done, s.file)
	s.file = domain.DiffFile{}
	s.hasFile = false
	s.header = nil
	s.state = betweenFiles
	return s
}

// applyFileHeader classifies a file from the extended header lines git
// writes between "diff --git" and the first hunk.
func applyFileHeader(f domain.DiffFile, header []string) domain.DiffFile {
	var added, deleted, renamed, copied bool
	for _, line := range header {
		switch {
		case strings.HasPrefix(line, "new file"):
			added = true
		case strings.HasPrefix(line, "deleted file"):
			deleted = true
		case strings.HasPrefix(line, "rename from "):
			renamed = true
			f.OldPath = strings.TrimPrefix(line, "rename from ")
		case strings.HasPrefix(line, "rename to "):
			renamed = true
			f.NewPath = strings.TrimPrefix(line, "rename to ")
		case strings.HasPrefix(line, "rename"):
			renamed = true
		case strings.HasPrefix(line, "copy from "):
			copied = true
			f.OldPath = strings.TrimPrefix(line, "copy from ")
		case strings.HasPrefix(line, "copy to "):
			copied = true
			f.NewPath = strings.TrimPrefix(line, "copy to ")
		case strings.HasPrefix(line, "copy"):
			copied = true
		case strings.HasPrefix(line, "Binary files"), strings.HasPrefix(line, "GIT binary patch"):
			f.Binary = true
		case strings.HasPrefix(line, "--- "):
			if p := strings.TrimPrefix(line, "--- "); p == "/dev/null" {
				added = true
			} else if f.OldPath == "" {
				f.OldPath = stripDiffPrefix(p, "a/")
			}
		case strings.HasPrefix(line, "+++ "):
			if p := strings.TrimPrefix(line, "+++ "); p == "/dev/null" {
				deleted = true
			} else if f.NewPath == "" {
				f.NewPath = stripDiffPrefix(p, "b/")
			}
		}
	}

	if f.NewPath == "" {
		f.NewPath = f.OldPath
	}

	switch {
	case added:
		f.ChangeType = domain.ChangeAdded
		f.OldPath = ""
	case deleted:
		f.ChangeType = domain.ChangeDeleted
	case renamed:
		f.ChangeType = domain.ChangeRenamed
	case copied:
		f.ChangeType = domain.ChangeCopied
	default:
		f.ChangeType = domain.ChangeModified
	}
	return f
}

// inferChangeFromHunks derives additions and deletions of header-less
// files from empty hunk ranges.
func inferChangeFromHunks(f domain.DiffFile) domain.DiffFile {
	if len(f.Hunks) == 0 {
		return f
	}
	allNew, allGone := true, true
	for _, h := range f.Hunks {
		if h.OldStart != 0 || h.OldCount != 0 {
			allNew = false
		}
		if h.NewStart != 0 || h.NewCount != 0 {
			allGone = false
		}
	}
	switch {
	case allNew:
		f.ChangeType = domain.ChangeAdded
		f.OldPath = ""
	case allGone:
		f.ChangeType = domain.ChangeDeleted
	}
	return f
}

func stripDiffPrefix(p, prefix string) string {
	// timestamps of plain diff -u output follow a tab
	if before, _, found := strings.Cut(p, "\t"); found {
		p = before
	}
	return strings.TrimPrefix(strings.TrimSpace(p), prefix)
}

func atoiOr(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

// containsUnifiedDiff reports text that carries a git diff or a bare hunk
func containsUnifiedDiff(text string) bool {
	if strings.Contains(text, "diff --git ") {
		return true
	}
	return strings.HasPrefix(text, "@@ ") || strings.Contains(text, "\n@@ ")
}
