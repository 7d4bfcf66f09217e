// Package enforce makes sure required ("hard") tags show up in generated lines.
//
// Enforcement is best effort: tags are spliced in after the first anchor word
// found in a line, and a tag with no anchor in a line is skipped for that line.
package enforce

import (
	"regexp"
	"strings"
)

const (
	// MaxHardTags caps how many hard tags are considered per batch.
	MaxHardTags = 3

	// DefaultRequired is the number of lines that must carry MinHitsPerLine tags.
	DefaultRequired = 3

	// MinHitsPerLine is the number of hard tags a line needs to count as covered.
	MinHitsPerLine = 2

	// MaxInsertsPerLine bounds how many missing tags are injected into one line.
	MaxInsertsPerLine = 2
)

// Anchors are the insertion points tried in order: verb forms, then
// conjunctions, then prepositions. A tag is inserted right after the first match.
var Anchors = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(is|are|was|were|has|have|had|does|did|gets|got|goes|went|says|said|thinks|thought|tries|tried|wants|wanted|makes|made|takes|took)\b`),
	regexp.MustCompile(`(?i)\b\w+(ing|ed)\b`),
	regexp.MustCompile(`(?i)\b(and|but|or|so|because|when|while|until|after|before)\b`),
	regexp.MustCompile(`(?i)\b(with|for|at|on|in|to|from|like|about|of)\b`),
}

// EnsureHardTags returns lines unchanged when at least required lines already
// contain MinHitsPerLine of the (capped) hard tags. Otherwise every line is
// rewritten with up to MaxInsertsPerLine missing tags injected.
// The result always has the same length as lines.
func EnsureHardTags(lines, hard []string, required int) []string {
	if required <= 0 {
		required = DefaultRequired
	}

	capped := capTags(hard)
	if len(capped) == 0 {
		return lines
	}

	covered := 0
	for _, hits := range Coverage(lines, capped) {
		if hits >= MinHitsPerLine {
			covered++
		}
	}
	if covered >= required {
		return lines
	}

	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = injectMissing(line, capped)
	}
	return out
}

// Coverage returns, per line, how many of the first MaxHardTags hard tags
// appear as case-insensitive substrings.
func Coverage(lines, hard []string) []int {
	capped := capTags(hard)
	counts := make([]int, len(lines))
	for i, line := range lines {
		lower := strings.ToLower(line)
		for _, tag := range capped {
			if strings.Contains(lower, strings.ToLower(tag)) {
				counts[i]++
			}
		}
	}
	return counts
}

// capTags drops blank tags and keeps the first MaxHardTags.
func capTags(hard []string) []string {
	capped := make([]string, 0, MaxHardTags)
	for _, tag := range hard {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		capped = append(capped, tag)
		if len(capped) == MaxHardTags {
			break
		}
	}
	return capped
}

// injectMissing splices up to MaxInsertsPerLine absent tags into line.
func injectMissing(line string, tags []string) string {
	lower := strings.ToLower(line)
	missing := make([]string, 0, len(tags))
	for _, tag := range tags {
		if !strings.Contains(lower, strings.ToLower(tag)) {
			missing = append(missing, tag)
		}
	}
	if len(missing) > MaxInsertsPerLine {
		missing = missing[:MaxInsertsPerLine]
	}

	for _, tag := range missing {
		if pos := anchorEnd(line); pos >= 0 {
			line = line[:pos] + " " + tag + line[pos:]
		}
	}
	return line
}

// anchorEnd returns the byte offset just past the first anchor match, or -1.
func anchorEnd(line string) int {
	for _, re := range Anchors {
		if loc := re.FindStringIndex(line); loc != nil {
			return loc[1]
		}
	}
	return -1
}
