package domain

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	maxNoteContinuation = 2
	maxContinuationLen  = 100

	// Notes must be strictly longer than minNoteLen and shorter than maxNoteLen.
	minNoteLen = 10
	maxNoteLen = 500
)

// noteKeywords flag a line as a deficiency or note when found in its
// lowercased form.
var noteKeywords = []string{
	"deficiencie",
	"replace",
	"broken",
	"fix",
	"repair",
	"not working",
}

var (
	// deviceCodeStartRe matches rows beginning with a one-letter device code,
	// which end a note's continuation.
	deviceCodeStartRe = regexp.MustCompile(`^[A-Z]\s`)

	noteLabelRe = regexp.MustCompile(`(?i)^(?:notes?|deficienc(?:y|ies))\b:?\s*`)
)

func isNoteTrigger(line string) bool {
	lower := strings.ToLower(line)
	for _, kw := range noteKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return strings.Contains(lower, "note") && strings.Contains(lower, ":")
}

func isNoteContinuation(line string) bool {
	return line != "" &&
		!strings.Contains(line, "---") &&
		!strings.Contains(line, "ANNUAL") &&
		!deviceCodeStartRe.MatchString(line) &&
		utf8.RuneCountInString(line) < maxContinuationLen
}

// extractNote builds a note starting at lines[i], folding in up to two
// continuation lines. lines must already be trimmed.
func extractNote(lines []string, i int) (string, bool) {
	if !isNoteTrigger(lines[i]) {
		return "", false
	}

	var b strings.Builder
	b.WriteString(lines[i])
	for j := i + 1; j < len(lines) && j <= i+maxNoteContinuation; j++ {
		if !isNoteContinuation(lines[j]) {
			break
		}
		b.WriteByte(' ')
		b.WriteString(lines[j])
	}

	note := strings.TrimSpace(noteLabelRe.ReplaceAllString(b.String(), ""))
	n := utf8.RuneCountInString(note)
	if n <= minNoteLen || n >= maxNoteLen {
		return "", false
	}
	return note, true
}
