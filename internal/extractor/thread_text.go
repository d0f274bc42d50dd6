package extractor

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/user/gbp-leads/internal/entity"
)

// replyPattern matches "<N> Reply" / "<N> Replies" in any case. Whitespace
// between the number and the word may include non-breaking spaces, which the
// forum uses in its counters.
var replyPattern = regexp.MustCompile(`(?i)(\d+)[\s\v\p{Zs}\x{2028}\x{2029}\x{FEFF}]*Repl`)

// ThreadTextParser turns the visible text of one thread anchor into fields.
// ok is false when the text has no usable lines.
type ThreadTextParser func(raw string) (fields entity.ThreadFields, ok bool)

// NewThreadTextParser returns a parser that skips snippet candidates
// containing any of chromeMarkers (e.g. "Replies", "Upvotes").
func NewThreadTextParser(chromeMarkers []string) ThreadTextParser {
	markers := append([]string(nil), chromeMarkers...)
	return func(raw string) (entity.ThreadFields, bool) {
		return parseThreadText(raw, markers)
	}
}

func parseThreadText(raw string, markers []string) (entity.ThreadFields, bool) {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return entity.ThreadFields{}, false
	}

	fields := entity.ThreadFields{Title: lines[0]}
	for _, line := range lines[1:] {
		if !containsAny(line, markers) {
			fields.Snippet = line
			break
		}
	}

	if m := replyPattern.FindStringSubmatch(raw); m != nil {
		// Counts too large for an int are treated as absent.
		if n, err := strconv.Atoi(m[1]); err == nil {
			fields.ReplyCount = n
		}
	}
	return fields, true
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// truncateRunes cuts s to at most limit characters. No ellipsis is added.
func truncateRunes(s string, limit int) string {
	if limit < 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
