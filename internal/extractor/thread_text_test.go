package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/user/gbp-leads/internal/entity"
)

var defaultMarkers = []string{"Recommended", "Replies", "Upvotes"}

func TestParseThreadText(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   entity.ThreadFields
		wantOK bool
	}{
		{
			name:   "title snippet and replies",
			raw:    "GBP got suspended\nNeed help\n3 Replies",
			want:   entity.ThreadFields{Title: "GBP got suspended", Snippet: "Need help", ReplyCount: 3},
			wantOK: true,
		},
		{
			name:   "skips chrome lines for snippet",
			raw:    "  Listing disabled  \n\n Recommended Answer \n 12 Upvotes\n Our listing vanished overnight\n1 Reply",
			want:   entity.ThreadFields{Title: "Listing disabled", Snippet: "Our listing vanished overnight", ReplyCount: 1},
			wantOK: true,
		},
		{
			name:   "no snippet and no replies",
			raw:    "Only a title",
			want:   entity.ThreadFields{Title: "Only a title"},
			wantOK: true,
		},
		{
			name:   "reply count is case insensitive",
			raw:    "Appeal rejected\n7 REPLIES",
			want:   entity.ThreadFields{Title: "Appeal rejected", Snippet: "7 REPLIES", ReplyCount: 7},
			wantOK: true,
		},
		{
			name:   "non-breaking space before Replies",
			raw:    "Reinstate please\n4\u00a0Replies",
			want:   entity.ThreadFields{Title: "Reinstate please", ReplyCount: 4},
			wantOK: true,
		},
		{
			name:   "number without Repl token",
			raw:    "Suspended twice\n5 answers",
			want:   entity.ThreadFields{Title: "Suspended twice", Snippet: "5 answers"},
			wantOK: true,
		},
		{
			name:   "whitespace only",
			raw:    " \n\t\n  ",
			wantOK: false,
		},
	}

	parse := NewThreadTextParser(defaultMarkers)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parse(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "short", truncateRunes("short", 150))
	assert.Equal(t, "abc", truncateRunes("abcdef", 3))
	assert.Equal(t, "ééé", truncateRunes("éééé", 3))
	assert.Equal(t, "", truncateRunes("abc", 0))
	assert.Equal(t, "abc", truncateRunes("abc", -1))
}
