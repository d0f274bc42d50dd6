package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/gbp-leads/internal/entity"
)

var generated = time.Date(2026, time.March, 7, 14, 5, 9, 0, time.UTC)

func TestRender_Leads(t *testing.T) {
	leads := []entity.Lead{
		{Title: "GBP got suspended", Content: "Need help", ReplyCount: 0, URL: "https://support.google.com/business/thread/a"},
		{Title: "Appeal denied", Content: "Second time", ReplyCount: 1200, URL: "https://support.google.com/business/thread/b"},
	}

	out, err := Render(leads, generated)
	require.NoError(t, err)

	assert.Contains(t, out, "🎯 GBP SUSPENSION LEADS")
	assert.Contains(t, out, "Generated: 3/7/2026, 2:05:09 PM")
	assert.Contains(t, out, "LEAD #1")
	assert.Contains(t, out, "LEAD #2")
	assert.NotContains(t, out, "LEAD #3")
	assert.Less(t, strings.Index(out, "GBP got suspended"), strings.Index(out, "Appeal denied"))
	assert.Contains(t, out, `href="https://support.google.com/business/thread/a"`)
	assert.Contains(t, out, "Need help")
	assert.Contains(t, out, "1,200")
	assert.Contains(t, out, `<a href="https://support.google.com/business/thread/a" style="color: #ffaa00; text-decoration: none;">Google Business Support</a>`)
}

func TestRender_EscapesThreadText(t *testing.T) {
	leads := []entity.Lead{
		{Title: `<script>alert(1)</script>`, Content: "a & b", URL: "https://support.google.com/business/thread/x"},
	}

	out, err := Render(leads, generated)
	require.NoError(t, err)
	assert.NotContains(t, out, "<script>alert(1)</script>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, "a &amp; b")
}

func TestRender_EmptyUsesFallbackSource(t *testing.T) {
	out, err := Render(nil, generated)
	require.NoError(t, err)
	assert.Contains(t, out, `href="`+FallbackSourceURL+`"`)
	assert.NotContains(t, out, "LEAD #")
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "🎯 GBP Suspension Leads - 3/7/2026", Subject(generated))
}
