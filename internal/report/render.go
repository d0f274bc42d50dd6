package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/user/gbp-leads/internal/entity"
)

// FallbackSourceURL is linked from the footer when there are no leads.
const FallbackSourceURL = "https://support.google.com/business/threads"

const (
	timestampLayout = "1/2/2006, 3:04:05 PM"
	dateLayout      = "1/2/2006"
)

//go:embed templates/leads.html.tmpl
var templateFS embed.FS

var leadsTemplate = template.Must(
	template.New("leads.html.tmpl").
		Funcs(template.FuncMap{
			"inc":   func(i int) int { return i + 1 },
			"comma": func(n int) string { return humanize.Comma(int64(n)) },
		}).
		ParseFS(templateFS, "templates/leads.html.tmpl"),
)

type view struct {
	GeneratedAt string
	Leads       []entity.Lead
	SourceURL   string
}

// Render builds the HTML report body. Leads are numbered from 1 in the
// order given.
func Render(leads []entity.Lead, generatedAt time.Time) (string, error) {
	v := view{
		GeneratedAt: generatedAt.Format(timestampLayout),
		Leads:       leads,
		SourceURL:   FallbackSourceURL,
	}
	if len(leads) > 0 {
		v.SourceURL = leads[0].URL
	}

	var buf bytes.Buffer
	if err := leadsTemplate.Execute(&buf, v); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return buf.String(), nil
}

// Subject is the mail subject for a report sent at t.
func Subject(t time.Time) string {
	return "🎯 GBP Suspension Leads - " + t.Format(dateLayout)
}
