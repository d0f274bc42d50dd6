package extractor

import (
	"cmp"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/user/gbp-leads/internal/entity"
)

// Options configures an Extractor. Zero values fall back to the defaults
// used for the Google Business support forum.
type Options struct {
	Origin       string
	ThreadPath   string
	Keywords     []string
	MaxLeads     int
	SnippetLimit int
	Parser       ThreadTextParser
}

// Result is the outcome of one extraction pass.
type Result struct {
	Anchors    int // thread anchors after dedup
	Candidates int // anchors with usable text
	Matched    int // candidates containing a keyword, before truncation
	Leads      []entity.Lead
}

// Extractor finds suspension-related threads in a listing page.
type Extractor struct {
	origin       string
	threadPath   string
	keywords     []string
	maxLeads     int
	snippetLimit int
	parse        ThreadTextParser
}

func New(opts Options) *Extractor {
	e := &Extractor{
		origin:       opts.Origin,
		threadPath:   opts.ThreadPath,
		maxLeads:     opts.MaxLeads,
		snippetLimit: opts.SnippetLimit,
		parse:        opts.Parser,
	}
	if e.origin == "" {
		e.origin = "https://support.google.com"
	}
	if e.threadPath == "" {
		e.threadPath = "/business/thread/"
	}
	if e.maxLeads == 0 {
		e.maxLeads = 3
	}
	if e.snippetLimit == 0 {
		e.snippetLimit = 150
	}
	if e.parse == nil {
		e.parse = NewThreadTextParser([]string{"Recommended", "Replies", "Upvotes"})
	}
	for _, kw := range opts.Keywords {
		e.keywords = append(e.keywords, strings.ToLower(kw))
	}
	return e
}

// Extract parses htmlContent and returns at most maxLeads leads, ordered by
// ascending reply count. Markup without thread anchors yields an empty result.
func (e *Extractor) Extract(htmlContent string) (*Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, err
	}

	res := &Result{Leads: []entity.Lead{}}
	seen := make(map[string]struct{})

	doc.Find("a[href]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		return strings.Contains(href, e.threadPath)
	}).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if _, dup := seen[href]; dup {
			return
		}
		seen[href] = struct{}{}
		res.Anchors++

		fields, ok := e.parse(s.Text())
		if !ok {
			return
		}
		res.Candidates++

		if !e.matches(fields) {
			return
		}
		res.Leads = append(res.Leads, entity.Lead{
			Title:      fields.Title,
			Content:    truncateRunes(fields.Snippet, e.snippetLimit),
			ReplyCount: fields.ReplyCount,
			URL:        e.origin + href,
		})
	})

	res.Matched = len(res.Leads)
	res.Leads = Rank(res.Leads, e.maxLeads)
	return res, nil
}

func (e *Extractor) matches(f entity.ThreadFields) bool {
	text := strings.ToLower(f.Title + " " + f.Snippet)
	return containsAny(text, e.keywords)
}

// Rank sorts leads by ascending reply count, keeping document order on ties,
// and returns the first limit entries.
func Rank(leads []entity.Lead, limit int) []entity.Lead {
	slices.SortStableFunc(leads, func(a, b entity.Lead) int {
		return cmp.Compare(a.ReplyCount, b.ReplyCount)
	})
	if len(leads) > limit {
		leads = leads[:limit]
	}
	return leads
}
