package models

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const (
	UntitledCase      = "Untitled Case"
	opinionSummaryMax = 300
)

// NormalizedOpinion is the display card built from a heterogeneous upstream opinion record
type NormalizedOpinion struct {
	Title         string   `json:"title"`
	Court         string   `json:"court,omitempty"`
	Date          string   `json:"date,omitempty"`
	Summary       string   `json:"summary,omitempty"`
	URL           string   `json:"url,omitempty"`
	OpinionsCited []string `json:"opinions_cited,omitempty"`
}

// NormalizeOpinion applies the field fallback chains used by both search backends:
// title = case_name | title | cluster.case_name, court = court | court_name | cluster.court,
// date = date_filed | date | decision_date, summary = plain_text (or stripped html) | summary | headnote,
// url = download_url | absolute_url | url | local_path.
func NormalizeOpinion(raw map[string]interface{}) NormalizedOpinion {
	cluster, _ := raw["cluster"].(map[string]interface{})

	n := NormalizedOpinion{
		Title: firstString(raw, "case_name", "title"),
		Court: firstString(raw, "court", "court_name"),
		Date:  firstString(raw, "date_filed", "date", "decision_date"),
		URL:   firstString(raw, "download_url", "absolute_url", "url", "local_path"),
	}

	if n.Title == "" {
		n.Title = firstString(cluster, "case_name", "case_name_full")
	}
	if n.Title == "" {
		n.Title = UntitledCase
	}
	if n.Court == "" {
		n.Court = firstString(cluster, "court", "court_id")
	}
	if n.Date == "" {
		n.Date = firstString(cluster, "date_filed")
	}

	if text := firstString(raw, "plain_text"); text != "" {
		n.Summary = truncateRunes(collapseWhitespace(text), opinionSummaryMax)
	} else if html := firstString(raw, "html", "html_with_citations"); html != "" {
		n.Summary = truncateRunes(HTMLToText(html), opinionSummaryMax)
	}
	if n.Summary == "" {
		n.Summary = firstString(raw, "summary", "snippet", "headnote")
	}

	if cited, ok := raw["opinions_cited"].([]interface{}); ok {
		for _, c := range cited {
			if s, ok := c.(string); ok && s != "" {
				n.OpinionsCited = append(n.OpinionsCited, s)
			}
		}
	}

	return n
}

// HTMLToText strips markup from an opinion body
func HTMLToText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	doc.Find("script, style").Remove()
	return collapseWhitespace(doc.Text())
}

func firstString(m map[string]interface{}, keys ...string) string {
	if m == nil {
		return ""
	}
	for _, key := range keys {
		if s, ok := m[key].(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	return ""
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
