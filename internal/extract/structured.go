package extract

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// vacancyPathMarker is the URL fragment the target site uses for posting
// detail pages.
const vacancyPathMarker = "/vacancies/"

// Navigation labels the site renders as anchors under the same path prefix.
var anchorTextBlacklist = map[string]struct{}{
	"вакансии":          {},
	"назад":             {},
	"смотреть вакансии": {},
	"vacancies":         {},
	"back":              {},
	"see vacancies":     {},
}

// structuredTitles is the primary strategy: parse the DOM and select the
// anchors the site uses for posting cards, in document order.
func structuredTitles(html []byte) []string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil
	}
	var titles []string
	doc.Find(`a[href*="` + vacancyPathMarker + `"]`).Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		text := collapseWhitespace(sel.Text())
		if probableJobLink(href, text) {
			titles = append(titles, text)
		}
	})
	return titles
}

// probableJobLink filters section roots, filter links and navigation chrome
// out of the anchor set, keeping only links that plausibly point at a single
// posting.
func probableJobLink(href, text string) bool {
	txt := strings.ToLower(strings.TrimSpace(text))
	if txt == "" {
		return false
	}
	if _, ok := anchorTextBlacklist[txt]; ok {
		return false
	}
	if strings.HasSuffix(href, "/vacancies") || strings.HasSuffix(href, "/vacancies/") {
		return false
	}
	if strings.Contains(href, "action=filter") {
		return false
	}
	if len([]rune(txt)) < 5 {
		return false
	}
	// Require at least one path segment after "vacancies": detail pages live
	// below the section root.
	path, _, _ := strings.Cut(href, "?")
	var segments []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	for i, s := range segments {
		if s == "vacancies" {
			return len(segments)-(i+1) >= 1
		}
	}
	return false
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
