package extract

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// jsonldTitles is the second tier: JobPosting structured data embedded in
// ld+json script blocks. It survives visual redesigns that break the anchor
// selector as long as the site keeps publishing structured data.
func jsonldTitles(html []byte) []string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil
	}
	var titles []string
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, sel *goquery.Selection) {
		var payload any
		if err := json.Unmarshal([]byte(strings.TrimSpace(sel.Text())), &payload); err != nil {
			return
		}
		collectJobTitles(payload, &titles)
	})
	return titles
}

// collectJobTitles walks a decoded ld+json payload, including arrays and
// @graph nesting, picking up titles from job-posting shaped nodes.
func collectJobTitles(payload any, titles *[]string) {
	switch node := payload.(type) {
	case []any:
		for _, item := range node {
			collectJobTitles(item, titles)
		}
	case map[string]any:
		if isJobPostingType(node["@type"]) {
			if t := titleOf(node); t != "" {
				*titles = append(*titles, t)
			}
		}
		if graph, ok := node["@graph"].([]any); ok {
			for _, item := range graph {
				collectJobTitles(item, titles)
			}
		}
	}
}

// isJobPostingType accepts the loose spellings seen in the wild; not every
// publisher emits a clean "JobPosting".
func isJobPostingType(t any) bool {
	switch v := t.(type) {
	case string:
		return looksLikeJobType(v)
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && looksLikeJobType(s) {
				return true
			}
		}
	}
	return false
}

func looksLikeJobType(s string) bool {
	s = strings.ToLower(s)
	return strings.Contains(s, "jobposting") || strings.Contains(s, "job") || strings.Contains(s, "vacancy")
}

func titleOf(node map[string]any) string {
	if t, ok := node["jobTitle"].(string); ok && strings.TrimSpace(t) != "" {
		return strings.TrimSpace(t)
	}
	if t, ok := node["title"].(string); ok && strings.TrimSpace(t) != "" {
		return strings.TrimSpace(t)
	}
	return ""
}
