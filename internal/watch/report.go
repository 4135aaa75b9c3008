package watch

import (
	"fmt"
	"html"
	"strings"
)

// ConsoleReport renders the run for stdout, zero case included.
func ConsoleReport(o Outcome) string {
	if o.Count == 0 {
		return "No postings found"
	}
	lines := make([]string, 0, len(o.Titles)+1)
	lines = append(lines, fmt.Sprintf("Postings found: %d", o.Count))
	lines = append(lines, o.Titles...)
	return strings.Join(lines, "\n")
}

// Summary renders the Telegram message. Titles come from a third-party page
// and are escaped before being wrapped in HTML parse mode.
func Summary(o Outcome, pageURL string) string {
	lines := []string{"<b>QA postings watch</b>"}
	if o.Count == 0 {
		lines = append(lines, "No postings found")
	} else {
		lines = append(lines, fmt.Sprintf("Postings found: <b>%d</b>", o.Count))
		for _, t := range o.Titles {
			lines = append(lines, html.EscapeString(t))
		}
	}
	lines = append(lines, "Source: "+html.EscapeString(pageURL))
	return strings.Join(lines, "\n")
}
