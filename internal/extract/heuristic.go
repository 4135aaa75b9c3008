package extract

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// heuristicTitles is the last tier: a raw token scan that collects the text
// of anchors pointing under the vacancy path. Unlike the structured tier it
// needs no valid document tree, so it survives markup the DOM parser
// mangles or drops.
func heuristicTitles(body []byte) []string {
	z := html.NewTokenizer(bytes.NewReader(body))

	var (
		titles   []string
		chunks   []string
		href     string
		inAnchor bool
		nesting  int
	)

	for {
		switch z.Next() {
		case html.ErrorToken:
			// Includes EOF; a truncated page yields whatever was collected.
			return titles
		case html.StartTagToken:
			tok := z.Token()
			if tok.Data == "a" {
				if h := attrValue(tok, "href"); strings.Contains(h, vacancyPathMarker) {
					inAnchor = true
					nesting = 1
					href = h
					chunks = chunks[:0]
					continue
				}
			}
			if inAnchor {
				nesting++
			}
		case html.EndTagToken:
			if !inAnchor {
				continue
			}
			nesting--
			if z.Token().Data == "a" && nesting <= 0 {
				text := collapseWhitespace(strings.Join(chunks, " "))
				if probableJobLink(href, text) {
					titles = append(titles, text)
				}
				inAnchor = false
				chunks = chunks[:0]
				href = ""
				nesting = 0
			}
		case html.TextToken:
			if inAnchor {
				chunks = append(chunks, string(z.Text()))
			}
		}
	}
}

func attrValue(tok html.Token, name string) string {
	for _, a := range tok.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}
