package extract

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"

	"github.com/antchfx/htmlquery"
)

// officialCountXPath locates the counter span the site renders next to the
// listings. Brittle on purpose: when the site moves it, the probe just
// reports absence and the title count is used instead.
const officialCountXPath = "/html/body/main/div/div[2]/div/span"

var firstIntegerRe = regexp.MustCompile(`\d+`)

// OfficialCount probes the page for the site's own postings counter. The
// second return is false when the counter is absent or unreadable.
func OfficialCount(body []byte) (int, bool) {
	doc, err := htmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return 0, false
	}
	node := htmlquery.FindOne(doc, officialCountXPath)
	if node == nil {
		return 0, false
	}
	digits := firstIntegerRe.FindString(strings.TrimSpace(htmlquery.InnerText(node)))
	if digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
