package extract

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const threePostingsHTML = `<html><body><main>
<a href="/vacancies/qa-engineer-mobile-1">QA Engineer (Mobile)</a>
<a href="/vacancies/qa-automation-backend-2">QA Automation Engineer (Backend)</a>
<a href="/vacancies/qa-engineer-mobile-3">QA Engineer (Mobile)</a>
</main></body></html>`

func TestExtract_StructuredDeduplicates(t *testing.T) {
	t.Parallel()

	res := Extract([]byte(threePostingsHTML))
	require.Equal(t, StrategyStructured, res.Strategy)
	require.Equal(t, []string{"QA Engineer (Mobile)", "QA Automation Engineer (Backend)"}, res.Titles)
}

func TestExtract_Idempotent(t *testing.T) {
	t.Parallel()

	first := Extract([]byte(threePostingsHTML))
	second := Extract([]byte(threePostingsHTML))
	require.Equal(t, first, second)
}

func TestExtract_EmptyPageIsNotAnError(t *testing.T) {
	t.Parallel()

	res := Extract([]byte(`<html><body><p>nothing to see</p></body></html>`))
	require.Equal(t, StrategyNone, res.Strategy)
	require.Empty(t, res.Titles)
}

func TestExtract_FallsBackToJSONLD(t *testing.T) {
	t.Parallel()

	page := []byte(`<html><head>
<script type="application/ld+json">
{"@context":"https://schema.org","@type":"JobPosting","title":"QA Engineer (Mobile)"}
</script>
<script type="application/ld+json">
[{"@type":"JobPosting","title":"QA Automation Engineer (Backend)"},{"@type":"Organization","name":"Acme"}]
</script>
</head><body><div>rendered client side</div></body></html>`)

	// Primary selector matches nothing here, so the result must equal the
	// fallback tier's own normalized output.
	res := Extract(page)
	require.Equal(t, StrategyJSONLD, res.Strategy)
	require.Equal(t, normalizeTitles(jsonldTitles(page)), res.Titles)
	require.Equal(t, []string{"QA Engineer (Mobile)", "QA Automation Engineer (Backend)"}, res.Titles)
}

func TestExtract_FallbackNotInvokedWhenPrimaryMatches(t *testing.T) {
	t.Parallel()

	// Both structured anchors and JSON-LD data exist; primary wins and the
	// JSON-LD-only title must not leak into the result.
	page := []byte(`<html><head>
<script type="application/ld+json">{"@type":"JobPosting","title":"Ghost Posting"}</script>
</head><body>
<a href="/vacancies/qa-lead">QA Team Lead</a>
</body></html>`)

	res := Extract(page)
	require.Equal(t, StrategyStructured, res.Strategy)
	require.Equal(t, []string{"QA Team Lead"}, res.Titles)
}

func TestExtract_HeuristicRecoversFromBrokenMarkup(t *testing.T) {
	t.Parallel()

	// Anchors nested where the HTML5 tree builder drops them: the DOM-based
	// tiers see nothing, the token scan still recovers the titles.
	page := []byte(`<html><body><select>
<a href="/vacancies/qa-engineer-mobile">QA Engineer (Mobile)</a>
</select></body></html>`)

	res := Extract(page)
	require.Equal(t, StrategyHeuristic, res.Strategy)
	require.Equal(t, normalizeTitles(heuristicTitles(page)), res.Titles)
	require.Equal(t, []string{"QA Engineer (Mobile)"}, res.Titles)
}

func TestNormalizeTitles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{name: "trim dedupe preserve order", in: []string{"A", " A ", "B", "A"}, want: []string{"A", "B"}},
		{name: "drops empties", in: []string{"  ", "", "QA"}, want: []string{"QA"}},
		{name: "case sensitive", in: []string{"qa", "QA"}, want: []string{"qa", "QA"}},
		{name: "all empty yields nil", in: []string{" ", ""}, want: nil},
		{name: "nil input", in: nil, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, normalizeTitles(tt.in))
		})
	}
}

func TestProbableJobLink(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		href string
		text string
		want bool
	}{
		{name: "detail link", href: "/vacancies/qa-engineer", text: "QA Engineer", want: true},
		{name: "section root", href: "/vacancies/", text: "All QA postings", want: false},
		{name: "section root no slash", href: "/vacancies", text: "All QA postings", want: false},
		{name: "filter link", href: "/vacancies/dev/?action=filter", text: "Filter results", want: false},
		{name: "navigation label", href: "/vacancies/dev", text: "Вакансии", want: false},
		{name: "english navigation label", href: "/vacancies/dev", text: "Back", want: false},
		{name: "too short", href: "/vacancies/dev", text: "QA", want: false},
		{name: "query ignored for depth", href: "/vacancies/qa-engineer?ref=list", text: "QA Engineer", want: true},
		{name: "empty text", href: "/vacancies/qa-engineer", text: "  ", want: false},
		{name: "unrelated path", href: "/about/", text: "About the company", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, probableJobLink(tt.href, tt.text))
		})
	}
}

func TestJSONLDTitles_GraphAndJobTitle(t *testing.T) {
	t.Parallel()

	page := []byte(`<html><head><script type="application/ld+json">
{"@graph":[{"@type":"JobPosting","jobTitle":"QA Engineer (Web)"},{"@type":["Thing","JobPosting"],"title":"SDET"}]}
</script></head><body></body></html>`)

	require.Equal(t, []string{"QA Engineer (Web)", "SDET"}, jsonldTitles(page))
}

func TestJSONLDTitles_IgnoresMalformedBlocks(t *testing.T) {
	t.Parallel()

	page := []byte(`<html><head>
<script type="application/ld+json">{not json at all</script>
<script type="application/ld+json">{"@type":"JobPosting","title":"QA Engineer"}</script>
</head><body></body></html>`)

	require.Equal(t, []string{"QA Engineer"}, jsonldTitles(page))
}

func TestHeuristicTitles_NestedMarkupInsideAnchor(t *testing.T) {
	t.Parallel()

	page := []byte(`<a href="/vacancies/qa-1"><div><span>QA</span> <span>Engineer</span></div></a>`)
	require.Equal(t, []string{"QA Engineer"}, heuristicTitles(page))
}

func TestHeuristicTitles_TruncatedPage(t *testing.T) {
	t.Parallel()

	page := []byte(`<a href="/vacancies/qa-1">QA Engineer</a><a href="/vacancies/qa-2">QA Lea`)
	require.Equal(t, []string{"QA Engineer"}, heuristicTitles(page))
}
