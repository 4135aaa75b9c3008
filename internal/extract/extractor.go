// Package extract turns raw listings-page HTML into posting titles.
//
// Extraction runs an ordered chain of independent strategies and keeps the
// first one that yields anything. The target page is third-party and its
// markup drifts without notice; the looser tiers exist so a selector break
// degrades the run to a weaker parse instead of failing it.
package extract

import "strings"

// Strategy names which tier of the chain produced a result.
type Strategy string

// Chain tiers, in the order they are tried.
const (
	StrategyStructured Strategy = "structured"
	StrategyJSONLD     Strategy = "jsonld"
	StrategyHeuristic  Strategy = "heuristic"
	StrategyNone       Strategy = "none"
)

// Result is an ordered sequence of unique posting titles plus the strategy
// that produced them. Zero titles with StrategyNone is a valid outcome, not
// an error.
type Result struct {
	Titles   []string
	Strategy Strategy
}

type strategyFunc func(html []byte) []string

var chain = []struct {
	name Strategy
	fn   strategyFunc
}{
	{StrategyStructured, structuredTitles},
	{StrategyJSONLD, jsonldTitles},
	{StrategyHeuristic, heuristicTitles},
}

// Extract runs the strategy chain over the page body. It is a pure function:
// identical input yields an identical Result.
func Extract(html []byte) Result {
	for _, s := range chain {
		if titles := normalizeTitles(s.fn(html)); len(titles) > 0 {
			return Result{Titles: titles, Strategy: s.name}
		}
	}
	return Result{Strategy: StrategyNone}
}

// normalizeTitles trims each title, drops empties and deduplicates
// case-sensitively while preserving first-seen order.
func normalizeTitles(raw []string) []string {
	if len(raw) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(raw))
	titles := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		titles = append(titles, t)
	}
	if len(titles) == 0 {
		return nil
	}
	return titles
}
