// Package search ranks rendered rows against a query.
package search

import (
	"errors"
	"sort"

	"github.com/sahilm/fuzzy"
)

// ErrSelectionCancelled is returned by selectors when the user aborts.
// It is a normal outcome, not a failure.
var ErrSelectionCancelled = errors.New("selection cancelled")

// Match is a candidate line that matched a query.
type Match struct {
	// Index is the position of the line in the input.
	Index int
	Score int

	// MatchedIndexes are byte offsets of matched characters, for highlighting.
	MatchedIndexes []int
}

// Ranker scores lines against a non-empty query. Implementations return only
// the lines that match; order is not significant.
type Ranker interface {
	Score(query string, lines []string) []Match
}

// FuzzyRanker scores with subsequence matching from github.com/sahilm/fuzzy.
type FuzzyRanker struct{}

// Score implements Ranker.
func (FuzzyRanker) Score(query string, lines []string) []Match {
	found := fuzzy.Find(query, lines)
	out := make([]Match, len(found))
	for i, m := range found {
		out[i] = Match{Index: m.Index, Score: m.Score, MatchedIndexes: m.MatchedIndexes}
	}
	return out
}

// DefaultRanker is the ranker used by Rank.
var DefaultRanker Ranker = FuzzyRanker{}

// Rank returns the indexes of lines that match query using DefaultRanker.
func Rank(query string, lines []string) []int {
	return Indexes(RankWith(DefaultRanker, query, lines))
}

// RankWith orders the matches of r for query. An empty query matches every
// line in original order. Otherwise non-matching lines are excluded and the
// rest are sorted by descending score with ties kept in original order.
func RankWith(r Ranker, query string, lines []string) []Match {
	if query == "" {
		all := make([]Match, len(lines))
		for i := range lines {
			all[i] = Match{Index: i}
		}
		return all
	}

	matches := r.Score(query, lines)
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Index < matches[j].Index
	})
	return matches
}

// Indexes extracts the line indexes of matches.
func Indexes(matches []Match) []int {
	out := make([]int, len(matches))
	for i, m := range matches {
		out[i] = m.Index
	}
	return out
}
