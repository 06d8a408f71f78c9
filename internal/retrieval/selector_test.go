package retrieval

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doc-assistant/internal/chunker"
)

func TestSelectEmptyPool(t *testing.T) {
	for _, q := range []string{"", "anything at all", "apples"} {
		got := Select(q, nil, 5, 3500)
		require.NotNil(t, got)
		assert.Empty(t, got)
	}
}

func TestRankRelevance(t *testing.T) {
	chunks := []string{"apples and oranges", "quantum mechanics", "apples grow on trees"}

	ranked := Rank("Tell me about apples", chunks)
	require.Len(t, ranked, 3)

	assert.Equal(t, 1, ranked[2].Index, "quantum chunk should rank last")
	assert.Zero(t, ranked[2].Score)
	assert.Greater(t, ranked[0].Score, 0.0)
	assert.Greater(t, ranked[1].Score, 0.0)

	got := Select("Tell me about apples", chunks, 2, 3500)
	assert.ElementsMatch(t, []string{"apples and oranges", "apples grow on trees"}, got)
}

func TestRankTiesKeepPoolOrder(t *testing.T) {
	chunks := []string{"alpha beta", "gamma delta", "epsilon zeta", "eta theta"}

	ranked := Rank("no shared vocabulary", chunks)
	for i, r := range ranked {
		assert.Equal(t, i, r.Index)
		assert.Zero(t, r.Score)
	}
}

func TestSelectSkipsOversizedCandidate(t *testing.T) {
	big := "apples " + strings.Repeat("x", 100)
	chunks := []string{big, "apples are red", "apples are green"}

	got := Select("apples", chunks, 2, 40)

	assert.Equal(t, []string{"apples are red", "apples are green"}, got)
}

func TestSelectStopsWhenBudgetUsed(t *testing.T) {
	chunks := []string{"aaaa bbbb", "aaaa cccc", "aaaa dddd"}

	got := Select("aaaa", chunks, 3, 9)

	assert.Equal(t, []string{"aaaa bbbb"}, got)
}

func TestSelectLookaheadIsBounded(t *testing.T) {
	// Only the first 3*topK ranked candidates are considered.
	chunks := []string{
		"apples " + strings.Repeat("a", 50),
		"apples " + strings.Repeat("b", 50),
		"apples " + strings.Repeat("c", 50),
		"pears",
	}

	got := Select("apples", chunks, 1, 10)

	assert.Empty(t, got)
}

func TestSelectInvariants(t *testing.T) {
	var chunks []string
	for i := 0; i < 40; i++ {
		chunks = append(chunks, fmt.Sprintf("document %d talks about topic%d and shared words %s", i, i%7, strings.Repeat("z", i*10)))
	}

	tests := []struct {
		topK   int
		budget int
	}{
		{1, 100}, {3, 200}, {5, 3500}, {10, 500}, {5, 0}, {0, 3500},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("topK=%d/budget=%d", tt.topK, tt.budget), func(t *testing.T) {
			got := Select("topic3 shared words", chunks, tt.topK, tt.budget)
			used := 0
			for _, c := range got {
				used += utf8.RuneCountInString(c)
			}
			assert.LessOrEqual(t, used, tt.budget)
			assert.LessOrEqual(t, len(got), max(tt.topK, 0))
		})
	}
}

func TestSelectScoredCarriesScores(t *testing.T) {
	got := SelectScored("apples", []string{"quantum mechanics", "apples grow on trees"}, 2, 3500)

	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Index)
	assert.Greater(t, got[0].Score, got[1].Score)
}

func TestSelectEndToEndZeroOverlapQuestion(t *testing.T) {
	chunks := chunker.ChunkText(strings.Repeat("A", 2000), chunker.Options{Size: 900, Overlap: 150})
	require.Len(t, chunks, 4)

	got := Select("What is the refund policy?", chunks, 5, 3500)

	used := 0
	for _, c := range got {
		used += utf8.RuneCountInString(c)
	}
	assert.NotEmpty(t, got)
	assert.LessOrEqual(t, used, 3500)
	assert.LessOrEqual(t, len(got), 5)
	// All scores tie at zero, so pool order decides: 900+900+500 fit, then 150 fits (2450).
	assert.Equal(t, chunks, got)
}
