package retrieval

import (
	"sort"
	"unicode/utf8"
)

// Scored is a chunk with its similarity to the question.
type Scored struct {
	Index int
	Text  string
	Score float64
}

// Rank scores every chunk against the question and orders them by descending
// cosine similarity. Equal scores keep ascending pool order.
func Rank(question string, chunks []string) []Scored {
	if len(chunks) == 0 {
		return []Scored{}
	}
	docs := make([]string, 0, len(chunks)+1)
	docs = append(docs, chunks...)
	docs = append(docs, question)
	rows := vectorize(docs)
	q := rows[len(chunks)]

	ranked := make([]Scored, len(chunks))
	for i, c := range chunks {
		ranked[i] = Scored{Index: i, Text: c, Score: q.dot(rows[i])}
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Score > ranked[b].Score
	})
	return ranked
}

// SelectScored greedily packs the best of the first 3*topK ranked chunks into
// budget characters. A chunk that does not fit is skipped and the scan goes on.
// Packing stops at topK accepted chunks or once the budget is used up.
func SelectScored(question string, chunks []string, topK, budget int) []Scored {
	selected := []Scored{}
	if len(chunks) == 0 || topK <= 0 {
		return selected
	}
	ranked := Rank(question, chunks)
	limit := min(3*topK, len(ranked))

	used := 0
	for _, cand := range ranked[:limit] {
		if len(selected) >= topK || used >= budget {
			break
		}
		n := utf8.RuneCountInString(cand.Text)
		if used+n > budget {
			continue
		}
		selected = append(selected, cand)
		used += n
	}
	return selected
}

// Select returns the texts chosen by SelectScored in acceptance order.
func Select(question string, chunks []string, topK, budget int) []string {
	scored := SelectScored(question, chunks, topK, budget)
	out := make([]string, len(scored))
	for i, s := range scored {
		out[i] = s.Text
	}
	return out
}
