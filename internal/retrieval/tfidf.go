package retrieval

import (
	"math"
	"regexp"
	"strings"
)

// tokenPattern matches runs of two or more word characters. Combining marks
// count as word characters so decomposed accents stay inside their token.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{M}\p{N}_]{2,}`)

// sparseVector maps vocabulary index to weight.
type sparseVector map[int]float64

func (v sparseVector) dot(o sparseVector) float64 {
	if len(o) < len(v) {
		v, o = o, v
	}
	var sum float64
	for idx, w := range v {
		sum += w * o[idx]
	}
	return sum
}

func tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, t := range raw {
		if _, stop := englishStopwords[t]; stop {
			continue
		}
		out = append(out, t)
	}
	return out
}

// vectorize fits a TF-IDF model over docs and returns one L2-normalised row per doc.
// Weights are raw term counts scaled by the smoothed IDF ln((1+n)/(1+df))+1.
// A doc without vocabulary terms gets an empty row.
func vectorize(docs []string) []sparseVector {
	vocab := make(map[string]int)
	counts := make([]map[int]int, len(docs))
	df := make(map[int]int)

	for i, doc := range docs {
		tf := make(map[int]int)
		for _, tok := range tokenize(doc) {
			idx, ok := vocab[tok]
			if !ok {
				idx = len(vocab)
				vocab[tok] = idx
			}
			tf[idx]++
		}
		for idx := range tf {
			df[idx]++
		}
		counts[i] = tf
	}

	n := float64(len(docs))
	idf := make([]float64, len(vocab))
	for idx := range idf {
		idf[idx] = math.Log((1+n)/(1+float64(df[idx]))) + 1
	}

	rows := make([]sparseVector, len(docs))
	for i, tf := range counts {
		row := make(sparseVector, len(tf))
		var norm float64
		for idx, c := range tf {
			w := float64(c) * idf[idx]
			row[idx] = w
			norm += w * w
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for idx := range row {
				row[idx] /= norm
			}
		}
		rows[i] = row
	}
	return rows
}
