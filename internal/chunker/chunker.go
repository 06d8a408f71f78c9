package chunker

import (
	"strings"
)

const (
	DefaultSize    = 900
	DefaultOverlap = 150
)

// Options controls how text is chunked. Size and Overlap are counted in characters (runes).
type Options struct {
	Size    int
	Overlap int
}

func (o Options) normalized() Options {
	if o.Size <= 0 {
		o.Size = DefaultSize
	}
	if o.Overlap < 0 {
		o.Overlap = 0
	}
	return o
}

// ChunkText splits text into overlapping character windows of at most opts.Size runes.
// Windows are trimmed and empty ones dropped, so the result never holds blank chunks.
// When Overlap >= Size the window advances by a full Size instead of stalling.
func ChunkText(text string, opts Options) []string {
	opts = opts.normalized()
	runes := []rune(strings.ReplaceAll(text, "\r\n", "\n"))

	var chunks []string
	for _, w := range windows(len(runes), opts.Size, opts.Overlap) {
		if c := strings.TrimSpace(string(runes[w.start:w.end])); c != "" {
			chunks = append(chunks, c)
		}
	}
	return chunks
}

type window struct {
	start, end int
}

// windows returns the untrimmed [start, end) spans over a text of n runes.
func windows(n, size, overlap int) []window {
	var out []window
	for start := 0; start < n; {
		end := min(start+size, n)
		out = append(out, window{start: start, end: end})
		next := end - overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return out
}
