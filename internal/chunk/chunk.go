// Package chunk splits long transcripts into overlapping, bounded segments so
// that no single LLM prompt has to carry the whole text.
package chunk

const (
	// DefaultSize is the maximum number of runes per chunk.
	DefaultSize = 4000
	// DefaultOverlap is the number of runes shared by neighbouring chunks.
	DefaultOverlap = 200
)

// Chunk is a contiguous rune range [Start, End) of the source text.
type Chunk struct {
	Index int
	Start int
	End   int
	Text  string
}

// Len returns the chunk length in runes.
func (c Chunk) Len() int { return c.End - c.Start }

// separators are tried in order when picking a split point.
var separators = [][]rune{
	[]rune("\n\n"),
	[]rune("\n"),
	[]rune(" "),
}

// Split cuts text into chunks of at most size runes where each chunk after
// the first starts exactly overlap runes before the end of the previous one.
// Split points prefer a paragraph break, then a line break, then a space,
// and fall back to a hard cut at size runes.
//
// Empty input yields a single empty chunk.
func Split(text string, size, overlap int) []Chunk {
	size, overlap = normalize(size, overlap)
	runes := []rune(text)
	n := len(runes)

	if n <= size {
		return []Chunk{{Index: 0, Start: 0, End: n, Text: text}}
	}

	var chunks []Chunk
	start := 0
	for {
		end := start + size
		if end >= n {
			chunks = append(chunks, newChunk(runes, len(chunks), start, n))
			break
		}

		// Only look for separators in the back half of the window and past
		// the overlap, so every chunk makes progress and stays reasonably full.
		lo := start + overlap + 1
		if half := start + size/2; half > lo {
			lo = half
		}
		end = splitPoint(runes, lo, end)

		chunks = append(chunks, newChunk(runes, len(chunks), start, end))
		start = end - overlap
	}
	return chunks
}

func newChunk(runes []rune, idx, start, end int) Chunk {
	return Chunk{Index: idx, Start: start, End: end, Text: string(runes[start:end])}
}

// splitPoint returns the exclusive end of a chunk within (lo, hi]. The
// separator itself stays with the earlier chunk.
func splitPoint(runes []rune, lo, hi int) int {
	for _, sep := range separators {
		for i := hi - len(sep); i >= lo; i-- {
			if hasPrefixAt(runes, i, sep) {
				return i + len(sep)
			}
		}
	}
	return hi
}

func hasPrefixAt(runes []rune, i int, sep []rune) bool {
	if i+len(sep) > len(runes) {
		return false
	}
	for j, r := range sep {
		if runes[i+j] != r {
			return false
		}
	}
	return true
}

func normalize(size, overlap int) (int, int) {
	if size <= 0 {
		size = DefaultSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 2
	}
	return size, overlap
}
