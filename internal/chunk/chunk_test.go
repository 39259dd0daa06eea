package chunk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reassemble drops the overlap prefix of every chunk after the first.
func reassemble(chunks []Chunk, overlap int) string {
	var b strings.Builder
	for i, c := range chunks {
		r := []rune(c.Text)
		if i > 0 {
			r = r[overlap:]
		}
		b.WriteString(string(r))
	}
	return b.String()
}

func transcript(lines int) string {
	var b strings.Builder
	for i := 0; i < lines; i++ {
		if i%7 == 6 {
			b.WriteString("\n")
		}
		b.WriteString("Alice: we agreed the rollout moves to the second week of the quarter.\n")
	}
	return b.String()
}

func TestSplit_EmptyInput(t *testing.T) {
	chunks := Split("", DefaultSize, DefaultOverlap)
	require.Len(t, chunks, 1)
	assert.Equal(t, "", chunks[0].Text)
	assert.Equal(t, 0, chunks[0].Len())
}

func TestSplit_ShortInputSingleChunk(t *testing.T) {
	text := strings.Repeat("a", DefaultSize)
	chunks := Split(text, DefaultSize, DefaultOverlap)
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0].Text)
}

func TestSplit_Invariants(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		size    int
		overlap int
	}{
		{"no separators", strings.Repeat("x", 15000), DefaultSize, DefaultOverlap},
		{"line separated", transcript(400), DefaultSize, DefaultOverlap},
		{"words", strings.Repeat("word ", 3000), 1000, 100},
		{"multibyte", strings.Repeat("réunion ", 2000), 500, 50},
		{"zero overlap", strings.Repeat("y", 1234), 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := Split(tt.text, tt.size, tt.overlap)
			require.Greater(t, len(chunks), 1)

			for i, c := range chunks {
				assert.Equal(t, i, c.Index)
				assert.LessOrEqual(t, c.Len(), tt.size, "chunk %d too long", i)
				assert.Equal(t, c.Len(), len([]rune(c.Text)))
				if i > 0 {
					prev := chunks[i-1]
					assert.Equal(t, prev.End-tt.overlap, c.Start, "chunk %d overlap", i)
					prevRunes := []rune(prev.Text)
					cur := []rune(c.Text)
					assert.Equal(t, string(prevRunes[len(prevRunes)-tt.overlap:]), string(cur[:tt.overlap]))
				}
			}
			assert.Equal(t, len([]rune(tt.text)), chunks[len(chunks)-1].End)
			assert.Equal(t, tt.text, reassemble(chunks, tt.overlap))
		})
	}
}

func TestSplit_HardCutCount(t *testing.T) {
	// ceil((n-overlap)/(size-overlap)) when nothing to split on
	chunks := Split(strings.Repeat("x", 15000), 4000, 200)
	assert.Len(t, chunks, 4)

	chunks = Split(strings.Repeat("x", 12001), 4000, 200)
	assert.Len(t, chunks, 4)

	chunks = Split(strings.Repeat("x", 7800), 4000, 200)
	assert.Len(t, chunks, 2)
}

func TestSplit_PrefersParagraphBreak(t *testing.T) {
	first := strings.Repeat("a", 700)
	second := strings.Repeat("b", 700)
	text := first + "\n\n" + second

	chunks := Split(text, 1000, 10)
	require.Len(t, chunks, 2)
	assert.True(t, strings.HasSuffix(chunks[0].Text, "\n\n"))
	assert.Equal(t, 702, chunks[0].End)
}

func TestSplit_NormalizesParameters(t *testing.T) {
	chunks := Split(strings.Repeat("z", 9000), 0, -5)
	require.Len(t, chunks, 3)
	assert.Equal(t, DefaultSize, chunks[0].Len())
	assert.Equal(t, DefaultSize, chunks[1].Start)

	chunks = Split(strings.Repeat("z", 30), 10, 10)
	for i := 1; i < len(chunks); i++ {
		assert.Equal(t, chunks[i-1].End-5, chunks[i].Start)
	}
}
