package pipeline

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ccastromar/meetbot/internal/chunk"
	"github.com/ccastromar/meetbot/internal/llm"
	"github.com/ccastromar/meetbot/internal/logx"
	"github.com/ccastromar/meetbot/internal/metrics"
)

const (
	// MinTranscriptLen is the trimmed rune count below which there is
	// nothing worth summarizing.
	MinTranscriptLen = 50
	// LongTranscriptThreshold is the rune count above which transcripts are
	// summarized chunk by chunk.
	LongTranscriptThreshold = 12000
)

type Summarizer struct {
	llm     llm.LLMClient
	summary llm.Prompt
	combine llm.Prompt

	chunkSize    int
	chunkOverlap int
}

func NewSummarizer(c llm.LLMClient, summary, combine llm.Prompt) *Summarizer {
	return &Summarizer{
		llm:          c,
		summary:      summary,
		combine:      combine,
		chunkSize:    chunk.DefaultSize,
		chunkOverlap: chunk.DefaultOverlap,
	}
}

// Summarize returns the structured summary or a canned reply. Short
// transcripts never reach the LLM.
func (s *Summarizer) Summarize(ctx context.Context, transcript string) string {
	if utf8.RuneCountInString(strings.TrimSpace(transcript)) < MinTranscriptLen {
		return MsgTooShort
	}

	if utf8.RuneCountInString(transcript) > LongTranscriptThreshold {
		return attempt(ctx, "Summarizer", MsgLongSummaryFailed, func(ctx context.Context) (string, error) {
			return s.summarizeLong(ctx, transcript)
		})
	}

	return attempt(ctx, "Summarizer", MsgSummaryFailed, func(ctx context.Context) (string, error) {
		return llm.Complete(ctx, s.llm, s.summary, map[string]string{"transcript": transcript})
	})
}

// summarizeLong summarizes every chunk in order, then merges the section
// summaries with one more call. The first failure aborts the whole run.
func (s *Summarizer) summarizeLong(ctx context.Context, transcript string) (string, error) {
	chunks := chunk.Split(transcript, s.chunkSize, s.chunkOverlap)
	logx.Debug("Summarizer", "long transcript: %d chunks", len(chunks))

	sections := make([]string, 0, len(chunks))
	for i, c := range chunks {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		out, err := llm.Complete(ctx, s.llm, s.summary, map[string]string{"transcript": c.Text})
		if err != nil {
			return "", fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}
		metrics.Chunks.Inc(nil)
		sections = append(sections, fmt.Sprintf("Section %d: %s", i+1, out))
	}

	return llm.Complete(ctx, s.llm, s.combine, map[string]string{
		"summaries": strings.Join(sections, "\n\n"),
	})
}
