package pipeline

import (
	"context"

	"github.com/ccastromar/meetbot/internal/llm"
	"github.com/ccastromar/meetbot/internal/session"
)

// Answerer answers questions from the full transcript. It also serves
// clarification requests.
type Answerer struct {
	llm    llm.LLMClient
	prompt llm.Prompt
}

func NewAnswerer(c llm.LLMClient, prompt llm.Prompt) *Answerer {
	return &Answerer{llm: c, prompt: prompt}
}

func (a *Answerer) Answer(ctx context.Context, question, transcript string, history []session.Turn) string {
	return attempt(ctx, "QA", MsgAnswerFailed, func(ctx context.Context) (string, error) {
		return llm.Complete(ctx, a.llm, a.prompt, map[string]string{
			"transcript":   transcript,
			"chat_history": recentContext(history, qaHistoryTurns),
			"question":     question,
		})
	})
}
