package pipeline

import (
	"context"

	"github.com/ccastromar/meetbot/internal/llm"
	"github.com/ccastromar/meetbot/internal/session"
)

// Chatter handles small talk. It only sees the head of the transcript.
type Chatter struct {
	llm    llm.LLMClient
	prompt llm.Prompt
}

func NewChatter(c llm.LLMClient, prompt llm.Prompt) *Chatter {
	return &Chatter{llm: c, prompt: prompt}
}

func (c *Chatter) Reply(ctx context.Context, message, transcript string, history []session.Turn) string {
	return attempt(ctx, "Chat", MsgChatFailed, func(ctx context.Context) (string, error) {
		return llm.Complete(ctx, c.llm, c.prompt, map[string]string{
			"transcript":   truncate(transcript, chatTranscriptPreview),
			"chat_history": recentContext(history, chatHistoryTurns),
			"message":      message,
		})
	})
}
