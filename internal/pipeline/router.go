package pipeline

import (
	"context"

	"github.com/ccastromar/meetbot/internal/llm"
	"github.com/ccastromar/meetbot/internal/session"
)

// Router asks the LLM which handler should take a message.
type Router struct {
	llm     llm.LLMClient
	prompt  llm.Prompt
	intents string
}

// NewRouter builds a router. intents is the rendered list of intent
// descriptions substituted into {intents}.
func NewRouter(c llm.LLMClient, prompt llm.Prompt, intents string) *Router {
	return &Router{llm: c, prompt: prompt, intents: intents}
}

// Classify never fails: LLM errors resolve to GeneralChat.
func (r *Router) Classify(ctx context.Context, message string, history []session.Turn) Intent {
	return attemptIntent(ctx, "Router", GeneralChat, func(ctx context.Context) (Intent, error) {
		out, err := llm.Complete(ctx, r.llm, r.prompt, map[string]string{
			"message":      message,
			"chat_history": recentContext(history, routerHistoryTurns),
			"intents":      r.intents,
		})
		if err != nil {
			return "", err
		}
		return ParseIntent(out), nil
	})
}
