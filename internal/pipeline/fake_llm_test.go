package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/ccastromar/meetbot/internal/llm"
)

var errLLMDown = errors.New("llm down")

// Test prompts tag each rendered prompt with its name so the fake can
// script replies per stage.
var testPrompts = Prompts{
	Router:      llm.Prompt{Name: "router", Template: "ROUTER\nmsg={message}\nhist={chat_history}\nintents={intents}", Temperature: 0.1},
	Summary:     llm.Prompt{Name: "summary", Template: "SUMMARY\n{transcript}", Temperature: 0.1},
	Combine:     llm.Prompt{Name: "combine", Template: "COMBINE\n{summaries}", Temperature: 0.1},
	QA:          llm.Prompt{Name: "qa", Template: "QA\nq={question}\nhist={chat_history}\ntranscript={transcript}", Temperature: 0.1},
	GeneralChat: llm.Prompt{Name: "general_chat", Template: "CHAT\nmsg={message}\nhist={chat_history}\ntranscript={transcript}", Temperature: 0.1},
}

// fakeLLM replies per prompt kind and records every prompt it receives.
type fakeLLM struct {
	mu      sync.Mutex
	prompts []string
	replies map[string]string // keyed by the first line of the prompt
	fail    map[string]bool
	panics  bool
	summary func(prompt string) string
}

func newFakeLLM() *fakeLLM {
	return &fakeLLM{replies: map[string]string{}, fail: map[string]bool{}}
}

func (f *fakeLLM) Ping(context.Context) error { return nil }

func (f *fakeLLM) Chat(_ context.Context, prompt string, _ float64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)

	if f.panics {
		panic("client exploded")
	}
	kind, _, _ := strings.Cut(prompt, "\n")
	if f.fail[kind] || f.fail["*"] {
		return "", errLLMDown
	}
	if kind == "SUMMARY" && f.summary != nil {
		return f.summary(prompt), nil
	}
	return f.replies[kind], nil
}

func (f *fakeLLM) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func (f *fakeLLM) promptsOf(kind string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, p := range f.prompts {
		if strings.HasPrefix(p, kind+"\n") {
			out = append(out, p)
		}
	}
	return out
}

type recordedEvent struct {
	session, component, kind, msg string
}

type memRecorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *memRecorder) AddEvent(sessionID, component, kind, msg, _ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{sessionID, component, kind, msg})
}
