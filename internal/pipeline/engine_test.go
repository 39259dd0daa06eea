package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccastromar/meetbot/internal/chunk"
	"github.com/ccastromar/meetbot/internal/metrics"
	"github.com/ccastromar/meetbot/internal/session"
)

func newSession(transcript string) *session.Session {
	s := session.New("sess-1", transcript)
	return s
}

func TestProcess_NoTranscript(t *testing.T) {
	f := newFakeLLM()
	e := NewEngine(f, testPrompts, "")

	assert.Equal(t, MsgNoTranscript, e.Process(context.Background(), "summarize", newSession("")))
	assert.Equal(t, MsgNoTranscript, e.Process(context.Background(), "summarize", nil))
	assert.Equal(t, 0, f.calls())
}

func TestProcess_Dispatch(t *testing.T) {
	tests := []struct {
		route string
		want  string
		kind  string
	}{
		{"summarize", "the summary", "SUMMARY"},
		{"question_answer", "the answer", "QA"},
		{"clarification", "the answer", "QA"},
		{"general_chat", "small talk", "CHAT"},
		{"banana", "small talk", "CHAT"},
	}
	for _, tt := range tests {
		t.Run(tt.route, func(t *testing.T) {
			f := newFakeLLM()
			f.replies["ROUTER"] = tt.route
			f.replies["SUMMARY"] = "the summary"
			f.replies["QA"] = "the answer"
			f.replies["CHAT"] = "small talk"
			e := NewEngine(f, testPrompts, "")

			sess := newSession(strings.Repeat("Alice: let's ship on friday. ", 20))
			assert.Equal(t, tt.want, e.Process(context.Background(), "hello", sess))
			assert.Equal(t, 2, f.calls())
			assert.Len(t, f.promptsOf(tt.kind), 1)
		})
	}
}

func TestProcess_LongSummaryExample(t *testing.T) {
	f := newFakeLLM()
	f.replies["ROUTER"] = "summarize"
	f.replies["SUMMARY"] = "section summary"
	f.replies["COMBINE"] = "1. Topics 2. Decisions 3. Action Items 4. Participants 5. Outcome"
	e := NewEngine(f, testPrompts, "")

	tr := strings.Repeat("x", 15000)
	n := len(chunk.Split(tr, chunk.DefaultSize, chunk.DefaultOverlap))
	require.GreaterOrEqual(t, n, 2)

	out := e.Process(context.Background(), "Can you summarize this?", newSession(tr))
	assert.Equal(t, f.replies["COMBINE"], out)
	assert.Len(t, f.promptsOf("SUMMARY"), n)
	assert.Len(t, f.promptsOf("COMBINE"), 1)
	assert.Equal(t, 1+n+1, f.calls())
}

func TestProcess_WithChunkingOption(t *testing.T) {
	f := newFakeLLM()
	f.replies["ROUTER"] = "summarize"
	e := NewEngine(f, testPrompts, "", WithChunking(8000, 100))

	e.Process(context.Background(), "summarize", newSession(strings.Repeat("x", 15000)))
	assert.Len(t, f.promptsOf("SUMMARY"), 2)
}

// Every LLM call returning an error ends in the chat fallback, not the
// generic apology: the router falls back to general chat, which then falls
// back to its own text.
func TestProcess_LLMErrorOnEveryCallEndsInChatFallback(t *testing.T) {
	f := newFakeLLM()
	f.fail["*"] = true
	e := NewEngine(f, testPrompts, "")

	before := metrics.Fallbacks.Value(map[string]string{"component": "Router"})
	out := e.Process(context.Background(), "anything", newSession("some transcript"))
	assert.Equal(t, MsgChatFailed, out)
	assert.Equal(t, before+1, metrics.Fallbacks.Value(map[string]string{"component": "Router"}))
}

func TestProcess_PanicBecomesGenericApology(t *testing.T) {
	f := newFakeLLM()
	f.panics = true
	rec := &memRecorder{}
	e := NewEngine(f, testPrompts, "", WithRecorder(rec))

	var out string
	require.NotPanics(t, func() {
		out = e.Process(context.Background(), "summarize", newSession("some transcript"))
	})
	assert.Equal(t, MsgGeneric, out)

	last := rec.events[len(rec.events)-1]
	assert.Equal(t, "error", last.kind)
}

func TestProcess_DoesNotMutateSession(t *testing.T) {
	f := newFakeLLM()
	f.replies["ROUTER"] = "question_answer"
	f.replies["QA"] = "ok"
	e := NewEngine(f, testPrompts, "")

	sess := newSession("transcript text")
	sess.Append(session.SenderUser, "who?")
	snapshot := sess.Clone()

	e.Process(context.Background(), "who?", sess)
	assert.Equal(t, snapshot, sess)
}

func TestProcess_RecordsStages(t *testing.T) {
	f := newFakeLLM()
	f.replies["ROUTER"] = "question_answer"
	f.replies["QA"] = "Bob"
	rec := &memRecorder{}
	e := NewEngine(f, testPrompts, "", WithRecorder(rec))

	e.Process(context.Background(), "who owns it?", newSession("transcript"))

	require.Len(t, rec.events, 3)
	assert.Equal(t, "message", rec.events[0].kind)
	assert.Equal(t, "Router", rec.events[1].component)
	assert.Equal(t, "question_answer", rec.events[1].msg)
	assert.Equal(t, "QA", rec.events[2].component)
	assert.Equal(t, "Bob", rec.events[2].msg)
	for _, ev := range rec.events {
		assert.Equal(t, "sess-1", ev.session)
	}
}
