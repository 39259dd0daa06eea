package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/ccastromar/meetbot/internal/llm"
	"github.com/ccastromar/meetbot/internal/logx"
	"github.com/ccastromar/meetbot/internal/metrics"
	"github.com/ccastromar/meetbot/internal/session"
)

// Prompts is the set of templates the engine runs on.
type Prompts struct {
	Router      llm.Prompt
	Summary     llm.Prompt
	Combine     llm.Prompt
	QA          llm.Prompt
	GeneralChat llm.Prompt
}

// Recorder receives one event per pipeline stage.
type Recorder interface {
	AddEvent(sessionID, component, kind, msg, duration string)
}

type nopRecorder struct{}

func (nopRecorder) AddEvent(string, string, string, string, string) {}

type Option func(*Engine)

func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		if r != nil {
			e.rec = r
		}
	}
}

// WithChunking overrides the chunk size and overlap used for long
// transcripts.
func WithChunking(size, overlap int) Option {
	return func(e *Engine) {
		e.summarizer.chunkSize = size
		e.summarizer.chunkOverlap = overlap
	}
}

// Engine routes a message to the right handler and returns its reply.
type Engine struct {
	router     *Router
	summarizer *Summarizer
	answerer   *Answerer
	chatter    *Chatter
	rec        Recorder
}

func NewEngine(c llm.LLMClient, p Prompts, intents string, opts ...Option) *Engine {
	e := &Engine{
		router:     NewRouter(c, p.Router, intents),
		summarizer: NewSummarizer(c, p.Summary, p.Combine),
		answerer:   NewAnswerer(c, p.QA),
		chatter:    NewChatter(c, p.GeneralChat),
		rec:        nopRecorder{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Process always returns text for the user. sess is read, never modified.
func (e *Engine) Process(ctx context.Context, message string, sess *session.Session) (reply string) {
	id := ""
	if sess != nil {
		id = sess.ID
	}

	defer func() {
		if r := recover(); r != nil {
			logx.Error("Engine", "[%s] panic processing message: %v", id, r)
			metrics.Fallbacks.Inc(map[string]string{"component": "Engine"})
			e.rec.AddEvent(id, "Engine", "error", fmt.Sprint(r), "")
			reply = MsgGeneric
		}
	}()

	if sess == nil || sess.Transcript == "" {
		e.rec.AddEvent(id, "Engine", "no_transcript", "", "")
		return MsgNoTranscript
	}

	logx.Info("Engine", "[%s] processing message: %s", id, logx.Preview(message, 50))
	e.rec.AddEvent(id, "Engine", "message", logx.Preview(message, 50), "")

	t := logx.Start(id, "Router", "classify")
	intent := e.router.Classify(ctx, message, sess.ChatHistory)
	e.rec.AddEvent(id, "Router", "intent", string(intent), t.End().String())
	metrics.Intents.Inc(map[string]string{"intent": string(intent)})
	logx.Info("Engine", "[%s] classified intent: %s", id, intent)

	var component string
	start := time.Now()
	switch intent {
	case Summarize:
		component = "Summarizer"
		reply = e.summarizer.Summarize(ctx, sess.Transcript)
	case QuestionAnswer, Clarification:
		component = "QA"
		reply = e.answerer.Answer(ctx, message, sess.Transcript, sess.ChatHistory)
	default:
		component = "Chat"
		reply = e.chatter.Reply(ctx, message, sess.Transcript, sess.ChatHistory)
	}
	elapsed := time.Since(start)
	logx.Debug(component, "[%s][TIMING] handle = %v", id, elapsed)
	e.rec.AddEvent(id, component, "reply", logx.Preview(reply, 80), elapsed.String())

	return reply
}
