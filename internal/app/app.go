package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/ccastromar/meetbot/internal/config"
	"github.com/ccastromar/meetbot/internal/llm"
	"github.com/ccastromar/meetbot/internal/logx"
	"github.com/ccastromar/meetbot/internal/pipeline"
	"github.com/ccastromar/meetbot/internal/runtime"
	"github.com/ccastromar/meetbot/internal/session"
	"github.com/ccastromar/meetbot/internal/timeline"
)

type App struct {
	env      *config.EnvVars
	cfg      *config.Config
	llm      llm.LLMClient
	store    session.Store
	engine   *pipeline.Engine
	timeline *timeline.Store
	http     *HTTPServer
}

type Option func(*App)

// WithLLMClient replaces the provider chosen from LLM_PROVIDER.
func WithLLMClient(c llm.LLMClient) Option {
	return func(a *App) { a.llm = c }
}

// WithStore replaces the store chosen from SESSION_STORE.
func WithStore(s session.Store) Option {
	return func(a *App) { a.store = s }
}

// New builds the app from the process environment.
func New() (*App, error) {
	env, err := config.LoadEnv()
	if err != nil {
		return nil, fmt.Errorf("loading env: %w", err)
	}
	return NewWithEnv(env)
}

func NewWithEnv(env *config.EnvVars, opts ...Option) (*App, error) {
	logx.SetLevel(env.LogLevel)

	a := &App{env: env}
	for _, opt := range opts {
		opt(a)
	}

	cfg, err := config.Load(env.PromptsDir)
	if err != nil {
		return nil, fmt.Errorf("loading definitions: %w", err)
	}
	a.cfg = cfg
	logx.Info("Config", "loaded %d prompts and %d intents", len(cfg.Prompts), len(cfg.Intents))

	if a.llm == nil {
		c, err := NewLLMClient(env)
		if err != nil {
			return nil, err
		}
		a.llm = c
	}

	if a.store == nil {
		st, err := newStore(env)
		if err != nil {
			return nil, err
		}
		a.store = st
	}

	prompts, err := PipelinePrompts(cfg, env.LLMTemperature)
	if err != nil {
		return nil, err
	}

	a.timeline = timeline.NewStore()
	a.engine = pipeline.NewEngine(a.llm, prompts, cfg.IntentList(), pipeline.WithRecorder(a.timeline))

	rt := &runtime.Runtime{
		PromptsLoaded: true,
		LLMClient:     a.llm,
		Store:         a.store,
	}

	h := &handlers{store: a.store, engine: a.engine}
	a.http = NewHTTPServer(env, h, a.timeline, rt)

	return a, nil
}

// Engine exposes the pipeline for one-shot use outside HTTP.
func (a *App) Engine() *pipeline.Engine { return a.engine }

func (a *App) Handler() http.Handler { return a.http.srv.Handler }

func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.http.Start(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		if err := a.store.Close(); err != nil {
			logx.Warn("Store", "close: %v", err)
		}
		return nil
	})

	logx.Info("App", "meetbot started (llm=%s, store=%s)", a.env.LLMProvider, a.env.SessionStore)

	return g.Wait()
}

// NewLLMClient picks the provider named by LLM_PROVIDER.
func NewLLMClient(env *config.EnvVars) (llm.LLMClient, error) {
	switch env.LLMProvider {
	case "openai", "":
		c := llm.NewOpenAIClient(env.LLMBaseURL, env.LLMApiKey, env.LLMModel)
		c.Timeout = env.LLMTimeout
		c.HTTP = &http.Client{Timeout: env.LLMTimeout}
		return c, nil
	case "goopenai":
		c := llm.NewGoOpenAIClient(env.LLMBaseURL, env.LLMApiKey, env.LLMModel, &http.Client{Timeout: env.LLMTimeout})
		c.Timeout = env.LLMTimeout
		return c, nil
	case "ollama":
		c := llm.NewOllamaClient(env.OllamaBaseURL, env.OllamaModel)
		c.Timeout = env.LLMTimeout
		c.HTTPClient = &http.Client{Timeout: env.LLMTimeout}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", env.LLMProvider)
	}
}

// PipelinePrompts pulls the engine's templates out of cfg.
func PipelinePrompts(cfg *config.Config, temperature float64) (pipeline.Prompts, error) {
	var p pipeline.Prompts
	targets := map[string]*llm.Prompt{
		"router":       &p.Router,
		"summary":      &p.Summary,
		"combine":      &p.Combine,
		"qa":           &p.QA,
		"general_chat": &p.GeneralChat,
	}
	for name, dst := range targets {
		pr, err := cfg.Prompt(name, temperature)
		if err != nil {
			return pipeline.Prompts{}, err
		}
		*dst = pr
	}
	return p, nil
}

func newStore(env *config.EnvVars) (session.Store, error) {
	switch session.StoreType(env.SessionStore) {
	case session.StoreTypeRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     env.RedisAddr,
			Password: env.RedisPassword,
			DB:       env.RedisDB,
		})
		return session.NewStore(session.StoreTypeRedis,
			session.WithRedisClient(client),
			session.WithRedisTTL(env.SessionTTL),
		)
	default:
		return session.NewStore(session.StoreType(env.SessionStore))
	}
}
