package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ccastromar/meetbot/definitions"
	"github.com/ccastromar/meetbot/internal/llm"
)

var (
	ErrUnknownIntent = errors.New("unknown intent type")
	ErrMissingPrompt = errors.New("missing prompt")
)

// RequiredPrompts are the templates the pipeline cannot run without.
var RequiredPrompts = []string{"router", "summary", "combine", "qa", "general_chat"}

var knownIntents = map[string]bool{
	"summarize":       true,
	"question_answer": true,
	"general_chat":    true,
	"clarification":   true,
}

type Intent struct {
	Type        string `yaml:"type"`
	Description string `yaml:"description"`
}

type PromptDef struct {
	Name        string   `yaml:"name"`
	Template    string   `yaml:"template"`
	Temperature *float64 `yaml:"temperature"`
}

type Config struct {
	Prompts map[string]PromptDef
	Intents []Intent
}

// Load reads definitions from dir, or from the embedded defaults when dir
// is empty.
func Load(dir string) (*Config, error) {
	if dir == "" {
		return LoadFS(definitions.FS)
	}
	return LoadFS(os.DirFS(dir))
}

// LoadFS reads prompts.yaml and intents.yaml from fsys and validates them.
func LoadFS(fsys fs.FS) (*Config, error) {
	cfg := &Config{Prompts: make(map[string]PromptDef)}

	if err := loadPrompts(fsys, cfg); err != nil {
		return nil, err
	}
	if err := loadIntents(fsys, cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadPrompts(fsys fs.FS, cfg *Config) error {
	data, err := fs.ReadFile(fsys, "prompts.yaml")
	if err != nil {
		return fmt.Errorf("reading prompts.yaml: %w", err)
	}
	var raw struct {
		Prompts []PromptDef `yaml:"prompts"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parsing prompts.yaml: %w", err)
	}
	for _, p := range raw.Prompts {
		cfg.Prompts[p.Name] = p
	}
	return nil
}

func loadIntents(fsys fs.FS, cfg *Config) error {
	data, err := fs.ReadFile(fsys, "intents.yaml")
	if err != nil {
		return fmt.Errorf("reading intents.yaml: %w", err)
	}
	var raw struct {
		Intents []Intent `yaml:"intents"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parsing intents.yaml: %w", err)
	}
	cfg.Intents = raw.Intents
	return nil
}

func (c *Config) validate() error {
	for _, name := range RequiredPrompts {
		p, ok := c.Prompts[name]
		if !ok || strings.TrimSpace(p.Template) == "" {
			return fmt.Errorf("%w: %s", ErrMissingPrompt, name)
		}
	}
	for _, it := range c.Intents {
		if !knownIntents[it.Type] {
			return fmt.Errorf("%w: %q", ErrUnknownIntent, it.Type)
		}
	}
	return nil
}

// Prompt returns the named template as an llm.Prompt. Prompts without an
// explicit temperature get defaultTemp.
func (c *Config) Prompt(name string, defaultTemp float64) (llm.Prompt, error) {
	def, ok := c.Prompts[name]
	if !ok {
		return llm.Prompt{}, fmt.Errorf("%w: %s", ErrMissingPrompt, name)
	}
	temp := defaultTemp
	if def.Temperature != nil {
		temp = *def.Temperature
	}
	return llm.Prompt{Name: name, Template: def.Template, Temperature: temp}, nil
}

// IntentList renders the intent descriptions one per line, the way the
// router prompt lists them.
func (c *Config) IntentList() string {
	lines := make([]string, 0, len(c.Intents))
	for _, it := range c.Intents {
		lines = append(lines, fmt.Sprintf("- %q: %s", it.Type, it.Description))
	}
	return strings.Join(lines, "\n")
}
