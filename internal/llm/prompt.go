package llm

import (
	"context"
	"fmt"
	"strings"
)

// Prompt is a named template with {placeholder} variables and the sampling
// temperature it should run at.
type Prompt struct {
	Name        string
	Template    string
	Temperature float64
}

// Render substitutes every {name} in the template with vars[name].
// Placeholders without a matching variable are left as they are.
func (p Prompt) Render(vars map[string]string) string {
	if len(vars) == 0 {
		return p.Template
	}
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(p.Template)
}

// Complete renders p with vars and sends it to c.
func Complete(ctx context.Context, c LLMClient, p Prompt, vars map[string]string) (string, error) {
	out, err := c.Chat(ctx, p.Render(vars), p.Temperature)
	if err != nil {
		return "", fmt.Errorf("prompt %s: %w", p.Name, err)
	}
	return out, nil
}
