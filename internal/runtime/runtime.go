package runtime

import (
	"github.com/ccastromar/meetbot/internal/llm"
	"github.com/ccastromar/meetbot/internal/session"
)

// Runtime is what readiness probes look at.
type Runtime struct {
	PromptsLoaded bool
	LLMClient     llm.LLMClient
	Store         session.Store
}
