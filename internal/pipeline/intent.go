package pipeline

import "strings"

// Intent is what the user wants from a message.
type Intent string

const (
	Summarize      Intent = "summarize"
	QuestionAnswer Intent = "question_answer"
	GeneralChat    Intent = "general_chat"
	Clarification  Intent = "clarification"
)

// ParseIntent maps raw classifier output onto an Intent. Anything that is
// not an exact (case-insensitive) match falls back to GeneralChat, so the
// result is always usable.
func ParseIntent(raw string) Intent {
	switch Intent(strings.ToLower(strings.TrimSpace(raw))) {
	case Summarize:
		return Summarize
	case QuestionAnswer:
		return QuestionAnswer
	case Clarification:
		return Clarification
	default:
		return GeneralChat
	}
}
