package pipeline

import (
	"strings"

	"github.com/ccastromar/meetbot/internal/session"
)

const (
	routerHistoryTurns = 3
	qaHistoryTurns     = 5
	chatHistoryTurns   = 3

	chatTranscriptPreview = 1000
)

// recentContext renders the last n turns as "sender: content" lines.
func recentContext(history []session.Turn, n int) string {
	if len(history) > n {
		history = history[len(history)-n:]
	}
	lines := make([]string, 0, len(history))
	for _, t := range history {
		lines = append(lines, string(t.Sender)+": "+t.Content)
	}
	return strings.Join(lines, "\n")
}

// truncate keeps the first n runes of s and marks the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
