package logx

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevOut, prevFlags := log.Writer(), log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(prevOut)
		log.SetFlags(prevFlags)
		SetLevel("info")
	})
	return &buf
}

func TestLevelFiltering(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	buf := captureLog(t)

	SetLevel("warn")
	Info("Engine", "hidden %d", 1)
	Warn("Engine", "shown %d", 2)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[WARN] [Engine] shown 2")
}

func TestSetLevel_UnknownIgnored(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	buf := captureLog(t)

	SetLevel("debug")
	SetLevel("verbose")
	Debug("Router", "still debug")

	assert.Contains(t, buf.String(), "still debug")
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", Preview("short", 50))
	assert.Equal(t, "abc...", Preview("abcdef", 3))
	assert.Equal(t, "héé...", Preview("hééllo", 3))
}

func TestTimerEnd_LogsAtDebug(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	buf := captureLog(t)
	SetLevel("debug")

	d := Start("s1", "Summarizer", "ChunkSummary").End()

	assert.GreaterOrEqual(t, int64(d), int64(0))
	assert.True(t, strings.Contains(buf.String(), "[TIMING] ChunkSummary"))
}
