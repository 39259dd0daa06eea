package logx

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync/atomic"
	"time"
)

const (
	Reset = "\033[0m"

	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
)

var levelColor = map[string]string{
	"DEBUG": Cyan,
	"INFO":  Blue,
	"WARN":  Yellow,
	"ERROR": Red,
}

var levelRank = map[string]int32{
	"DEBUG": 0,
	"INFO":  1,
	"WARN":  2,
	"ERROR": 3,
}

// one color per pipeline component
var componentColor = map[string]string{
	"Engine":     Green,
	"Router":     Blue,
	"Summarizer": Magenta,
	"QA":         Yellow,
	"Chat":       Cyan,
	"LLM":        Magenta,
	"Store":      Yellow,
	"HTTP":       Blue,
	"Config":     Magenta,
	"App":        Green,
}

var minLevel atomic.Int32

func init() {
	minLevel.Store(levelRank["INFO"])
}

// SetLevel sets the minimum level that gets written. Unknown names are ignored.
func SetLevel(level string) {
	if r, ok := levelRank[strings.ToUpper(strings.TrimSpace(level))]; ok {
		minLevel.Store(r)
	}
}

func useColor() bool {
	return os.Getenv("APP_ENV") == "local" || os.Getenv("APP_ENV") == "dev"
}

// --- Public API ---

func Debug(component, msg string, args ...any) {
	logGeneric("DEBUG", component, msg, args...)
}

func Info(component, msg string, args ...any) {
	logGeneric("INFO", component, msg, args...)
}

func Warn(component, msg string, args ...any) {
	logGeneric("WARN", component, msg, args...)
}

func Error(component, msg string, args ...any) {
	logGeneric("ERROR", component, msg, args...)
}

// Preview shortens s to n runes for log lines, appending "..." when cut.
func Preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// --- Core ---

func logGeneric(level, component, msg string, args ...any) {
	if levelRank[level] < minLevel.Load() {
		return
	}
	full := fmt.Sprintf(msg, args...)

	if useColor() {
		lc := levelColor[level]
		cc := componentColor[component]
		log.Printf("%s[%s]%s %s[%s]%s %s",
			lc, level, Reset,
			cc, component, Reset,
			full,
		)
	} else {
		log.Printf("[%s] [%s] %s", level, component, full)
	}
}

// L logs with a request or session id attached.
func L(id, component, msg string, args ...any) {
	prefix := fmt.Sprintf("[%s][%s][%s] ",
		time.Now().Format(time.RFC3339),
		component,
		id,
	)
	log.Printf(prefix+msg, args...)
}
