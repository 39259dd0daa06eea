package logx

import (
	"time"
)

type Timer struct {
	start time.Time
	id    string
	comp  string
	op    string
}

func Start(id, comp, op string) *Timer {
	return &Timer{
		start: time.Now(),
		id:    id,
		comp:  comp,
		op:    op,
	}
}

func (t *Timer) End() time.Duration {
	elapsed := time.Since(t.start)
	Debug(t.comp, "[%s][TIMING] %s = %v", t.id, t.op, elapsed)
	return elapsed
}
