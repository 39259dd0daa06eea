package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/ccastromar/meetbot/internal/app"
	"github.com/ccastromar/meetbot/internal/session"
)

// runner is the minimal interface our app must satisfy for running.
type runner interface{ Run(context.Context) error }

// processor is what ask needs from the pipeline.
type processor interface {
	Process(ctx context.Context, message string, sess *session.Session) string
}

// appCtor is a constructor indirection to enable testing without launching the real app.
var appCtor = func() (runner, error) { return app.New() }

// engineCtor builds the pipeline for one-shot commands.
var engineCtor = func() (processor, error) {
	a, err := app.New()
	if err != nil {
		return nil, err
	}
	return a.Engine(), nil
}

// fatalf indirection allows testing fatal paths without exiting the test process.
var fatalf = log.Fatalf

func run(ctx context.Context) {
	a, err := appCtor()
	if err != nil {
		fatalf("error initializing app: %v", err)
		return
	}
	if err := a.Run(ctx); err != nil {
		fatalf("error running app: %v", err)
		return
	}
}

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
