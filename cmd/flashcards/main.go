// Command flashcards is the command-line host for flashcard creation. It
// talks to the flashcards API server and drives text, file and camera
// submissions through the creation orchestrator.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	env := newEnv(os.Stdin, os.Stdout, os.Stderr)
	if err := newRootCommand(env).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
