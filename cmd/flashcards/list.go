package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/lingocards/internal/events"
	"github.com/spf13/cobra"
)

func newListCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved flashcards, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.listCards(cmd.Context())
		},
	}
}

func newDeleteCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a flashcard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.deleteCard(cmd.Context(), args[0])
		},
	}
}

func (e *env) listCards(ctx context.Context) error {
	cards, err := e.api.List(ctx)
	if err != nil {
		return fmt.Errorf("list flashcards: %w", err)
	}
	if len(cards) == 0 {
		fmt.Fprintln(e.out, "No flashcards yet.")
		return nil
	}
	for _, c := range cards {
		renderCard(e.out, c)
	}
	return nil
}

// deleteCard removes a card and publishes the deletion so that any
// orchestrator drops its reference to it.
func (e *env) deleteCard(ctx context.Context, raw string) error {
	id, err := uuid.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid flashcard ID %q", raw)
	}
	if err := e.api.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete flashcard: %w", err)
	}
	fmt.Fprintln(e.out, "Flashcard deleted successfully")

	event, err := events.NewFlashcardDeleted(id)
	if err != nil {
		return err
	}
	if err := e.emitter.EmitEvent(ctx, event); err != nil {
		e.logger.Warn("deletion handler failed", "error", err)
	}
	return nil
}
