package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newSpeakCommand(e *env) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "speak <text>",
		Short: "Save pronunciation audio for text as MP3",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			audio, err := e.api.Speech(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("generate speech: %w", err)
			}
			if err := os.WriteFile(output, audio, 0o644); err != nil {
				return fmt.Errorf("write audio: %w", err)
			}
			fmt.Fprintf(e.out, "Saved %d bytes to %s\n", len(audio), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "tts.mp3", "output file")
	return cmd
}
