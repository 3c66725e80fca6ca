package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/phrazzld/lingocards/internal/creation"
	"github.com/phrazzld/lingocards/internal/domain"
	"github.com/spf13/cobra"
)

func newCreateCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a flashcard from text or an image file",
	}
	cmd.AddCommand(newCreateTextCommand(e), newCreateFileCommand(e))
	return cmd
}

func newCreateTextCommand(e *env) *cobra.Command {
	var source, target string

	cmd := &cobra.Command{
		Use:   "text <word or phrase>",
		Short: "Translate text and save it as a flashcard",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, err := e.newOrchestrator()
			if err != nil {
				return err
			}
			e.registerRefresh()

			text := strings.Join(args, " ")
			return orch.SubmitText(cmd.Context(), text, language(source), language(target))
		},
	}
	cmd.Flags().StringVar(&source, "source", string(domain.DefaultSource), "source language (en or th)")
	cmd.Flags().StringVar(&target, "target", string(domain.DefaultTarget), "target language (en or th)")
	return cmd
}

func newCreateFileCommand(e *env) *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "file <image>",
		Short: "Recognize the object in an image and save it as a flashcard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read image: %w", err)
			}

			orch, err := e.newOrchestrator()
			if err != nil {
				return err
			}
			e.registerRefresh()
			if err := orch.SetTargetLanguage(language(target)); err != nil {
				return err
			}

			return orch.SubmitFile(cmd.Context(), creation.ImageFile{
				Name:        filepath.Base(args[0]),
				ContentType: http.DetectContentType(data),
				Data:        data,
			})
		},
	}
	cmd.Flags().StringVar(&target, "target", string(domain.DefaultTarget), "target language (en or th)")
	return cmd
}

// language normalizes a flag value. Validation is left to the orchestrator
// so that it reports the same message as any other invalid input.
func language(code string) domain.Language {
	return domain.Language(strings.ToLower(strings.TrimSpace(code)))
}
