package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/lingocards/internal/client"
	"github.com/phrazzld/lingocards/internal/config"
	"github.com/phrazzld/lingocards/internal/creation"
	"github.com/phrazzld/lingocards/internal/domain"
	"github.com/phrazzld/lingocards/internal/events"
	"github.com/phrazzld/lingocards/internal/platform/logger"
	"github.com/spf13/cobra"
)

// flashcardAPI is the remote surface the commands use. *client.Client
// implements it.
type flashcardAPI interface {
	creation.ContentService
	creation.PersistenceService
	creation.FileUploader
	List(ctx context.Context) ([]*domain.Flashcard, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Speech(ctx context.Context, text string) ([]byte, error)
}

var _ flashcardAPI = (*client.Client)(nil)

// globalFlags are shared by every command.
type globalFlags struct {
	configFile string
	baseURL    string
	logLevel   string
	deviceDir  string
}

// env carries the streams and the dependencies built by the root command.
type env struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	// newAPI builds the API client. Tests replace it.
	newAPI func(cfg config.ClientConfig, log *slog.Logger) (flashcardAPI, error)

	flags   globalFlags
	cfg     *config.Config
	logger  *slog.Logger
	api     flashcardAPI
	emitter *events.InMemoryEmitter
}

func newEnv(in io.Reader, out, errOut io.Writer) *env {
	return &env{
		in:     in,
		out:    out,
		errOut: errOut,
		newAPI: func(cfg config.ClientConfig, log *slog.Logger) (flashcardAPI, error) {
			return client.New(cfg, log)
		},
	}
}

// flagBindings maps config keys to the global flags that override them.
var flagBindings = map[string]string{
	"client.base_url":    "base-url",
	"server.log_level":   "log-level",
	"capture.device_dir": "device-dir",
}

func newRootCommand(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:   "flashcards",
		Short: "Create English and Thai flashcards",
		Long: `flashcards creates bilingual flashcards through the flashcards API.

Examples:
  flashcards create text hello            # translate and save a word
  flashcards create file photo.jpg        # recognize an object in an image
  flashcards camera --device-dir ./frames # capture a photo interactively
  flashcards list                         # show saved cards
  flashcards speak สวัสดี -o hello.mp3     # save pronunciation audio`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return e.setup(cmd)
		},
	}
	root.SetIn(e.in)
	root.SetOut(e.out)
	root.SetErr(e.errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&e.flags.configFile, "config", "", "config file (default is ./lingocards.yaml or $HOME/lingocards.yaml)")
	pf.StringVar(&e.flags.baseURL, "base-url", "", "flashcards API base URL")
	pf.StringVar(&e.flags.logLevel, "log-level", "", "log level: debug, info, warn or error")
	pf.StringVar(&e.flags.deviceDir, "device-dir", "", "image directory used as the camera")

	root.AddCommand(
		newCreateCommand(e),
		newCameraCommand(e),
		newListCommand(e),
		newDeleteCommand(e),
		newSpeakCommand(e),
	)
	return root
}

// setup loads configuration and builds the logger, API client and emitter.
func (e *env) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(config.LoadOptions{
		ConfigFile:   e.flags.configFile,
		Flags:        cmd.Flags(),
		FlagBindings: flagBindings,
	})
	if err != nil {
		return err
	}
	e.cfg = cfg

	log, err := logger.Setup(logger.LoggerConfig{
		Level:  cfg.Server.LogLevel,
		Format: logger.FormatText,
		Output: e.errOut,
	})
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	e.logger = log

	api, err := e.newAPI(cfg.Client, log)
	if err != nil {
		return fmt.Errorf("failed to create API client: %w", err)
	}
	e.api = api
	e.emitter = events.NewInMemoryEmitter(log)
	return nil
}

// newOrchestrator builds an orchestrator over the API client and subscribes
// the progress renderer. The orchestrator also handles deletion events.
func (e *env) newOrchestrator() (*creation.Orchestrator, error) {
	orch, err := creation.New(e.api, e.api, e.emitter, e.logger)
	if err != nil {
		return nil, err
	}
	e.emitter.RegisterHandler(orch)

	orch.Subscribe(newStateRenderer(e.out))
	return orch, nil
}

// registerRefresh re-lists the saved cards after every creation.
func (e *env) registerRefresh() {
	e.emitter.RegisterHandler(events.HandlerFunc(func(ctx context.Context, event *events.Event) error {
		if event.Type != events.TypeFlashcardCreated {
			return nil
		}
		cards, err := e.api.List(ctx)
		if err != nil {
			return fmt.Errorf("refresh flashcards: %w", err)
		}
		fmt.Fprintf(e.out, "%d flashcard(s) saved\n", len(cards))
		return nil
	}))
}
