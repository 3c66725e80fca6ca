package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/phrazzld/lingocards/internal/capture"
	"github.com/phrazzld/lingocards/internal/capture/imagedir"
	"github.com/phrazzld/lingocards/internal/creation"
	"github.com/phrazzld/lingocards/internal/domain"
	"github.com/spf13/cobra"
)

const cameraHelp = `commands:
  start           open the camera
  capture         take a still from the live feed
  retake          discard the still and go back to the live feed
  switch          switch between front and back camera
  use             create a flashcard from the still
  cancel          close the camera
  retry           resubmit the last failed photo
  target <en|th>  set the target language
  list            list saved flashcards
  delete <id>     delete a flashcard
  status          show the current state
  help            show this help
  quit            leave`

func newCameraCommand(e *env) *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "camera",
		Short: "Capture a photo interactively and turn it into a flashcard",
		Long: `camera reads commands from standard input and drives the capture
session. Frames come from the image directory configured by --device-dir
or capture.device_dir: images in front/ and back/ subdirectories, or in the
directory itself for a single camera.

` + cameraHelp,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if e.cfg.Capture.DeviceDir == "" {
				return errors.New("capture.device_dir is not configured")
			}
			return e.runCamera(cmd.Context(), imagedir.New(e.cfg.Capture.DeviceDir), language(target))
		},
	}
	cmd.Flags().StringVar(&target, "target", string(domain.DefaultTarget), "target language (en or th)")
	return cmd
}

// lockedWriter serializes writes from the REPL and from background
// controller notifications.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// runCamera runs the camera loop on device until quit or end of input.
func (e *env) runCamera(ctx context.Context, device capture.Device, target domain.Language) error {
	out := &lockedWriter{w: e.out}
	e.out = out

	ctrl, err := capture.NewController(device, e.cfg.Capture.Config, e.logger)
	if err != nil {
		return err
	}
	ctrl.Subscribe(func(s capture.Session, err error) {
		if err != nil {
			fmt.Fprintf(out, "camera error: %s\n", capture.Message(err))
			return
		}
		renderSession(out, s)
	})

	orch, err := e.newOrchestrator()
	if err != nil {
		return err
	}
	e.registerRefresh()
	if err := orch.SetTargetLanguage(target); err != nil {
		return fmt.Errorf("invalid target language %q", target)
	}

	defer func() {
		if ctrl.Snapshot().Phase != capture.Idle {
			_ = ctrl.Cancel()
		}
	}()

	fmt.Fprintln(out, `camera ready, type "help" for commands`)
	scanner := bufio.NewScanner(e.in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			return nil
		}
		e.cameraCommand(ctx, ctrl, orch, fields)
	}
}

// cameraCommand runs one REPL command. Errors are rendered, never returned,
// so the loop keeps going.
func (e *env) cameraCommand(ctx context.Context, ctrl *capture.Controller, orch *creation.Orchestrator, fields []string) {
	cameraOp := func(err error) {
		if err != nil {
			orch.ReportCaptureError(err)
		}
	}

	switch fields[0] {
	case "start":
		cameraOp(ctrl.Activate(ctx))
	case "capture":
		cameraOp(ctrl.Capture(ctx))
	case "retake":
		cameraOp(ctrl.Retake())
	case "switch":
		cameraOp(ctrl.SwitchFacing(ctx))
	case "cancel":
		cameraOp(ctrl.Cancel())
	case "use":
		if err := orch.SubmitCapture(ctx, ctrl); errors.Is(err, creation.ErrBusy) {
			fmt.Fprintln(e.out, "A flashcard is already being created")
		}
	case "retry":
		if err := orch.Retry(ctx); errors.Is(err, creation.ErrNothingToRetry) {
			fmt.Fprintln(e.out, "Nothing to retry")
		}
	case "target":
		if len(fields) != 2 || orch.SetTargetLanguage(language(fields[1])) != nil {
			fmt.Fprintln(e.out, "usage: target <en|th>")
			return
		}
		fmt.Fprintf(e.out, "target language: %s\n", language(fields[1]))
	case "list":
		if err := e.listCards(ctx); err != nil {
			fmt.Fprintf(e.out, "Error: %v\n", err)
		}
	case "delete":
		if len(fields) != 2 {
			fmt.Fprintln(e.out, "usage: delete <id>")
			return
		}
		if err := e.deleteCard(ctx, fields[1]); err != nil {
			fmt.Fprintf(e.out, "Error: %v\n", err)
		}
	case "status":
		renderSession(e.out, ctrl.Snapshot())
		renderStatus(e.out, orch.State())
	case "help":
		fmt.Fprintln(e.out, cameraHelp)
	default:
		fmt.Fprintf(e.out, "unknown command %q, type \"help\" for commands\n", fields[0])
	}
}
