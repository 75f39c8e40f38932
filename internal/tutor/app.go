package tutor

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/kart-io/logger"

	"github.com/redfire-io/pcb-tutor/pkg/app"
)

const commandDesc = `pcb-tutor serves syllabus-aware multiple-choice question generation for
Class 12 Biology, Chemistry and Physics. It retrieves textbook excerpts from
a vector store, validates the topic against the subject, detects the
syllabus chapter and prompts a chat model to produce formatted MCQs.

Configuration can come from flags, a config file (configs/pcb-tutor.yaml)
or PCB_TUTOR_* environment variables.`

// NewApp creates the tutor command line application.
func NewApp() *app.App {
	opts := NewServerOptions()
	return app.NewApp(
		app.WithName("pcb-tutor"),
		app.WithShortDescription("Class 12 PCB MCQ generator service"),
		app.WithDescription(commandDesc),
		app.WithOptions(opts),
		app.WithRunFunc(run(opts)),
	)
}

func run(opts *ServerOptions) app.RunFunc {
	return func() error {
		cfg, err := opts.Config()
		if err != nil {
			return err
		}

		ctx := setupSignalContext()

		srv, err := cfg.NewServer(ctx)
		if err != nil {
			return err
		}
		return srv.Run(ctx)
	}
}

// setupSignalContext returns a context cancelled on SIGINT or SIGTERM. A
// second signal exits immediately.
func setupSignalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-ch
		logger.Infow("Shutdown signal received", "signal", sig.String())
		cancel()
		<-ch
		os.Exit(1)
	}()

	return ctx
}
