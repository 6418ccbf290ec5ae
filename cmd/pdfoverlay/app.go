package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/wudi/pdfoverlay/config"
	"github.com/wudi/pdfoverlay/observability"
	"github.com/wudi/pdfoverlay/source"
)

// Version information set at build time.
var (
	Version   = "dev"
	GitCommit = "unknown"
)

// loadTimeout bounds fetching a remote source document.
const loadTimeout = 30 * time.Second

type App struct {
	root   *cobra.Command
	stdout io.Writer
	stderr io.Writer

	configPath string
	trace      bool
}

func New() *App {
	app := &App{
		stdout: os.Stdout,
		stderr: os.Stderr,
	}

	app.root = &cobra.Command{
		Use:   "pdfoverlay",
		Short: "Place form fields, text and signatures on PDF pages",
		Long: `pdfoverlay renders the pages of a PDF, replays gesture scripts that
create, move and edit overlay widgets, and flattens the widgets into a new PDF.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	app.root.PersistentFlags().StringVarP(&app.configPath, "config", "c", "", "Path to a YAML configuration file")
	app.root.PersistentFlags().BoolVar(&app.trace, "trace", false, "Print trace spans to stderr")

	app.root.AddCommand(
		app.newVersionCmd(),
		app.newApplyCmd(),
		app.newInspectCmd(),
		app.newRenderCmd(),
	)

	return app
}

// WithOutput sets custom output writers.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	a.root.SetOut(stdout)
	a.root.SetErr(stderr)
	return a
}

func (a *App) Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return a.root.ExecuteContext(ctx)
}

// ExecuteWithArgs runs the CLI with specific arguments.
func (a *App) ExecuteWithArgs(ctx context.Context, args []string) error {
	a.root.SetArgs(args)
	return a.Execute(ctx)
}

func (a *App) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "pdfoverlay version %s\n", Version)
			fmt.Fprintf(a.stdout, "  Git commit: %s\n", GitCommit)
		},
	}
}

// env is what every command shares: configuration, logging and tracing.
type env struct {
	cfg      config.Config
	log      observability.Logger
	tracer   observability.Tracer
	shutdown func(context.Context) error
}

func (a *App) env() (*env, error) {
	cfg := config.Default()
	if a.configPath != "" {
		var err error
		if cfg, err = config.LoadFile(a.configPath); err != nil {
			return nil, err
		}
	}
	e := &env{
		cfg:      cfg,
		log:      observability.NewBoltLogger(cfg.Log.Level, cfg.Log.Format, a.stderr),
		tracer:   observability.NopTracer(),
		shutdown: func(context.Context) error { return nil },
	}
	if a.trace {
		exp, err := stdouttrace.New(stdouttrace.WithWriter(a.stderr), stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("trace exporter: %w", err)
		}
		tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
		e.tracer = observability.NewOTelTracerFrom(tp, "github.com/wudi/pdfoverlay")
		e.shutdown = tp.Shutdown
	}
	return e, nil
}

func (e *env) load(ctx context.Context, location string) ([]byte, error) {
	if location == "" {
		return nil, fmt.Errorf("%w: --file is required", source.ErrLoad)
	}
	data, err := source.WithTimeout(loadTimeout).Load(ctx, location)
	if err != nil {
		return nil, err
	}
	e.log.Debug("loaded document", observability.String("location", location), observability.Int("bytes", len(data)))
	return data, nil
}
