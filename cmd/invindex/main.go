package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/Adithya-Monish-Kumar-K/invindex/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/invindex/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/invindex/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/invindex/pkg/metrics"
)

const (
	defaultDataset = "wikipedia_sample"
	defaultIndex   = "wikipedia_inverted.index"
)

// session carries what every command shares once flags are parsed.
type session struct {
	cfg     *config.Config
	metrics *metrics.Metrics
	stdin   io.Reader
	stdout  io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args, os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	s := &session{stdin: stdin, stdout: stdout}
	app := newApp(s)
	app.Writer = stdout
	app.ErrWriter = stderr
	if err := app.RunContext(ctx, args); err != nil {
		fmt.Fprintf(stderr, "invindex: %v\n", err)
		return apperrors.ExitCode(err)
	}
	return apperrors.ExitOK
}

func newApp(s *session) *cli.App {
	return &cli.App{
		Name:                      "invindex",
		Usage:                     "Build and query an inverted index over tab-separated documents",
		DisableSliceFlagSeparator: true,
		ExitErrHandler:            func(*cli.Context, error) {},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML config file path",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error); overrides config",
			},
			&cli.StringFlag{
				Name:  "storage",
				Usage: "Index storage backend (file, redis, postgres); overrides config",
			},
			&cli.StringFlag{
				Name:  "metrics-file",
				Usage: "Write Prometheus metrics to this textfile on exit; overrides config",
			},
		},
		Before: s.setup,
		After:  s.flushMetrics,
		Commands: []*cli.Command{
			buildCommand(s),
			queryCommand(s),
		},
	}
}

func (s *session) setup(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return apperrors.Newf(apperrors.ErrInvalidInput, "%v", err)
	}
	if v := c.String("log-level"); v != "" {
		cfg.Logging.Level = v
	}
	if v := c.String("storage"); v != "" {
		cfg.Storage.Backend = v
	}
	if v := c.String("metrics-file"); v != "" {
		cfg.Metrics.TextfilePath = v
	}
	if err := cfg.Validate(); err != nil {
		return apperrors.Newf(apperrors.ErrInvalidInput, "%v", err)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format, c.App.ErrWriter)
	s.cfg = cfg
	s.metrics = metrics.New()
	return nil
}

func (s *session) flushMetrics(c *cli.Context) error {
	if s.cfg == nil || s.cfg.Metrics.TextfilePath == "" {
		return nil
	}
	if err := s.metrics.WriteTextfile(s.cfg.Metrics.TextfilePath); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
