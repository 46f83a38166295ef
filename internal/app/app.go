package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/todoflow-labs/todo-client/internal/cli"
	"github.com/todoflow-labs/todo-client/internal/config"
	"github.com/todoflow-labs/todo-client/internal/controller"
	"github.com/todoflow-labs/todo-client/internal/events"
	"github.com/todoflow-labs/todo-client/internal/gateway"
	"github.com/todoflow-labs/todo-client/internal/logging"
	"github.com/todoflow-labs/todo-client/internal/metrics"
	"github.com/todoflow-labs/todo-client/internal/tui"
)

// Run wires the client and hands args to the CLI, or opens the interactive
// list when there are none. It returns the process exit code.
func Run(args []string) int {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
		return 1
	}

	interactive := len(args) == 0

	// Initialize logger. The interactive list owns the terminal, so its logs
	// go to LOG_FILE or nowhere.
	var logger *logging.Logger
	switch {
	case cfg.LogFile != "":
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			log.Error().Err(err).Str("path", cfg.LogFile).Msg("failed to open log file")
			return 1
		}
		defer f.Close()
		logger = logging.New(cfg.LogLevel, f)
	case interactive:
		logger = logging.New(cfg.LogLevel, io.Discard)
	default:
		logger = logging.Console(cfg.LogLevel)
	}
	l := logger.With().Str("service", "todo-client").Logger()
	logger = &l

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsAddr != "" {
		srv := metrics.Init(cfg.MetricsAddr, logger)
		defer srv.Close()
		logger.Info().Msgf("metrics server listening on %s", cfg.MetricsAddr)
	}

	var opts []gateway.Option
	if cfg.HTTPTimeout > 0 {
		opts = append(opts, gateway.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}))
	}
	gw, err := gateway.New(cfg.APIURL, logger, opts...)
	if err != nil {
		logger.Error().Err(err).Msg("failed to init gateway")
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	ctrl := controller.New(gw, logger)

	if cfg.NATSURL != "" {
		pub, closeNATS, err := connectEvents(cfg.NATSURL, logger)
		if err != nil {
			logger.Error().Err(err).Msg("failed to connect to NATS")
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		defer closeNATS()
		unsubscribe := ctrl.Subscribe(pub.Observe)
		defer unsubscribe()
	}

	if interactive {
		if err := tui.Run(ctx, ctrl); err != nil {
			logger.Error().Err(err).Msg("interactive list failed")
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}
	return cli.NewRunner(ctrl, gw, os.Stdout, os.Stderr).Run(ctx, args)
}

// connectEvents connects to NATS and starts a state event publisher. The
// returned func drains the publisher and closes the connection.
func connectEvents(url string, logger *logging.Logger) (*events.Publisher, func(), error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, nil, err
	}
	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("init JetStream: %w", err)
	}
	if err := events.EnsureStream(js); err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("create JetStream stream: %w", err)
	}
	logger.Info().Str("stream", events.StreamName).Msg("publishing state events")

	pub := events.NewPublisher(js, logger)
	return pub, func() {
		pub.Close()
		nc.Close()
	}, nil
}
