package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/timebank/backend/internal/auth"
	"github.com/timebank/backend/internal/bot"
	"github.com/timebank/backend/internal/botframework"
	"github.com/timebank/backend/internal/catalog"
	"github.com/timebank/backend/internal/dashboard"
	"github.com/timebank/backend/internal/handlers"
	"github.com/timebank/backend/internal/metrics"
	"github.com/timebank/backend/internal/router"
)

const shutdownTimeout = 10 * time.Second

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bot HTTP server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup(os.Stdout)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openGateway(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	cat := catalog.Load(cfg.ToolsFile, logger)
	logger.Info("tool catalog ready", "tools", cat.Len())

	reg, m := metrics.NewRegistry()
	sender := botframework.NewConnectorClient(botframework.CredentialsClient(ctx, cfg.AppID, cfg.AppPassword, ""))

	var validator auth.Service
	if cfg.Production() {
		keys, err := auth.NewKeySet(ctx, cfg.KeysURL)
		if err != nil {
			return err
		}
		validator = auth.NewService(keys, cfg.AppID)
	}

	h := router.New(router.Config{
		Production: cfg.Production(),
		Messages: &handlers.MessagesHandler{
			Adapter: botframework.NewAdapter(sender, logger, m),
			Bot: &bot.TurnHandler{
				Handler:                bot.New(cat, store, bot.WithMetrics(m), bot.WithLogger(logger)),
				AllowChannelIDFallback: !cfg.Production(),
			},
			Logger: logger,
		},
		Dashboard: dashboard.NewHandler(cat, store.Benefits, logger),
		Validator: validator,
		Gatherer:  reg,
		Logger:    logger,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting HTTP server", "addr", srv.Addr, "env", cfg.Env, "store", cfg.StoreMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}
