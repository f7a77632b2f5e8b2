package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/freshbowl/storefront/api/controllers"
	"github.com/freshbowl/storefront/api/routes"
	"github.com/freshbowl/storefront/internal/bootstrap"
	"github.com/freshbowl/storefront/internal/cart"
	"github.com/freshbowl/storefront/internal/checkout"
	"github.com/freshbowl/storefront/internal/customization"
	"github.com/freshbowl/storefront/internal/handoff"
	"github.com/freshbowl/storefront/internal/notifications"
	"github.com/freshbowl/storefront/pkg/config"
	"github.com/freshbowl/storefront/pkg/enums"
	"github.com/freshbowl/storefront/pkg/logger"
	"github.com/freshbowl/storefront/pkg/metrics"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	resources, err := bootstrap.OpenCartStore(ctx, cfg, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, resources.Close())
	}()

	cat, err := bootstrap.LoadCatalog(ctx, cfg.Catalog.SeedPath, logg)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	tray := notifications.NewService(cfg.Cart.NotificationTTL, logg)
	tray.Start()
	defer tray.Stop()

	carts, err := cart.NewService(cart.ServiceParams{
		Catalog:  cat,
		Composer: customization.NewResolver(customization.UUIDGenerator{}),
		Mirror:   cart.NewMirror(resources.Store, logg),
		Notifier: tray,
		Metrics:  metrics.NewCartMetrics(reg),
		Logger:   logg,
		IdleTTL:  cfg.Cart.IdleTTL,
		MaxCarts: cfg.Cart.MaxCarts,
	})
	if err != nil {
		return err
	}
	carts.Start()
	defer carts.Stop()

	currency, err := enums.ParseCurrency(strings.ToUpper(cfg.Store.Currency))
	if err != nil {
		return err
	}

	handoffMetrics := metrics.NewHandoffMetrics(reg)

	// The browser opens the deep link itself; the server only records it.
	redirect := handoff.NewFuncStrategy("client_redirect", func(context.Context, string) error { return nil })
	checkoutSvc, err := checkout.NewService(checkout.Params{
		Config: checkout.Config{
			DestinationPhone: cfg.Store.OrderPhone,
			PhoneFormat: handoff.PhoneFormat{
				CountryCode: cfg.Store.CountryCode,
				LocalDigits: cfg.Store.LocalPhoneDigits,
				TrunkPrefix: "0",
			},
			MessagingHost:     cfg.Store.MessagingHost,
			ClearAfterHandoff: cfg.Cart.ClearAfterHandoff,
		},
		Carts: carts,
		Encoder: handoff.NewEncoder(handoff.EncoderConfig{
			BusinessName: cfg.Store.BusinessName,
			ChannelName:  cfg.Store.ChannelName,
			Currency:     currency,
		}),
		Dispatcher: handoff.NewDispatcher(logg, handoffMetrics, redirect),
		Notifier:   tray,
		Metrics:    handoffMetrics,
		Logger:     logg,
	})
	if err != nil {
		return err
	}

	pingers := map[string]controllers.Pinger{}
	if resources.DB != nil {
		pingers["db"] = resources.DB
	}
	if resources.Redis != nil {
		pingers["redis"] = resources.Redis
	}

	if sqlStore, ok := resources.Store.(*cart.SQLStore); ok && cfg.Cart.SnapshotTTL > 0 {
		go pruneSnapshots(ctx, sqlStore, cfg.Cart.SnapshotTTL, logg)
	}

	addr := ":" + cfg.App.Port
	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, routes.Dependencies{
			Catalog:       cat,
			Carts:         carts,
			Checkout:      checkoutSvc,
			Notifications: tray,
			Pingers:       pingers,
			Gatherer:      reg,
			HTTPMetrics:   metrics.NewHTTPMetrics(reg),
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	logCtx := logg.WithFields(ctx, map[string]any{
		"env":    cfg.App.Env,
		"addr":   addr,
		"driver": string(resources.Driver),
	})
	logg.Info(logCtx, "starting api server")

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// pruneSnapshots drops SQL snapshots idle for longer than ttl.
func pruneSnapshots(ctx context.Context, store *cart.SQLStore, ttl time.Duration, logg *logger.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		n, err := store.Prune(ctx, time.Now().Add(-ttl))
		switch {
		case err != nil && ctx.Err() == nil:
			logg.Error(ctx, "cart.snapshots.prune_failed", err)
		case n > 0:
			logg.Info(logg.WithField(ctx, "pruned", n), "cart.snapshots.pruned")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
