package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	sqliteadapter "github.com/tkiviniemi/stocklink/internal/adapter/driven/sqlite"
	"github.com/tkiviniemi/stocklink/internal/adapter/driven/warehouse"
	httphandler "github.com/tkiviniemi/stocklink/internal/adapter/driving/http"
	"github.com/tkiviniemi/stocklink/internal/application"
	"github.com/tkiviniemi/stocklink/internal/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"api_base_url", cfg.APIBaseURL,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	// 4. Run migrations on the writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("migrations complete")

	// 5. Wire driven adapters.
	settingsStore := sqliteadapter.NewSettingsRepo(db)
	productStore := sqliteadapter.NewProductRepo(db)
	warehouseStore := sqliteadapter.NewWarehouseRepo(db)
	orderStore := sqliteadapter.NewOrderRepo(db)

	// Raise log verbosity when the stored settings ask for it.
	if settings, err := settingsStore.Get(ctx); err == nil && settings.DebugEnabled {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	apiCfg := warehouse.Config{
		BaseURL:     cfg.APIBaseURL,
		TestBaseURL: cfg.APITestBaseURL,
		Timeout:     cfg.HTTPTimeout,
	}
	authClient := warehouse.NewAuthClient(apiCfg)

	// 6. Wire application services. The token manager sits between the auth
	// endpoint and the data client, and is invalidated on credential change.
	tokens := application.NewTokenManager(authClient, settingsStore, slog.Default())
	apiClient := warehouse.NewClient(apiCfg, tokens)

	watermarks := application.NewWatermarkStore(settingsStore, slog.Default())
	stockSyncer := application.NewStockSyncer(apiClient, productStore, warehouseStore, slog.Default())
	orderSyncer := application.NewOrderSyncer(apiClient, orderStore, slog.Default())

	// Stock before orders: order handling cross-references product state.
	orch := application.NewOrchestrator(settingsStore, watermarks,
		[]application.ResourceSyncer{stockSyncer, orderSyncer}, slog.Default())

	scheduler := application.NewScheduler(orch, settingsStore, slog.Default())
	go scheduler.Start(ctx)

	settingsSvc := application.NewSettingsService(settingsStore, tokens, slog.Default())
	filter := application.NewShippingFilter(productStore, warehouseStore, slog.Default())

	// 7. Wire the driving HTTP adapter.
	handler := httphandler.NewHandler(settingsSvc, scheduler, orch, tokens, filter, orderStore, slog.Default())
	mux := httphandler.NewServeMux(handler, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
		}
	}()

	slog.Info("stocklink started", "addr", cfg.ListenAddr)

	// 8. Wait for shutdown signal, then drain the HTTP server.
	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
