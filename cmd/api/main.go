package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/YukiSuter/NovaKelvin/internal/app"
	"github.com/YukiSuter/NovaKelvin/internal/clock"
	"github.com/YukiSuter/NovaKelvin/internal/config"
	"github.com/YukiSuter/NovaKelvin/internal/payment"
	"github.com/YukiSuter/NovaKelvin/internal/storage/postgres"
	transporthttp "github.com/YukiSuter/NovaKelvin/internal/transport/http"
	"github.com/YukiSuter/NovaKelvin/migrations"
)

const providerTimeout = 15 * time.Second

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("load config")
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
	if err != nil {
		logger.WithError(err).Fatal("connect to db")
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		logger.WithError(err).Fatal("db ping")
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		logger.WithError(err).Fatal("apply migrations")
	}

	clk := clock.NewSystem()
	provider := payment.NewStripeClient(
		cfg.StripeAPIBaseURL,
		cfg.StripeSecretKey,
		cfg.CheckoutReturnURL,
		logger,
		&http.Client{Timeout: providerTimeout},
	)

	inventoryRepo := postgres.NewInventoryRepository(pool)
	ticketRepo := postgres.NewTicketRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	catalogRepo := postgres.NewCatalogRepository(pool)

	ledgerSvc := app.NewLedgerService(inventoryRepo)
	ticketSvc := app.NewTicketService(ticketRepo, ledgerSvc, clk)
	checkoutSvc := app.NewCheckoutService(orderRepo, provider, clk, cfg.Currency)
	reconcilerSvc := app.NewReconcilerService(orderRepo, ticketSvc, provider, clk, logger)
	catalogSvc := app.NewCatalogService(catalogRepo, clk)

	validate := validator.New()

	mux := http.NewServeMux()
	mux.HandleFunc("/health", transporthttp.HealthHandler)
	mux.Handle("/api/tickets/concerts/", transporthttp.HandleListConcerts(catalogSvc))
	mux.Handle("/api/tickets/concert/tickettypes", transporthttp.HandleListTicketTypes(catalogSvc))
	mux.Handle("/api/tickets/create-checkout-session/", transporthttp.HandleCreateCheckout(checkoutSvc, validate))
	mux.Handle("/api/tickets/stripe-webhook/", transporthttp.HandleWebhook(reconcilerSvc, cfg.StripeWebhookSecret, clk, logger))
	mux.Handle("/api/tickets/order-status/", transporthttp.HandleOrderStatus(catalogSvc))
	mux.Handle("/admin/concerts", transporthttp.HandleAdminConcerts(catalogSvc))
	mux.Handle("/admin/ticket-types", transporthttp.HandleAdminTicketTypes(ledgerSvc))
	mux.Handle("/admin/ticket-types/", transporthttp.HandleAdminTicketTypeOps(ledgerSvc))
	mux.Handle("/admin/tickets/", transporthttp.HandleAdminInvalidateTicket(ticketSvc))
	mux.Handle("/", transporthttp.NotFoundHandler())

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Stripe-Signature"},
	})
	handler := transporthttp.RequestLogger(corsHandler.Handler(mux), logger)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	logger.WithField("port", cfg.Port).Info("api listening")

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("server error")
		}
	case <-stopCtx.Done():
		logger.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Error("server shutdown error")
	}
	logger.Info("server stopped")
}
