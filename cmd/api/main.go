package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"villabook/internal/config"
	"villabook/internal/database"
	"villabook/internal/middleware"
	"villabook/internal/modules/booking"
	"villabook/internal/modules/notification"
	"villabook/internal/modules/payment"
	"villabook/internal/modules/pricing"
	"villabook/internal/modules/refundreq"
	"villabook/internal/modules/sweeper"
	jwtsvc "villabook/internal/pkg/jwt"
	"villabook/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadRuntimeConfig()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	periodRepo := repository.NewPeriodRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	refundRepo := repository.NewRefundRepository(db)
	cancellationRepo := repository.NewCancellationRepository(db)
	voucherRepo := repository.NewVoucherRepository(db)
	requestRepo := repository.NewRefundRequestRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTAccessTTL)
	notifier := notification.NewLogNotifier(log.Default())
	gateway := payment.NewHTTPGateway(cfg.GatewayBaseURL, cfg.GatewayAPIKey)

	pricingService := pricing.NewService(periodRepo, periodRepo)
	pricingHandler := pricing.NewHandler(pricingService)

	paymentService := payment.NewService(
		bookingRepo,
		paymentRepo,
		refundRepo,
		gateway,
		cfg.CheckoutSuccessURL,
		cfg.CheckoutCancelURL,
		log.Printf,
	)
	webhookService := payment.NewWebhookService(
		bookingRepo,
		paymentRepo,
		refundRepo,
		ledgerRepo,
		notifier,
		log.Printf,
	)
	paymentHandler := payment.NewHandler(paymentService, webhookService, cfg.GatewayWebhookSecret)

	bookingService := booking.NewService(
		bookingRepo,
		cancellationRepo,
		refundRepo,
		voucherRepo,
		ledgerRepo,
		pricingService,
		paymentService,
		notifier,
		cfg.Currency,
		log.Printf,
	)
	bookingHandler := booking.NewHandler(bookingService)

	requestService := refundreq.NewService(
		requestRepo,
		bookingRepo,
		ledgerRepo,
		paymentService,
		notifier,
		log.Printf,
	)
	requestHandler := refundreq.NewHandler(requestService)

	sweepService := sweeper.NewService(bookingRepo, ledgerRepo, cfg.HoldWindow, log.Printf)

	r := gin.Default()
	r.Use(middleware.ErrorLogger())
	r.Use(middleware.CORS(cfg.CORSOrigins))

	v1 := r.Group("/api/v1")
	{
		// public
		pricingHandler.RegisterRoutes(v1)
		paymentHandler.RegisterWebhookRoutes(v1)

		// protected
		protected := v1.Group("/")
		protected.Use(middleware.Auth(j))
		{
			bookingHandler.RegisterRoutes(protected)
			paymentHandler.RegisterRoutes(protected)
			requestHandler.RegisterRoutes(protected)

			admin := protected.Group("/admin")
			admin.Use(middleware.AdminOnly())
			{
				pricingHandler.RegisterAdminRoutes(admin)
				requestHandler.RegisterAdminRoutes(admin)
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sweepService.Run(ctx, cfg.SweepInterval)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()
	log.Printf("listening on :%s", cfg.Port)

	<-ctx.Done()
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
