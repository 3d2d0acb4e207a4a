package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"

	"github.com/kolkiman1/zen-z-luxe-weaver-sub002/internal/order"
	orderrepo "github.com/kolkiman1/zen-z-luxe-weaver-sub002/internal/order/repo"
	"github.com/kolkiman1/zen-z-luxe-weaver-sub002/internal/payment"
	paymentrepo "github.com/kolkiman1/zen-z-luxe-weaver-sub002/internal/payment/repo"
	"github.com/kolkiman1/zen-z-luxe-weaver-sub002/internal/product"
	productrepo "github.com/kolkiman1/zen-z-luxe-weaver-sub002/internal/product/repo"
	"github.com/kolkiman1/zen-z-luxe-weaver-sub002/internal/ratelimit"
	"github.com/kolkiman1/zen-z-luxe-weaver-sub002/internal/router"
	"github.com/kolkiman1/zen-z-luxe-weaver-sub002/internal/section"
	"github.com/kolkiman1/zen-z-luxe-weaver-sub002/internal/setting"
	settingrepo "github.com/kolkiman1/zen-z-luxe-weaver-sub002/internal/setting/repo"
	subscriberrepo "github.com/kolkiman1/zen-z-luxe-weaver-sub002/internal/subscriber/repo"
	"github.com/kolkiman1/zen-z-luxe-weaver-sub002/internal/user"
	userrepo "github.com/kolkiman1/zen-z-luxe-weaver-sub002/internal/user/repo"
	"github.com/kolkiman1/zen-z-luxe-weaver-sub002/pkg/database"
	"github.com/kolkiman1/zen-z-luxe-weaver-sub002/pkg/utilities"
)

func main() {
	// load .env file if present so os.Getenv picks values from it
	// this is best-effort: if no .env exists, continue (use defaults or real env)
	_ = godotenv.Load()

	// init logger
	lg, err := utilities.InitLogger(utilities.LoggerConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Info("starting genzee storefront api")

	// init db
	cfg := database.ConfigFromEnv()
	sqlDB, err := database.Connect(cfg)
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	defer sqlDB.Close()

	// wrap with sqlx for convenience in repos/services
	db := sqlx.NewDb(sqlDB, "postgres")
	defer db.Close()

	// repositories
	productRepo := productrepo.NewRepo(db)
	orderRepo := orderrepo.NewRepo(db)
	paymentRepo := paymentrepo.NewRepo(db)
	settingRepo := settingrepo.NewRepo(db)
	userRepo := userrepo.NewUserRepo(db)
	sessionRepo := userrepo.NewSessionRepo(db)
	subscriberRepo := subscriberrepo.NewRepo(db)
	limiterStore := ratelimit.NewSQLStore(db)

	// ensure schema (idempotent; prefer migrations once the schema settles)
	ensureCtx, cancelEnsure := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelEnsure()
	for _, ensure := range []func(context.Context) error{
		productRepo.EnsureTable,
		orderRepo.EnsureTable,
		paymentRepo.EnsureTable,
		settingRepo.EnsureTable,
		userRepo.EnsureTable,
		sessionRepo.EnsureTable,
		subscriberRepo.EnsureTable,
		limiterStore.EnsureTable,
	} {
		if err := ensure(ensureCtx); err != nil {
			sugar.Fatalf("ensure schema: %v", err)
		}
	}

	// services
	limiter := ratelimit.New(limiterStore, ratelimit.DefaultConfig())
	productSvc := product.NewService(productRepo)
	orderSvc := order.NewService(orderRepo, productSvc, limiter)
	paymentSvc := payment.NewService(paymentRepo, orderSvc)
	settingSvc := setting.NewService(settingRepo)
	sectionSvc := section.NewService(settingSvc)
	userSvc := user.NewService(userRepo, sessionRepo, limiter, user.AuthConfigFromEnv())

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = "0.0.0.0:8431"
	}

	handler := router.RegisterRoutes(router.Deps{
		Logger:      sugar,
		Orders:      orderSvc,
		Products:    productSvc,
		Sections:    sectionSvc,
		Settings:    settingSvc,
		Payments:    paymentSvc,
		Users:       userSvc,
		Subscribers: subscriberRepo,
	})
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	sugar.Infow("service is running; press Ctrl+C to stop", "addr", addr)

	// run server in background
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()

	<-ctx.Done()

	sugar.Info("shutting down")

	// give a short grace period for cleanup
	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// ping db once more
	if err := sqlDB.PingContext(doneCtx); err != nil {
		sugar.Warnf("db ping on shutdown failed: %v", err)
	}

	// shutdown http server
	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
}
