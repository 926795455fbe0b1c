// README: Entry point; loads config, wires services, starts the HTTP server.
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

	"cabcab/internal/config"
	"cabcab/internal/events"
	"cabcab/internal/fare"
	httptransport "cabcab/internal/http"
	"cabcab/internal/infra"
	"cabcab/internal/logging"
	"cabcab/internal/modules/commission"
	"cabcab/internal/modules/driver"
	"cabcab/internal/modules/location"
	"cabcab/internal/modules/matching"
	"cabcab/internal/modules/payment"
	"cabcab/internal/modules/ride"
	"cabcab/internal/types"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger := logging.NewLogger(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		rideStore       ride.Store
		rideMemory      *ride.MemoryStore
		locationStore   location.Store
		driverStore     driver.Store
		commissionStore commission.Store
		paymentStore    payment.Store
	)
	if cfg.DB.DSN != "" {
		pool, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			log.Fatalf("postgres init: %v", err)
		}
		defer pool.Close()
		rideStore = ride.NewPostgresStore(pool)
		locationStore = location.NewPostgresStore(pool)
		driverStore = driver.NewPostgresStore(pool)
		commissionStore = commission.NewPostgresStore(pool)
		paymentStore = payment.NewPostgresStore(pool)
		logger.Info("using postgres stores")
	} else {
		rideMemory = ride.NewMemoryStore()
		rideStore = rideMemory
		locationStore = location.NewMemoryStore()
		driverStore = driver.NewMemoryStore()
		commissionStore = commission.NewMemoryStore()
		paymentStore = payment.NewMemoryStore(rideMemory)
		logger.Warn("CABCAB_DB_DSN not set, using in-process stores")
	}

	var geocoder location.Geocoder = location.NewStaticGeocoder()
	if cfg.Maps.APIKey != "" {
		google, err := location.NewGoogleGeocoder(cfg.Maps.APIKey)
		if err != nil {
			log.Fatalf("maps init: %v", err)
		}
		geocoder = &location.FallbackGeocoder{Primary: google, Fallback: geocoder}
	}

	var bans ride.BanChecker = infra.NewMemoryBanChecker()
	if cfg.Redis.Addr != "" {
		bans = infra.NewRedisBanChecker(infra.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB))
	}

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer kp.Close()
		publisher = kp
	}

	var processor payment.Processor = payment.OfflineProcessor{}
	if cfg.Stripe.APIKey != "" {
		processor = payment.NewStripeProcessor(cfg.Stripe.APIKey)
	}

	estimator := fare.NewEstimator(fare.Pricing{
		Base:        types.Cents(cfg.Pricing.BaseCents),
		PerKm:       types.Cents(cfg.Pricing.PerKmCents),
		PerMinute:   types.Cents(cfg.Pricing.PerMinuteCents),
		Minimum:     types.Cents(cfg.Pricing.MinimumCents),
		AvgSpeedKmh: cfg.Pricing.AvgSpeedKmh,
	})

	rideService := ride.NewService(rideStore, locationStore, geocoder, estimator, bans, driverStore, publisher, logger)
	gate := matching.NewGate(rideStore, locationStore, driverStore, publisher, logger)
	settlements := payment.NewSettlementEngine(paymentStore, rideStore, commissionStore, processor, publisher, logger)
	commissionService := commission.NewService(commissionStore, paymentStore)

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Verifier:    infra.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Rides:       rideService,
		Gate:        gate,
		Settlements: settlements,
		Commission:  commissionService,
		Drivers:     driverStore,
		Logger:      logger,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: router}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", "error", err)
		}
	}()

	logger.Info("listening", "addr", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
