package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	createBookingHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/create_booking"
	getAvailabilityHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/get_availability"
	getBookingHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/get_booking"
	"github.com/m04kA/SMC-BookingEngine/internal/api/middleware"
	"github.com/m04kA/SMC-BookingEngine/internal/config"
	"github.com/m04kA/SMC-BookingEngine/internal/infra/events"
	bookingRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/booking"
	customerRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/customer"
	historyRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/history"
	outboxRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/outbox"
	paymentRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/payment"
	servicesRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/services"
	settingsRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/settings"
	staffRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/staff"
	"github.com/m04kA/SMC-BookingEngine/internal/integrations/travelcalc"
	"github.com/m04kA/SMC-BookingEngine/internal/service/assignment"
	bookingsService "github.com/m04kA/SMC-BookingEngine/internal/service/bookings"
	createBookingUC "github.com/m04kA/SMC-BookingEngine/internal/usecase/create_booking"
	getAvailabilityUC "github.com/m04kA/SMC-BookingEngine/internal/usecase/get_availability"
	"github.com/m04kA/SMC-BookingEngine/pkg/dbmetrics"
	"github.com/m04kA/SMC-BookingEngine/pkg/logger"
	"github.com/m04kA/SMC-BookingEngine/pkg/metrics"
	"github.com/m04kA/SMC-BookingEngine/pkg/tracing"
	"github.com/m04kA/SMC-BookingEngine/pkg/txmanager"
)

func main() {
	// .env необязателен
	_ = godotenv.Load()

	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-BookingEngine...")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Трейсинг
	shutdownTracing, err := tracing.Setup(context.Background(), tracing.Config{
		Enabled:      cfg.Tracing.Enabled,
		ServiceName:  cfg.Metrics.ServiceName,
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
		SampleRatio:  cfg.Tracing.SampleRatio,
	})
	if err != nil {
		log.Fatal("Failed to initialize tracing: %v", err)
	}
	if cfg.Tracing.Enabled {
		log.Info("Tracing enabled (endpoint=%s, ratio=%.2f)", cfg.Tracing.OTLPEndpoint, cfg.Tracing.SampleRatio)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// С метриками репозитории и транзакции идут через обёртку dbmetrics
	var (
		executor dbmetrics.DBExecutor
		beginner txmanager.Beginner
	)
	if cfg.Metrics.Enabled {
		wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		executor, beginner = wrappedDB, wrappedDB
		log.Info("Database metrics collection started")
	} else {
		executor, beginner = db, txmanager.SQLBeginner{DB: db}
	}
	txMgr := txmanager.NewTransactionManager(beginner)

	// Инициализируем репозитории
	bookingRepository := bookingRepo.NewRepository(executor)
	customerRepository := customerRepo.NewRepository(executor)
	historyRepository := historyRepo.NewRepository(executor)
	outboxRepository := outboxRepo.NewRepository(executor)
	paymentRepository := paymentRepo.NewRepository(executor)
	servicesRepository := servicesRepo.NewRepository(executor)
	settingsRepository := settingsRepo.NewRepository(executor)
	staffRepository := staffRepo.NewRepository(executor)

	// Калькулятор поездки необязателен: без него поездка считается нулевой
	var travelCalc createBookingUC.TravelCalculator
	if cfg.Travel.URL != "" {
		travelCalc = travelcalc.NewClient(cfg.Travel.URL, cfg.Travel.TimeoutDuration(), log)
		log.Info("Travel calculator client initialized (url=%s, timeout=%dms)", cfg.Travel.URL, cfg.Travel.Timeout)
	} else {
		log.Warn("Travel calculator URL is empty, home visits will use zero travel figures")
	}

	// Инициализируем сервисы и use cases
	resolver := assignment.NewResolver(staffRepository, bookingRepository, log)
	bookingSvc := bookingsService.NewService(bookingRepository, log)

	createBookingUseCase := createBookingUC.NewUseCase(createBookingUC.Deps{
		Services:  servicesRepository,
		Customers: customerRepository,
		Staff:     staffRepository,
		Settings:  settingsRepository,
		Bookings:  bookingRepository,
		Payments:  paymentRepository,
		History:   historyRepository,
		Outbox:    outboxRepository,
		Resolver:  resolver,
		Travel:    travelCalc,
		TxManager: txMgr,
		Metrics:   metricsCollector,
		Logger:    log,
	}, createBookingUC.Config{
		MaxAdvanceDays:         cfg.Booking.MaxAdvanceDays,
		TravelTimeout:          cfg.Travel.TimeoutDuration(),
		RecomputeClientTravel:  cfg.Travel.RecomputeClientFigures,
		AutoAssignStaffDefault: cfg.Booking.AutoAssignDefault,
	})

	getAvailabilityUseCase := getAvailabilityUC.NewUseCase(
		servicesRepository,
		settingsRepository,
		bookingRepository,
		resolver,
		metricsCollector,
		log,
		getAvailabilityUC.Config{MaxAdvanceDays: cfg.Booking.MaxAdvanceDays},
	)

	// Публикатор outbox -> kafka
	publisher := events.NewPublisher(outboxRepository, txMgr, nil, log, metricsCollector, events.PublisherConfig{
		Brokers:     events.SplitBrokers(cfg.Kafka.Brokers),
		TopicPrefix: cfg.Kafka.TopicPrefix,
		PollEvery:   cfg.Kafka.PollEvery(),
		BatchSize:   cfg.Kafka.BatchSize,
	})
	publisherCtx, stopPublisher := context.WithCancel(context.Background())
	publisherDone := make(chan struct{})
	go func() {
		defer close(publisherDone)
		publisher.Run(publisherCtx)
	}()

	// Инициализируем handlers
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getAvailability := getAvailabilityHandler.NewHandler(getAvailabilityUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)

	// Ограничение частоты создания бронирований (если задан redis)
	var createBookingRoute http.Handler = http.HandlerFunc(createBooking.Handle)
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancelPing := context.WithTimeout(context.Background(), 2*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.Warn("Redis ping failed (addr=%s): %v", cfg.Redis.Addr, err)
		}
		cancelPing()

		limiter := middleware.NewRateLimiter(rdb, cfg.Redis.RateLimit, cfg.Redis.Window(), "booking:rl", cfg.Redis.FailOpen, log)
		createBookingRoute = limiter.Middleware(createBookingRoute)
		log.Info("Rate limiter enabled (limit=%d per %ds, fail_open=%t)",
			cfg.Redis.RateLimit, cfg.Redis.RateWindow, cfg.Redis.FailOpen)
	}

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	// API prefix, все маршруты требуют X-Tenant-ID
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Tenant)

	// Доступность слотов услуги на дату
	api.HandleFunc("/services/{serviceId}/availability", getAvailability.Handle).Methods(http.MethodGet)

	// Создание бронирования
	api.Handle("/bookings", createBookingRoute).Methods(http.MethodPost)

	// Получение бронирования по ID
	api.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      otelhttp.NewHandler(r, "booking-engine"),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	// Останавливаем публикатор и ждем завершения текущего тика
	stopPublisher()
	select {
	case <-publisherDone:
	case <-shutdownCtx.Done():
		log.Warn("Outbox publisher did not stop in time")
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("Failed to flush traces: %v", err)
	}

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Warn("Failed to close redis client: %v", err)
		}
	}

	log.Info("Server stopped gracefully")
}
