package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	clerk "github.com/clerk/clerk-sdk-go/v2"
	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"constanciaAPI/handlers"
	"constanciaAPI/internal/config"
	"constanciaAPI/internal/metrics"
	"constanciaAPI/internal/notification"
	"constanciaAPI/middleware"
	"constanciaAPI/services"

	_ "net/http/pprof"
)

type backend interface {
	services.Store
	services.NotificationStore
	Ping(ctx context.Context) error
}

func openStore(ctx context.Context, cfg *config.Config) (backend, func(), error) {
	if cfg.StoreBackend == config.StoreMemory {
		log.Warn("Using the in-memory store, data is lost on restart")
		return services.NewMemoryStore(), func() {}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	dbPool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		dbPool.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("Successfully connected to the database")
	return services.NewPgStore(dbPool), func() {
		log.Info("Closing database connection pool...")
		dbPool.Close()
	}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	cfg.SetupLogging()

	clerk.SetKey(cfg.ClerkSecretKey)
	log.Info("Clerk initialized successfully")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer closeStore()

	catalog, err := cfg.PlanCatalog()
	if err != nil {
		log.Fatal("Failed to load plan catalog: ", err)
	}

	middleware.InitPrometheus()
	metrics.Register()

	dispatcher := services.NewNotificationDispatcher(store, cfg.DispatchWorkers)
	defer dispatcher.Stop()

	fcmService, err := notification.NewFCMService(ctx, cfg.FCMServiceAccountFile)
	if err != nil {
		log.Warnf("Could not initialize FCM, pushes will only be logged: %v", err)
		dispatcher.SetPushProvider(services.LogPushProvider{})
	} else {
		dispatcher.SetPushProvider(fcmService)
		log.Info("FCM Push Provider initialized successfully")
	}

	loc := cfg.DefaultLocation
	notificationService := services.NewNotificationService(store, dispatcher)
	profileService := services.NewProfileService(store, loc.String())
	streakService := services.NewStreakService(store, notificationService, loc)
	planService := services.NewPlanService(store, catalog, notificationService, loc)
	workoutService := services.NewWorkoutService(store, streakService, planService, loc)

	scheduler := services.NewScheduler(loc)
	defer scheduler.Stop()
	if err := streakService.RegisterReminders(scheduler, cfg.ReminderCron, cfg.AtRiskCron); err != nil {
		log.Fatal("Failed to schedule reminders: ", err)
	}
	for _, id := range scheduler.IDs() {
		next, _ := scheduler.Next(id)
		log.WithFields(log.Fields{"job": id, "next": next}).Info("reminder scheduled")
	}

	healthHandler := handlers.NewHealthHandler(store)
	webhookHandler := handlers.NewWebhookHandler(profileService, cfg.ClerkWebhookSecret)
	profileHandler := handlers.NewProfileHandler(profileService)
	workoutHandler := handlers.NewWorkoutHandler(workoutService)
	streakHandler := handlers.NewStreakHandler(streakService)
	planHandler := handlers.NewPlanHandler(planService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.TrustProxyHeaders)
	go limiter.CleanupVisitors(ctx)

	r := mux.NewRouter()
	r.Use(limiter.Middleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(cfg.MetricsUser, cfg.MetricsPass)(promhttp.Handler()))
	if cfg.PprofSecret != "" {
		r.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(cfg.PprofSecret)(http.DefaultServeMux))
	}

	r.HandleFunc("/health", healthHandler.Health).Methods("GET")
	r.HandleFunc("/webhooks/clerk", webhookHandler.HandleClerkWebhook).Methods("POST")

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/plans", planHandler.GetPlans).Methods("GET")

	// -------------------------------------------------------------------------
	// PROTECTED ROUTES (REQUIRE AUTH HEADER)
	// -------------------------------------------------------------------------
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.ClerkAuthMiddleware)
	protected.Use(middleware.ResolveUser(profileService))

	protected.HandleFunc("/profile", profileHandler.GetProfile).Methods("GET")
	protected.HandleFunc("/profile/timezone", profileHandler.UpdateTimezone).Methods("PUT")

	protected.HandleFunc("/workouts/complete", workoutHandler.CompleteWorkout).Methods("POST")
	protected.HandleFunc("/checkins", workoutHandler.GetCheckins).Methods("GET")
	protected.HandleFunc("/calendar", workoutHandler.GetCalendar).Methods("GET")
	protected.HandleFunc("/streak", streakHandler.GetStreak).Methods("GET")

	protected.HandleFunc("/plan/progress", planHandler.GetProgress).Methods("GET")
	protected.HandleFunc("/plan/select", planHandler.SelectPlan).Methods("POST")
	protected.HandleFunc("/plan/advance", planHandler.AdvancePlan).Methods("POST")
	protected.HandleFunc("/plan/scale", planHandler.ScalePrescriptions).Methods("POST")

	protected.HandleFunc("/notifications", notificationHandler.GetNotifications).Methods("GET")
	protected.HandleFunc("/notifications/{id}/read", notificationHandler.MarkAsRead).Methods("PUT")
	protected.HandleFunc("/notifications/register-device", notificationHandler.RegisterDevice).Methods("POST")

	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Pprof-Secret"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorilllaHandlers.AllowCredentials(),
	)

	server := http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Infof("Starting server on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server: ", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server shutdown error: %v", err)
	}

	log.Info("Server shutdown complete")
}
