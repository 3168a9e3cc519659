package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fresh/cart"
	"fresh/config"
	"fresh/db"
	"fresh/globals"
	"fresh/idempotency"
	"fresh/middleware"
	"fresh/ratelim"
	"fresh/rdx"
	"fresh/routes"
	"fresh/salehub"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.Load()

	zerolog.SetGlobalLevel(cfg.LogLevel)
	zerolog.TimeFieldFormat = time.RFC3339
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	log.Logger = logger

	globals.JwtSecret = []byte(cfg.JWTSecret)
	globals.CookieSecure = cfg.CookieSecure

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := db.Connect(rootCtx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatal().Err(err).Msg("MongoDB unavailable")
	}
	if err := db.EnsureIndexes(rootCtx); err != nil {
		log.Fatal().Err(err).Msg("failed to create indexes")
	}

	// menu cache and live sale updates degrade gracefully without Redis
	if err := rdx.Init(rootCtx, cfg.RedisAddr, cfg.RedisPassword); err != nil {
		log.Warn().Err(err).Msg("continuing without Redis")
	}

	// initialize rate limiter
	rateLimiter := ratelim.NewRateLimiter(5, 10)
	go rateLimiter.Janitor(rootCtx)

	// initialize sale hub
	hub := salehub.NewHub()
	go hub.Run()
	go salehub.Listen(rootCtx, hub)

	cartService := cart.NewService(
		cart.NewMongoStore(db.CartsCollection),
		&cart.MongoCatalog{
			Restaurants: db.RestaurantsCollection,
			Items:       db.ItemsCollection,
			Users:       db.UserCollection,
		},
	)

	idemStore := idempotency.NewMongoStore(db.IdempotencyCollection)
	if err := idemStore.EnsureIndexes(rootCtx); err != nil {
		log.Fatal().Err(err).Msg("failed to create idempotency indexes")
	}

	router := httprouter.New()
	routes.RoutesWrapper(router, rateLimiter, routes.Deps{
		Cart:           cart.NewHandler(cartService),
		Idempotency:    idempotency.NewGuard(idemStore, 24*time.Hour),
		Hub:            hub,
		AllowedOrigins: cfg.CORSOrigins,
	})

	// apply middleware: CORS → security headers → logging → router
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", idempotency.HeaderKey},
		AllowCredentials: true,
	}).Handler(router)

	handler := middleware.Logging(logger)(middleware.SecurityHeaders(corsHandler))

	server := &http.Server{
		Addr:              cfg.Port,
		Handler:           handler,
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	server.RegisterOnShutdown(func() {
		log.Info().Msg("shutting down sale hub")
		hub.Stop()
	})

	go func() {
		log.Info().Str("addr", cfg.Port).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe error")
		}
	}()

	<-rootCtx.Done()
	log.Info().Msg("shutdown signal received; shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	if err := client.Disconnect(ctx); err != nil {
		log.Error().Err(err).Msg("MongoDB disconnect failed")
	}
	if rdx.Conn != nil {
		rdx.Conn.Close()
	}

	log.Info().Msg("server stopped cleanly")
}
