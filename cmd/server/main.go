package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/arjun/wishhub/internal/auth"
	"github.com/arjun/wishhub/internal/config"
	"github.com/arjun/wishhub/internal/metrics"
	"github.com/arjun/wishhub/internal/middleware"
	"github.com/arjun/wishhub/internal/store"
	"github.com/arjun/wishhub/internal/uploads"
	"github.com/arjun/wishhub/internal/wishlist"
	"github.com/arjun/wishhub/pkg/logging"
)

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	ctx := context.Background()

	// ── MongoDB ──────────────────────────────────────────────
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		slog.Error("mongo connect", "error", err)
		os.Exit(1)
	}
	defer mongoClient.Disconnect(ctx)
	db := store.NewMongoStore(mongoClient.Database(cfg.MongoDB))
	if err := db.EnsureIndexes(ctx); err != nil {
		slog.Error("mongo indexes", "error", err)
		os.Exit(1)
	}

	// ── Redis (optional, login throttling) ───────────────────
	var limiter auth.LoginLimiter
	if cfg.RedisAddr != "" {
		rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			slog.Error("redis connect", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		limiter = auth.NewRedisLimiter(rdb, 10, time.Minute)
	}

	// ── MinIO (optional, product images) ─────────────────────
	var uploadsHandler *uploads.Handler
	if cfg.MinioEndpoint != "" {
		images, err := store.NewImageStore(
			ctx, cfg.MinioEndpoint, cfg.MinioAccessKey,
			cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL,
		)
		if err != nil {
			slog.Error("minio connect", "error", err)
			os.Exit(1)
		}
		uploadsHandler = uploads.NewHandler(images)
	}

	// ── Handlers ─────────────────────────────────────────────
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.Production())
	authHandler := auth.NewHandler(db, tokens, limiter)
	wishlistHandler := wishlist.NewHandler(db, db)
	requireAuth := middleware.RequireAuth(tokens, db)

	// ── Router ───────────────────────────────────────────────
	r := chi.NewRouter()
	r.Use(middleware.RequestLogger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Auth routes (public except /me)
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.Signup)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.With(requireAuth).Get("/me", authHandler.Me)
	})

	// Wishlist routes (protected)
	r.Route("/api/wishlists", func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/", wishlistHandler.Create)
		r.Get("/", wishlistHandler.List)
		r.Get("/{id}", wishlistHandler.Get)
		r.Post("/{id}/invite", wishlistHandler.Invite)
		r.Post("/{id}/products", wishlistHandler.AddProduct)
		r.Delete("/{id}/products/{productId}", wishlistHandler.DeleteProduct)
	})

	// Image uploads (protected, enabled when MinIO is configured)
	if uploadsHandler != nil {
		r.Route("/api/uploads", func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", uploadsHandler.Upload)
			r.Get("/*", uploadsHandler.Serve)
		})
	}

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		slog.Info("listening", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	srv.Shutdown(shutCtx)
}
