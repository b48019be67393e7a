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
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/emrekaya/fridgemate/backend/internal/api"
	"github.com/emrekaya/fridgemate/backend/internal/auth"
	"github.com/emrekaya/fridgemate/backend/internal/config"
	"github.com/emrekaya/fridgemate/backend/internal/fridge"
	"github.com/emrekaya/fridgemate/backend/internal/middleware"
	"github.com/emrekaya/fridgemate/backend/internal/store"
	"github.com/emrekaya/fridgemate/backend/internal/users"
	"github.com/emrekaya/fridgemate/backend/pkg/logging"
)

func main() {
	logging.Setup()
	cfg := config.Load()
	ctx := context.Background()

	if cfg.AuthMode == middleware.ModeJWT && cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET is required in jwt auth mode")
		os.Exit(1)
	}

	// ── PostgreSQL ────────────────────────────────────────────
	pgPool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		slog.Error("postgres connect failed", "error", err)
		os.Exit(1)
	}
	defer pgPool.Close()
	userStore := store.NewPostgresStore(pgPool)
	if err := userStore.Migrate(ctx); err != nil {
		slog.Error("postgres migrate failed", "error", err)
		os.Exit(1)
	}

	// ── MongoDB ──────────────────────────────────────────────
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		slog.Error("mongo connect failed", "error", err)
		os.Exit(1)
	}
	defer mongoClient.Disconnect(ctx)
	fridgeStore := store.NewFridgeStore(mongoClient.Database(cfg.MongoDB))
	if err := fridgeStore.EnsureIndexes(ctx); err != nil {
		slog.Error("mongo index setup failed", "error", err)
		os.Exit(1)
	}

	// ── Redis ────────────────────────────────────────────────
	rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		slog.Error("redis connect failed", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()
	sessions := auth.NewSessionStore(rdb, cfg.RefreshTokenTTL)

	// ── MinIO ────────────────────────────────────────────────
	minioStore, err := store.NewMinioStore(
		ctx, cfg.MinioEndpoint, cfg.MinioAccessKey,
		cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL,
	)
	if err != nil {
		slog.Error("minio connect failed", "error", err)
		os.Exit(1)
	}

	// ── Handlers ─────────────────────────────────────────────
	jwts := auth.NewJWTManager(cfg.JWTSecret, cfg.AccessTokenTTL)
	authHandler := auth.NewHandler(userStore, sessions, jwts)
	userHandler := users.NewHandler(userStore, minioStore)
	fridgeHandler := fridge.NewHandler(fridge.NewService(userStore, fridgeStore, cfg.InviteCodeAttempts))

	requireAuth := middleware.RequireAuth(cfg.AuthMode, jwts)

	// ── Router ───────────────────────────────────────────────
	r := chi.NewRouter()
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "x-user-id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.WriteJSON(w, http.StatusOK, map[string]string{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	// Auth routes (public except /me)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)
		r.Post("/logout", authHandler.Logout)
		r.With(requireAuth).Get("/me", authHandler.Me)
	})

	// User routes
	r.Route("/users", func(r chi.Router) {
		r.Get("/{id}/photo", userHandler.Photo)
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", userHandler.List)
			r.Get("/{id}", userHandler.Get)
			r.Put("/me", userHandler.UpdateMe)
			r.Post("/me/photo", userHandler.UploadPhoto)
			r.Delete("/me/photo", userHandler.DeletePhoto)
		})
	})

	// Fridge routes (protected)
	r.Route("/fridges", func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/", fridgeHandler.Create)
		r.Post("/join", fridgeHandler.Join)
		r.Post("/leave", fridgeHandler.Leave)
		r.Get("/me", fridgeHandler.Me)
		r.Get("/me/members", fridgeHandler.Members)
	})

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		slog.Info("backend listening", "port", cfg.Port, "auth_mode", cfg.AuthMode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
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
