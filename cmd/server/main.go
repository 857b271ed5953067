package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	flag "github.com/spf13/pflag"
	"github.com/yukikurage/taskforge-api/internal/config"
	"github.com/yukikurage/taskforge-api/internal/constants"
	"github.com/yukikurage/taskforge-api/internal/database"
	"github.com/yukikurage/taskforge-api/internal/handlers"
	"github.com/yukikurage/taskforge-api/internal/permission"
	"github.com/yukikurage/taskforge-api/internal/repository"
	"github.com/yukikurage/taskforge-api/internal/services"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	// Load configuration
	cfg := config.Load()

	addr := flag.String("addr", cfg.Addr, "address to listen on")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	flag.Parse()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		logger.Error("failed to connect to database", "driver", cfg.DBDriver, "error", err)
		os.Exit(1)
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	if *migrateOnly {
		logger.Info("migrations applied")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	comments, closeComments, err := newCommentRepository(ctx, cfg)
	if err != nil {
		logger.Error("failed to set up comment store", "store", cfg.CommentStore, "error", err)
		os.Exit(1)
	}
	defer closeComments()

	sessionStore, err := newSessionStore(cfg)
	if err != nil {
		logger.Error("failed to create session store", "store", cfg.SessionStore, "error", err)
		os.Exit(1)
	}

	// Initialize AI service
	var drafter services.TaskDrafter
	if cfg.OpenAIAPIKey != "" {
		drafter = services.NewAIService(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	}

	store := repository.NewStore(db, comments)
	policy := permission.NewPolicy(permission.ParseManagerScope(cfg.ManagerScope))
	authService := services.NewAuthService(store.Users, cfg.BootstrapAdminEmail)

	r := handlers.NewRouter(logger, db, sessionStore, handlers.Services{
		Auth:       authService,
		Projects:   services.NewProjectService(store),
		Tasks:      services.NewTaskService(store, policy, drafter),
		Membership: services.NewMembershipService(store.Projects),
		Analytics:  services.NewAnalyticsService(store),
	})

	srv := &http.Server{
		Addr:              *addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			"addr", *addr,
			"manager_scope", policy.Scope(),
			"comment_store", cfg.CommentStore,
			"ai_enabled", drafter != nil,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// newSessionStore returns the Redis-backed store, or signed cookies when
// SESSION_STORE=cookie.
func newSessionStore(cfg *config.Config) (sessions.Store, error) {
	var store sessions.Store
	switch strings.ToLower(cfg.SessionStore) {
	case "cookie":
		store = cookie.NewStore([]byte(cfg.SessionSecret))
	default:
		redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
		rs, err := redisStore.NewStore(
			10,        // Redis pool size
			"tcp",     // network type
			redisAddr, // Redis address from config
			"",        // username (empty for default user)
			"",        // password (empty = no password)
			[]byte(cfg.SessionSecret),
		)
		if err != nil {
			return nil, err
		}
		store = rs
	}

	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   constants.SessionMaxAge,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	return store, nil
}

// newCommentRepository picks the comment log backend. A nil repository
// means the SQL store's own table is used.
func newCommentRepository(ctx context.Context, cfg *config.Config) (repository.CommentRepository, func(), error) {
	if strings.ToLower(cfg.CommentStore) != "mongo" {
		return nil, func() {}, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			slog.Warn("failed to disconnect from mongo", "error", err)
		}
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		closeFn()
		return nil, nil, err
	}

	repo := repository.NewMongoCommentRepository(client.Database(cfg.MongoDatabase))
	if err := repo.EnsureIndexes(connectCtx); err != nil {
		closeFn()
		return nil, nil, err
	}
	return repo, closeFn, nil
}
