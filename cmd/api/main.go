package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	cacheAdapter "github.com/atoyeh09/LinkBazar-sub001/internal/infrastructure/cache/adapter"
	"github.com/atoyeh09/LinkBazar-sub001/internal/infrastructure/database"
	queueAdapter "github.com/atoyeh09/LinkBazar-sub001/internal/infrastructure/queue/adapter"
	"github.com/atoyeh09/LinkBazar-sub001/internal/infrastructure/realtime"
	"github.com/atoyeh09/LinkBazar-sub001/internal/pkg/auth"
	"github.com/atoyeh09/LinkBazar-sub001/internal/pkg/chat/application/task"
	"github.com/atoyeh09/LinkBazar-sub001/internal/pkg/chat/presentation/event"
	chathttp "github.com/atoyeh09/LinkBazar-sub001/internal/pkg/chat/presentation/http"
	userAdapter "github.com/atoyeh09/LinkBazar-sub001/internal/repository/adapter"
	userport "github.com/atoyeh09/LinkBazar-sub001/internal/repository/port"

	v1 "github.com/atoyeh09/LinkBazar-sub001/cmd/api/router/v1"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn(".env file not found or could not be loaded", "error", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	pool, err := database.NewPoolFromEnv(ctx)
	cancel()
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// User lookups go through Redis when available; without it the pg
	// repository serves directly.
	var users userport.UserRepository = userAdapter.NewPgUserRepository(pool)
	if cache, err := cacheAdapter.NewRedisAdapter(); err != nil {
		slog.Warn("redis unavailable, user cache disabled", "error", err)
	} else {
		users = userAdapter.NewCachedUserRepository(users, cache)
	}

	verifier, err := auth.NewVerifierFromEnv(users)
	if err != nil {
		slog.Error("failed to initialize token verifier", "error", err)
		os.Exit(1)
	}

	hub := realtime.NewHub()
	dispatcher := event.NewDispatcher(hub, users)

	queueClient, err := queueAdapter.NewAsynqClientFromEnv()
	if err != nil {
		slog.Error("failed to initialize queue client", "error", err)
		os.Exit(1)
	}
	defer queueClient.Close()

	queueServer, err := queueAdapter.NewAsynqServer()
	if err != nil {
		slog.Error("failed to initialize queue server", "error", err)
		os.Exit(1)
	}
	task.RegisterSendMessageTask(queueServer, pool, dispatcher)

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	go func() {
		if err := queueServer.Run(workerCtx); err != nil {
			slog.Error("queue server stopped", "error", err)
		}
	}()

	r := gin.Default()
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	v1.RegisterRoutes(r, chathttp.Deps{
		Pool:       pool,
		Queue:      queueClient,
		Hub:        hub,
		Users:      users,
		Verifier:   verifier,
		Dispatcher: dispatcher,
	})

	addr := ":" + envOr("PORT", "8080")
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		slog.Info("http server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown failed", "error", err)
	}
	if err := queueServer.Stop(shutdownCtx); err != nil {
		slog.Error("queue shutdown failed", "error", err)
	}
	hub.Close()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
