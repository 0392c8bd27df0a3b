package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"social-service/internal/auth"
	"social-service/internal/cache"
	"social-service/internal/config"
	"social-service/internal/db"
	"social-service/internal/friendship"
	grpcserver "social-service/internal/grpc"
	"social-service/internal/handlers"
	"social-service/internal/logger"
	"social-service/internal/messaging"
	"social-service/internal/middleware"
	"social-service/internal/observability"
	"social-service/internal/rabbitmq"
	"social-service/internal/repositories"
	"social-service/internal/telemetry"
	"social-service/internal/ws"
)

const serviceName = "social-service"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init("info", "production")
		logger.Fatal("invalid configuration", err)
	}
	logger.Init(cfg.LogLevel, cfg.AppEnv)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.InitTracing(ctx, serviceName, cfg.OTLPEndpoint)
	if err != nil {
		logger.Fatal("failed to init tracing", err)
	}

	database, err := db.Connect(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("failed to connect to db", err)
	}
	defer database.Close()

	redisClient, err := cache.NewRedisClient(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("profile cache disabled", "error", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer publisher.Close()
	logger.Info("event publisher ready", "mode", rabbitmq.PublisherMode(publisher), "noop_reason", rabbitmq.PublisherNoopReason(publisher))
	emitter := telemetry.NewEventEmitter(publisher, serviceName, cfg.AppEnv)

	tokens, err := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTAlgorithm, cfg.JWTExpiration)
	if err != nil {
		logger.Fatal("failed to configure tokens", err)
	}

	friendshipRepo := repositories.NewFriendshipRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	users := cache.NewProfileCache(repositories.NewUserRepo(database), redisClient, cfg.ProfileCacheTTL)

	hub := ws.NewHub(emitter)
	friendships := friendship.NewService(friendshipRepo, users, emitter, hub)
	messages := messaging.NewService(messageRepo, users, friendships, emitter, hub)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.RequestIDMiddleware())
	router.Use(observability.HTTPMetricsMiddleware())
	router.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handlers.RegisterHealthRoutes(router)
	handlers.RegisterDebugRoutes(router, tokens, cfg.DebugRoutes)

	api := router.Group("/api/v1")
	api.GET("/ws", ws.NewHandler(hub, tokens).Handle)

	authed := api.Group("", middleware.AuthMiddleware(tokens))
	handlers.NewFriendsHandler(friendships).Register(authed)
	handlers.NewMessagesHandler(messages).Register(authed)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	grpcSrv := grpcserver.NewServer(friendships)
	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		logger.Fatal("failed to listen for grpc", err)
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("grpc server listening", "port", cfg.GRPCPort)
		errCh <- grpcSrv.Serve(lis)
	}()
	go func() {
		logger.Info("http server listening", "port", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		logger.Error("server error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}
	grpcSrv.GracefulStop()
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("tracing shutdown failed", "error", err)
	}
}
