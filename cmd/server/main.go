// Command leadgate-server starts the HTTP API and the gRPC health endpoint.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/and161185/leadgate/internal/config"
	"github.com/and161185/leadgate/internal/crypto/contactseal"
	"github.com/and161185/leadgate/internal/downloadtoken"
	"github.com/and161185/leadgate/internal/events"
	"github.com/and161185/leadgate/internal/httpapi"
	"github.com/and161185/leadgate/internal/limiter"
	"github.com/and161185/leadgate/internal/migrate"
	"github.com/and161185/leadgate/internal/repository/postgres"
	grpcserver "github.com/and161185/leadgate/internal/server/grpc"
	"github.com/and161185/leadgate/internal/service"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main parses flags, loads configuration and runs until SIGINT/SIGTERM.
func main() {
	cfgPath := flag.String("config", "configs/leadgate.yaml", "YAML config file (optional)")
	dev := flag.Bool("dev", false, "development logging and gRPC reflection")
	flag.Parse()

	logger, err := newLogger(*dev)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	cfg.Dev = *dev

	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("http", cfg.HTTPAddr),
		zap.String("grpc", cfg.GRPCAddr),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// run wires storage, services and transports, then serves until ctx is done.
func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	if err := migrate.Up(ctx, cfg.DatabaseURL, logger); err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}

	db, err := postgres.New(ctx, cfg.DatabaseURL, cfg.MaxDBConns)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer db.Close()

	userRepo := postgres.NewUserRepo(db)
	resourceRepo := postgres.NewResourceRepo(db)
	leadRepo := postgres.NewLeadRepo(db)
	postRepo := postgres.NewPostRepo(db)

	loginLim, leadLim, closeLimiters, err := newLimiters(ctx, cfg, db, logger)
	if err != nil {
		return err
	}
	defer closeLimiters()

	pub, closePub, err := newPublisher(cfg, logger)
	if err != nil {
		return err
	}
	defer closePub()

	signer, err := downloadtoken.New([]byte(cfg.DownloadTokenKey), cfg.DownloadTokenTTL)
	if err != nil {
		return fmt.Errorf("download tokens: %w", err)
	}
	sealer, err := contactseal.New([]byte(cfg.ContactKey))
	if err != nil {
		return fmt.Errorf("contact sealing: %w", err)
	}

	authSvc := service.NewAuthService(userRepo, []byte(cfg.JWTKey), cfg.AccessTTL, loginLim)
	if created, err := service.EnsureAdmin(ctx, authSvc, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	} else if created {
		logger.Info("bootstrap admin created", zap.String("username", cfg.AdminUsername))
	}

	api := httpapi.New(httpapi.Deps{
		Auth:       authSvc,
		Resources:  service.NewResourceService(resourceRepo),
		Posts:      service.NewPostService(postRepo),
		Leads:      service.NewLeadService(resourceRepo, leadRepo, signer, sealer, leadLim, pub, cfg.PublicBaseURL, logger),
		Confirm:    service.NewConfirmService(signer, resourceRepo, leadRepo, pub, logger),
		Ready:      db,
		TrustProxy: cfg.TrustProxy,
	}, logger)

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	grpcSrv := grpcserver.New(logger, cfg.Dev)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen grpc: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening (http)", zap.String("addr", cfg.HTTPAddr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		logger.Info("listening (grpc)", zap.String("addr", cfg.GRPCAddr))
		if err := grpcSrv.GRPC.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("grpc: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		grpcSrv.Watch(gctx, db, 5*time.Second)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		grpcSrv.Shutdown(cfg.ShutdownTimeout)
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// newLimiters picks Redis when configured, otherwise the rate_limits table.
func newLimiters(ctx context.Context, cfg config.Config, db *postgres.DB, logger *zap.Logger) (login, lead limiter.Limiter, closeFn func(), err error) {
	if cfg.RedisURL == "" {
		logger.Info("rate limits: postgres")
		return limiter.NewPG(db.Pool, limiter.ScopeLogin, cfg.LoginLimit),
			limiter.NewPG(db.Pool, limiter.ScopeLead, cfg.LeadLimit),
			func() {}, nil
	}
	rdb, err := limiter.Connect(cfg.RedisURL)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, nil, fmt.Errorf("redis ping: %w", err)
	}
	logger.Info("rate limits: redis")
	return limiter.NewRedis(rdb, limiter.ScopeLogin, cfg.LoginLimit),
		limiter.NewRedis(rdb, limiter.ScopeLead, cfg.LeadLimit),
		func() { _ = rdb.Close() }, nil
}

// newPublisher picks Kafka when brokers are configured, otherwise logs events.
func newPublisher(cfg config.Config, logger *zap.Logger) (events.Publisher, func(), error) {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info("events: log only")
		return events.NewLogPublisher(logger), func() {}, nil
	}
	kp, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopics)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("events: kafka", zap.Strings("brokers", cfg.KafkaBrokers))
	return kp, func() {
		if err := kp.Close(); err != nil {
			logger.Warn("kafka close", zap.Error(err))
		}
	}, nil
}
