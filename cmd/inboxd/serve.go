package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/inboxai/inboxd/internal/config"
	"github.com/inboxai/inboxd/internal/conversation"
	"github.com/inboxai/inboxd/internal/db"
	dbsqlc "github.com/inboxai/inboxd/internal/db/sqlc"
	"github.com/inboxai/inboxd/internal/handlers"
	"github.com/inboxai/inboxd/internal/logger"
	"github.com/inboxai/inboxd/internal/meta"
	"github.com/inboxai/inboxd/internal/onboarding"
	"github.com/inboxai/inboxd/internal/responder"
	"github.com/inboxai/inboxd/internal/server"
	"github.com/inboxai/inboxd/internal/tenant"
	"github.com/inboxai/inboxd/internal/webhook"
)

func runServe() {
	fx.New(
		fx.Provide(
			provideConfig,
			provideLogger,
			provideDBConn,
			provideDBQueries,
			provideMetaClient,
			provideResponderClient,
			tenant.NewService,
			conversation.NewService,
			onboarding.NewStore,
			provideOnboardingService,
			provideSweeper,
			provideWebhookProcessor,
			provideWebhookHandler,
			fx.Annotate(
				func(h *webhook.Handler) server.Handler { return h },
				fx.ResultTags(`group:"server_handlers"`),
			),
			provideServerHandler(provideOnboardingHandler),
			provideServerHandler(provideConversationsHandler),
			provideServerHandler(provideTenantsHandler),
			provideServerHandler(providePingHandler),
			provideServer,
		),
		fx.Invoke(
			startSweeper,
			registerWebhookDrain,
			startServer,
		),
		fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger.With(slog.String("component", "fx"))}
		}),
	).Run()
}

func provideServerHandler(fn any) any {
	return fx.Annotate(
		fn,
		fx.As(new(server.Handler)),
		fx.ResultTags(`group:"server_handlers"`),
	)
}

func provideConfig() (config.Config, error) {
	cfgPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func provideLogger(cfg config.Config) *slog.Logger {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return logger.L
}

func provideDBConn(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	conn, err := db.Open(context.Background(), cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	lc.Append(fx.Hook{OnStop: func(ctx context.Context) error { conn.Close(); return nil }})
	return conn, nil
}

func provideDBQueries(conn *pgxpool.Pool) *dbsqlc.Queries { return dbsqlc.New(conn) }

func provideMetaClient(cfg config.Config) *meta.Client {
	return meta.NewClient(cfg.Meta)
}

func provideResponderClient(cfg config.Config) *responder.Client {
	return responder.NewClient(cfg.Responder)
}

func provideOnboardingService(gateway *meta.Client, tenants *tenant.Service, sessions *onboarding.Store, cfg config.Config) *onboarding.Service {
	return onboarding.NewService(gateway, tenants, sessions, cfg.Onboarding)
}

func provideSweeper(sessions *onboarding.Store, cfg config.Config) *onboarding.Sweeper {
	return onboarding.NewSweeper(sessions, cfg.Onboarding)
}

func provideWebhookProcessor(tenants *tenant.Service, conversations *conversation.Service, gateway *meta.Client, dispatch *responder.Client) *webhook.Processor {
	return webhook.NewProcessor(tenants, conversations, gateway, dispatch)
}

func provideWebhookHandler(cfg config.Config, processor *webhook.Processor) *webhook.Handler {
	return webhook.NewHandler(cfg.Meta.VerifyToken, processor)
}

func provideOnboardingHandler(log *slog.Logger, service *onboarding.Service, gateway *meta.Client, cfg config.Config) *handlers.OnboardingHandler {
	return handlers.NewOnboardingHandler(log, service, gateway, cfg)
}

func provideConversationsHandler(log *slog.Logger, service *conversation.Service) *handlers.ConversationsHandler {
	return handlers.NewConversationsHandler(log, service)
}

func provideTenantsHandler(log *slog.Logger, service *tenant.Service, cfg config.Config) *handlers.TenantsHandler {
	return handlers.NewTenantsHandler(log, service, cfg.Auth.JWTSecret)
}

func providePingHandler(log *slog.Logger) *handlers.PingHandler {
	return handlers.NewPingHandler(log)
}

type serverParams struct {
	fx.In
	Logger         *slog.Logger
	Config         config.Config
	ServerHandlers []server.Handler `group:"server_handlers"`
}

func provideServer(params serverParams) *server.Server {
	return server.NewServer(params.Logger, params.Config, params.ServerHandlers)
}

func startSweeper(lc fx.Lifecycle, sweeper *onboarding.Sweeper) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error { return sweeper.Start() },
		OnStop:  func(ctx context.Context) error { sweeper.Stop(); return nil },
	})
}

// registerWebhookDrain is invoked after startSweeper and before
// startServer, so on shutdown the server stops accepting deliveries
// first and in-flight events finish before the sweeper and pool go.
func registerWebhookDrain(lc fx.Lifecycle, handler *webhook.Handler) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error { return handler.Drain(ctx) },
	})
}

func startServer(lc fx.Lifecycle, logger *slog.Logger, srv *server.Server, shutdowner fx.Shutdowner) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("server failed", slog.Any("error", err))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := srv.Stop(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server stop: %w", err)
			}
			return nil
		},
	})
}
