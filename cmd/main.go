package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"project_atendimento/internal/adapters"
	"project_atendimento/internal/config"
	"project_atendimento/internal/entities"
	"project_atendimento/internal/infrastructure"
	"project_atendimento/internal/interfaces"
	"project_atendimento/internal/interfaces/http"
	"project_atendimento/internal/repository"
	"project_atendimento/internal/usecases"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "atendimento",
		Short:         "Multi-tenant webhook receiver with AI replies",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newMigrateCmd(), newHashPasswordCmd())

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook and admin HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the contatos and mensagens tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := infrastructure.NewLogger(os.Stdout, cfg.LogLevel)
			_, closeDB, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeDB()
			logger.Info("schema up to date", "postgres", cfg.Postgres())
			return nil
		},
	}
}

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := usecases.HashPassword(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

// openStore connects to Postgres or SQLite depending on DATABASE_URL and
// migrates the schema
func openStore(ctx context.Context, cfg config.Config) (interfaces.Store, func(), error) {
	if cfg.Postgres() {
		pgClient, err := infrastructure.NewPostgresClient(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := pgClient.Migrate(ctx); err != nil {
			pgClient.Close()
			return nil, nil, err
		}
		return repository.NewPostgresStore(pgClient.Pool), pgClient.Close, nil
	}

	sqliteClient, err := infrastructure.NewSQLiteClient(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := sqliteClient.Migrate(ctx); err != nil {
		sqliteClient.Close()
		return nil, nil, err
	}
	store := repository.NewSQLiteStore(sqliteClient.DB)
	return store, func() { store.Close() }, nil
}

func openPublisher(cfg config.Config, logger *slog.Logger) interfaces.EventPublisher {
	if cfg.AMQPURL == "" {
		return infrastructure.NewLogPublisher(logger)
	}
	publisher, err := infrastructure.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, logger)
	if err != nil {
		logger.Warn("message bus unavailable, events go to the log", "error", err)
		return infrastructure.NewLogPublisher(logger)
	}
	return publisher
}

func serve(ctx context.Context, cfg config.Config) error {
	logger := infrastructure.NewLogger(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	tenants, err := config.LoadTenants(cfg.TenantsFile)
	if err != nil {
		return err
	}
	resolver, err := usecases.NewTenantResolver(tenants)
	if err != nil {
		return fmt.Errorf("tenants: %w", err)
	}

	store, closeDB, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	publisher := openPublisher(cfg, logger)
	defer publisher.Close()

	var ai interfaces.AIClient
	if cfg.OpenAIAPIKey != "" || cfg.OpenAIBaseURL != "" {
		ai = infrastructure.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
	} else {
		logger.Warn("no AI backend configured, only fixed greetings will be sent")
	}

	telegram := infrastructure.NewTelegramManager(config.TelegramBots(tenants))
	if cfg.TelegramEndpoint != "" {
		telegram.WithEndpoint(cfg.TelegramEndpoint)
	}
	if cfg.PublicURL != "" {
		if err := telegram.RegisterWebhooks(cfg.PublicURL); err != nil {
			logger.Error("telegram webhook registration failed", "error", err)
		}
	}

	limiter := infrastructure.NewReplyRateLimiter(ctx, cfg.ReplyRatePerMinute, cfg.ReplyBurst)
	dispatcher := usecases.NewDispatcher(store, limiter, logger)
	dispatcher.Register(entities.ChannelWhatsApp, infrastructure.NewEvolutionClient(cfg.EvolutionBaseURL, cfg.EvolutionAPIKey))
	dispatcher.Register(entities.ChannelDigisac, infrastructure.NewDigisacClient(cfg.DigisacBaseURL, cfg.DigisacToken))
	dispatcher.Register(entities.ChannelTelegram, telegram)

	pipeline := usecases.NewMessageService(usecases.MessageServiceDeps{
		Adapters:   adapters.Default(),
		Tenants:    resolver,
		Store:      store,
		Generator:  usecases.NewResponseGenerator(ai, cfg.HistoryWindow, logger),
		Dispatcher: dispatcher,
		Publisher:  publisher,
		Timeout:    cfg.RequestTimeout,
		Logger:     logger,
	})

	authUsecase := usecases.NewAuthUsecase(cfg.AdminUsername, cfg.AdminPasswordHash, cfg.JWTSecret)
	if !authUsecase.Enabled() {
		logger.Warn("admin API disabled: set ADMIN_USERNAME, ADMIN_PASSWORD_HASH and JWT_SECRET")
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	http.SetupRoutes(r, http.RouterDeps{
		Pipeline:    pipeline,
		Auth:        authUsecase,
		Dashboard:   usecases.NewDashboardUsecase(resolver, store, cfg.HistoryWindow, publisher, logger),
		Stats:       limiter.Stats,
		JWTSecret:   cfg.JWTSecret,
		CORSOrigins: cfg.CORSOrigins,
		Logger:      logger,
	})

	srv := &nethttp.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		// a webhook may wait for the AI and the provider before answering
		WriteTimeout: cfg.RequestTimeout + 10*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Port, "tenants", len(tenants), "postgres", cfg.Postgres())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout+5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
