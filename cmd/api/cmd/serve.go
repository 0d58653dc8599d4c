package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/diagnosia-api/internal/config"
	"github.com/harentsoaR/diagnosia-api/internal/handlers"
	"github.com/harentsoaR/diagnosia-api/internal/lock"
	"github.com/harentsoaR/diagnosia-api/internal/services"
	"github.com/harentsoaR/diagnosia-api/internal/store"
	"github.com/harentsoaR/diagnosia-api/internal/store/memstore"
	"github.com/harentsoaR/diagnosia-api/internal/utils"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type serveOptions struct {
	port     string
	inMemory bool
}

func newServeCommand() *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP server and accept API requests.

The server connects to MongoDB (MONGO_URI, or DB_USER/DB_PASS/DB_CLUSTER),
ensures indexes, optionally connects to Redis for cross-instance locking
(REDIS_URL), and shuts down gracefully on SIGINT/SIGTERM.

Examples:
  diagnosia-api serve --port 7000
  diagnosia-api serve --in-memory --log-format console`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, opts)
		},
	}
	cmd.Flags().StringVar(&opts.port, "port", "", "listen port (default: $PORT or 7000)")
	cmd.Flags().BoolVar(&opts.inMemory, "in-memory", false, "use an in-process store instead of MongoDB (development only)")
	return cmd
}

func runServer(ctx context.Context, opts *serveOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if opts.port != "" {
		cfg.Server.Port = opts.port
	}

	logger := config.NewLogger(cfg.Logging)
	logger.Info().Str("env", cfg.Environment).Str("version", Version).Msg("starting diagnosia api")
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	sessions, err := utils.NewSessionSigner(cfg.Session.Secret, cfg.Session.TTL)
	if err != nil {
		return fmt.Errorf("session signer: %w", err)
	}

	st, closeStore, err := openStore(ctx, cfg, opts.inMemory, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	locker := lock.Locker(lock.Noop{})
	if cfg.Redis.Enabled() {
		rdb, err := lock.NewRedisClient(ctx, cfg.Redis.Options)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer rdb.Close()
		locker = lock.NewRedisLocker(rdb, cfg.Redis.LockTTL)
		logger.Info().Str("addr", cfg.Redis.Options.Addr).Int("db", cfg.Redis.Options.DB).Msg("redis locking enabled")
	}

	var processor services.PaymentProcessor
	if cfg.Stripe.SecretKey != "" {
		processor = services.NewStripeProcessor(cfg.Stripe.SecretKey)
	} else {
		logger.Warn().Msg("STRIPE_SECRET_KEY not set; payment intents disabled")
	}

	var uploader services.FileUploader
	if cfg.Cloudinary.Enabled() {
		cld, err := services.NewCloudinaryUploader(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret)
		if err != nil {
			return err
		}
		uploader = cld
	} else {
		logger.Warn().Msg("cloudinary credentials not set; uploads disabled")
	}

	h := handlers.NewHandler(st, sessions, locker,
		services.NewPaymentService(processor, cfg.Stripe.Currency),
		services.NewUploadService(uploader),
		cfg.IsProduction())
	router := handlers.NewRouter(h, handlers.RouterOptions{
		Logger:             logger,
		AllowedOrigins:     cfg.Server.AllowedOrigins,
		RateLimitPerMinute: cfg.RateLimit.PerMinute,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

// openStore returns the configured store and a function releasing it.
func openStore(ctx context.Context, cfg config.Config, inMemory bool, logger zerolog.Logger) (*store.Store, func(), error) {
	if inMemory {
		logger.Warn().Msg("using in-memory store; data is lost on exit")
		return memstore.New().Store(), func() {}, nil
	}

	client, err := store.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.ConnectTimeout)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}
	closeFn := func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			logger.Error().Err(err).Msg("mongo disconnect")
		}
	}

	db := client.Database(cfg.Mongo.Database)
	indexCtx, cancel := context.WithTimeout(ctx, cfg.Mongo.ConnectTimeout)
	defer cancel()
	if err := store.EnsureIndexes(indexCtx, db); err != nil {
		closeFn()
		return nil, nil, err
	}
	logger.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")
	return store.NewMongoStore(db), closeFn, nil
}
