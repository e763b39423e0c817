package main

import (
	"context"
	"database/sql"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	persistence "github.com/goliatone/go-persistence-bun"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/booktrackerhq/booktracker"
	"github.com/booktrackerhq/booktracker/books"
	"github.com/booktrackerhq/booktracker/middleware/renewware"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := booktracker.NewLogger("server")

	ctx := context.Background()

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}

	repo := booktracker.NewRepositoryManager(db)
	repo.MustValidate()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	tokens := booktracker.NewRedisTokenStore(rdb, cfg.RedisPrefix).WithLogger(logger)

	mailer, err := booktracker.NewSMTPMailer(
		cfg.SMTPHost,
		cfg.SMTPUser,
		cfg.SMTPPassword,
		cfg.SMTPFrom,
		cfg.BaseURL,
		cfg.SMTPSkipVerify,
	)
	if err != nil {
		log.Fatal(err)
	}
	mailer.WithLogger(logger)

	if !mailer.IsEnabled() {
		logger.Warn("mail is disabled, account emails will be dropped")
	}

	tokenService, err := booktracker.NewTokenService(cfg)
	if err != nil {
		log.Fatal(err)
	}
	tokenService.WithLogger(logger)

	provider := booktracker.NewUserProvider(repo.Users()).WithLogger(logger)
	auther := booktracker.NewAuthenticator(provider, tokenService).
		WithLogger(logger).
		WithLoginTracker(repo.Users())

	guard := renewware.New(renewware.Config{
		Verifier:   tokenService,
		CookieName: cfg.SessionCookieName,
	})

	authController := booktracker.NewAuthController(
		booktracker.WithControllerLogger(logger),
		booktracker.WithControllerRepo(repo),
		booktracker.WithControllerTokens(tokens),
		booktracker.WithControllerAuther(auther),
		booktracker.WithControllerMailer(mailer),
		booktracker.WithControllerConfig(cfg),
	)
	authController.Debug = cfg.Debug
	authController.DeterministicIDs = cfg.DeterministicUserIDs

	searcher := books.NewCachedSearcher(
		books.NewClient(books.Config{APIKey: cfg.BooksAPIKey}),
		rdb,
		cfg.RedisPrefix,
	).WithTTL(cfg.BooksCacheTTL).WithLogger(logger)

	bookController := books.NewBookController(
		books.WithControllerLogger(logger),
		books.WithControllerRepo(repo),
		books.WithControllerSearcher(searcher),
	)

	app := fiber.New(fiber.Config{
		AppName: "booktracker",
	})

	booktracker.RegisterAuthRoutes(app, authController)
	booktracker.RegisterUserRoutes(app, guard, authController)
	books.RegisterBookRoutes(app, guard, bookController)

	go func() {
		if err := app.Listen(cfg.Address); err != nil {
			log.Fatal(err)
		}
	}()

	logger.Info("server listening", "address", cfg.Address, "env", cfg.Env)

	WaitExitSignal()

	logger.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	if err := rdb.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}
}

func openDatabase(ctx context.Context, cfg *Config) (*bun.DB, error) {
	db, err := sql.Open(sqliteshim.ShimName, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	persistence.RegisterModel((*booktracker.User)(nil))
	persistence.RegisterModel((*booktracker.Library)(nil))

	client, err := persistence.New(persistenceConfig{dsn: cfg.DatabaseDSN, debug: cfg.Debug}, db, sqlitedialect.New())
	if err != nil {
		return nil, err
	}

	migrationsFS, err := fs.Sub(booktracker.GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return nil, err
	}

	client.RegisterDialectMigrations(
		migrationsFS,
		persistence.WithDialectSourceLabel("data/sql/migrations"),
		persistence.WithValidationTargets("postgres", "sqlite"),
	)

	if err := client.ValidateDialects(ctx); err != nil {
		return nil, err
	}

	if err := client.Migrate(ctx); err != nil {
		return nil, err
	}

	return client.DB(), nil
}

type persistenceConfig struct {
	dsn   string
	debug bool
}

func (p persistenceConfig) GetDebug() bool                { return p.debug }
func (p persistenceConfig) GetDriver() string             { return sqliteshim.ShimName }
func (p persistenceConfig) GetServer() string             { return p.dsn }
func (p persistenceConfig) GetPingTimeout() time.Duration { return 5 * time.Second }
func (p persistenceConfig) GetOtelIdentifier() string     { return "booktracker" }

// WaitExitSignal blocks until the process receives a termination signal.
func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
