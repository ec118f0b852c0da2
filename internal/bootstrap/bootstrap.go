package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/unirecords/internal/app/controllers"
	appMigrations "github.com/yigit/unirecords/internal/app/migrations"
	appRepos "github.com/yigit/unirecords/internal/app/repositories"
	appRoutes "github.com/yigit/unirecords/internal/app/routes"
	appServices "github.com/yigit/unirecords/internal/app/services"
	"github.com/yigit/unirecords/internal/config"
	"github.com/yigit/unirecords/internal/db"
	appMiddleware "github.com/yigit/unirecords/internal/middleware"
	"github.com/yigit/unirecords/internal/pkg/logger"
	"github.com/yigit/unirecords/internal/pkg/metrics"
	"github.com/yigit/unirecords/internal/pkg/querylog"
)

// DefaultConfigPath is read when no --config flag is given.
const DefaultConfigPath = "configs/config.yaml"

// Dependencies holds all the application dependencies
type Dependencies struct {
	Database    *db.Database
	Metrics     *metrics.Metrics
	Tracer      *querylog.Tracer
	Repos       *appRepos.Repositories
	Services    *appServices.Services
	Controllers *appControllers.Controllers
	Logger      zerolog.Logger
}

// LoadConfigAndSetupLogger loads .env, the configuration file and the
// environment, then configures the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn().Err(err).Msg("Failed to load .env file")
	}

	if configPath == "" {
		configPath = DefaultConfigPath
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	lgr := logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})
	lgr.Info().
		Str("logLevel", string(logLevel)).
		Str("logFormat", cfg.Logging.Format).
		Str("driver", cfg.Database.Driver).
		Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase opens the store and, when enabled, applies migrations.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.Database, error) {
	lgr.Info().Str("driver", cfg.Database.Driver).Msg("Establishing database connection...")
	database, err := db.Open(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	if cfg.Database.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := RunMigrations(ctx, cfg, database, lgr); err != nil {
			_ = database.Close()
			return nil, err
		}
	}

	return database, nil
}

// RunMigrations applies the configured migrations directory, or the embedded
// migrations of the database's dialect when none is configured.
func RunMigrations(ctx context.Context, cfg *config.Config, database *db.Database, lgr zerolog.Logger) error {
	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database, lgr)

	var err error
	if dir := cfg.Database.MigrationsDir; dir != "" {
		if _, statErr := os.Stat(dir); statErr != nil {
			return fmt.Errorf("migrations directory not found at %s: %w", dir, statErr)
		}
		err = migrator.MigrateFromFS(ctx, os.DirFS(dir))
	} else {
		err = migrator.Migrate(ctx)
	}
	if err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return fmt.Errorf("database migrations failed: %w", err)
	}

	lgr.Info().Msg("Database migrations successfully applied.")
	return nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, database *db.Database, lgr zerolog.Logger) *Dependencies {
	deps := &Dependencies{
		Database: database,
		Logger:   lgr,
	}

	observers := []querylog.Observer{querylog.LogObserver(lgr)}
	if cfg.Metrics.Enabled {
		deps.Metrics = metrics.New()
		observers = append(observers, deps.Metrics.StatementObserver())
	}
	deps.Tracer = querylog.NewTracer(database.DB, observers...)

	deps.Repos = appRepos.NewRepositories(database)
	deps.Services = appServices.NewServices(deps.Repos)
	deps.Controllers = appControllers.NewControllers(deps.Services)

	return deps
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies) (*gin.Engine, error) {
	lgr := deps.Logger
	switch strings.ToLower(cfg.Server.Mode) {
	case "production":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}
	lgr.Info().Str("mode", gin.Mode()).Msg("Gin mode set")

	router := gin.New()
	router.HandleMethodNotAllowed = true

	router.Use(
		appMiddleware.RequestID(),
		appMiddleware.RequestLogger(lgr),
		appMiddleware.Recovery(),
		cors.New(corsConfig(cfg.Server.CORSOrigins)),
	)
	if deps.Metrics != nil {
		router.Use(appMiddleware.Metrics(deps.Metrics))
		router.GET(cfg.Metrics.Path, gin.WrapH(deps.Metrics.Handler()))
	}

	if cfg.Server.Swagger {
		if err := appRoutes.SetupSwagger(router); err != nil {
			return nil, fmt.Errorf("failed to register API documentation: %w", err)
		}
	}

	appRoutes.SetupRouter(router, deps.Tracer, deps.Controllers, deps.Database)

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", appMiddleware.RequestIDHeader},
		ExposeHeaders: []string{appMiddleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
