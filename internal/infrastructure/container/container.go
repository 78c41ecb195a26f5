package container

import (
	"context"
	"fmt"
	"time"

	"github.com/gdugdh24/profile-service/internal/config"
	"github.com/gdugdh24/profile-service/internal/delivery/http"
	"github.com/gdugdh24/profile-service/internal/delivery/http/handler"
	"github.com/gdugdh24/profile-service/internal/delivery/http/middleware"
	"github.com/gdugdh24/profile-service/internal/infrastructure/database"
	"github.com/gdugdh24/profile-service/internal/infrastructure/gemini"
	"github.com/gdugdh24/profile-service/internal/infrastructure/profileapi"
	"github.com/gdugdh24/profile-service/internal/infrastructure/raster"
	"github.com/gdugdh24/profile-service/internal/infrastructure/server"
	"github.com/gdugdh24/profile-service/internal/repository"
	"github.com/gdugdh24/profile-service/internal/repository/memory"
	"github.com/gdugdh24/profile-service/internal/repository/postgres"
	redisrepo "github.com/gdugdh24/profile-service/internal/repository/redis"
	"github.com/gdugdh24/profile-service/internal/usecase/auth"
	"github.com/gdugdh24/profile-service/internal/usecase/identity"
	"github.com/gdugdh24/profile-service/internal/usecase/photo"
	"github.com/gdugdh24/profile-service/internal/usecase/profile"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *zap.Logger
	DB     *sqlx.DB
	Redis  *redis.Client
	Server *server.Server
	Gemini *gemini.GeminiClient

	stop context.CancelFunc
}

// photoSweepInterval is how often idle photo edits are expired.
const photoSweepInterval = time.Minute

// NewContainer creates a new dependency injection container
func NewContainer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger}

	overrides, err := c.overrideRepository(ctx)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	// Initialize Gemini Client
	var suggester profile.AboutSuggester
	if cfg.GeminiAPIKey != "" {
		geminiClient, err := gemini.NewGeminiClient(ctx, cfg.GeminiAPIKey, logger)
		if err != nil {
			// Don't fail, just continue without AI features
			logger.Warn("failed to initialize gemini client", zap.Error(err))
		} else {
			c.Gemini = geminiClient
			suggester = geminiClient
		}
	}

	profileAPI := profileapi.NewClient(&cfg.ProfileAPI, logger)
	verifier := identity.NewVerifier(profileAPI)

	surfaces := raster.NewFactory()
	surfaces.MaxPixels = cfg.Media.MaxPixels

	// Initialize use cases
	photoUseCase := photo.NewPhotoUseCase(surfaces, overrides, verifier, photo.Limits{
		IdleTTL:     cfg.Media.PhotoSessionTTL,
		MaxSessions: cfg.Media.MaxPhotoSessions,
		MaxPixels:   cfg.Media.MaxPixels,
	}, logger)
	authUseCase := auth.NewAuthUseCase(profileAPI, overrides, photoUseCase, verifier, logger)
	profileUseCase := profile.NewProfileUseCase(profileAPI, overrides, verifier, suggester, logger)

	janitorCtx, stop := context.WithCancel(context.Background())
	c.stop = stop
	go photoUseCase.Run(janitorCtx, photoSweepInterval)

	// Initialize router
	router := http.NewRouter(
		handler.NewAuthHandler(authUseCase),
		handler.NewProfileHandler(profileUseCase),
		handler.NewInterestHandler(profileUseCase),
		handler.NewPhotoHandler(photoUseCase, cfg.Media.MaxUploadBytes),
		middleware.NewAuthMiddleware(authUseCase),
		cfg.Server.CORSAllowedOrigins,
		logger,
	)

	ginRouter := router.Setup()
	ginRouter.MaxMultipartMemory = cfg.Media.MaxUploadBytes

	c.Server = server.NewServer(&cfg.Server, ginRouter, logger)
	return c, nil
}

func (c *Container) overrideRepository(ctx context.Context) (repository.OverrideRepository, error) {
	cfg := c.Config
	c.Logger.Info("initializing override store", zap.String("type", cfg.Storage.Type))

	switch cfg.Storage.Type {
	case config.StorageRedis:
		redisClient, err := database.NewRedisClient(&cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		c.Redis = redisClient
		return redisrepo.NewOverrideRepository(redisClient, cfg.Storage.OverrideTTL), nil

	case config.StoragePostgres:
		db, err := database.NewPostgresDB(&cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		c.DB = db
		if err := database.MigrateOverrides(ctx, db); err != nil {
			return nil, err
		}
		return postgres.NewOverrideRepository(db), nil

	default:
		return memory.NewOverrideRepository(), nil
	}
}

// Close closes all connections
func (c *Container) Close() error {
	if c.stop != nil {
		c.stop()
	}

	if c.Gemini != nil {
		c.Gemini.Close()
	}

	// Close Redis
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Logger.Warn("error closing redis", zap.Error(err))
		}
	}

	// Close database
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}

	return nil
}
