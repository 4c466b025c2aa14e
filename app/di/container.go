package di

import (
	"fmt"
	"log/slog"

	"github.com/labstack/echo/v4"

	"member-portal/app/cache"
	"member-portal/app/config"
	"member-portal/app/domain"
	"member-portal/app/driver/local"
	"member-portal/app/driver/remote"
	"member-portal/app/gateway"
	"member-portal/app/port"
	"member-portal/app/rest"
	"member-portal/app/token"
	"member-portal/app/usecase"
)

// Container holds all dependencies for the application. Construction is
// where the storage mode is resolved: exactly one backend adapter is built,
// and every session operation routes through it for the container's
// lifetime. Switching modes means closing this container (tearing down the
// session) and building a new one.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Core session state
	Tokens       *token.Manager
	SessionCache *cache.SessionCache

	// LocalStore and LocalAdapter are set only in local mode; LocalAdapter
	// additionally exposes member registration for seeding.
	LocalStore   *local.Store
	LocalAdapter *local.Adapter

	SessionUsecase port.SessionUsecase
}

// NewContainer creates and initializes a new dependency injection container
func NewContainer(cfg *config.Config, logger *slog.Logger) (*Container, error) {
	container := &Container{
		Config:       cfg,
		Logger:       logger,
		Tokens:       token.NewManager(),
		SessionCache: cache.NewSessionCache(),
	}

	// Mode selector: read once, never polled
	var adapter port.SessionAdapter
	switch cfg.StorageMode {
	case domain.ModeRemote:
		remoteAdapter, err := remote.NewAdapter(cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize remote adapter: %w", err)
		}
		adapter = remoteAdapter

	case domain.ModeLocal:
		store, err := local.OpenStore(cfg.LocalDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize local store: %w", err)
		}
		container.LocalStore = store
		container.LocalAdapter = local.NewAdapter(store, cfg, logger)
		adapter = container.LocalAdapter

	default:
		return nil, fmt.Errorf("unknown storage mode: %s", cfg.StorageMode)
	}

	sessionGateway := gateway.NewSessionGateway(adapter, logger)
	container.SessionUsecase = usecase.NewSessionUsecase(
		container.Tokens,
		container.SessionCache,
		sessionGateway,
		logger,
	)

	logger.Info("container initialized", "mode", cfg.StorageMode)
	return container, nil
}

// CreateRouter creates and returns a fully configured Echo router
func (c *Container) CreateRouter() *echo.Echo {
	return rest.NewRouter(rest.RouterConfig{
		Logger:         c.Logger,
		SessionUsecase: c.SessionUsecase,
		EnableDebug:    c.Config.LogLevel == "debug",
	})
}

// Close closes all resources
func (c *Container) Close() error {
	if c.LocalStore != nil {
		return c.LocalStore.Close()
	}
	return nil
}
