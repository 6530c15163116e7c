package cli

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/formwizard"
	"github.com/aretw0/formwizard/internal/config"
	"github.com/aretw0/formwizard/pkg/adapters/file"
	"github.com/aretw0/formwizard/pkg/adapters/memory"
	"github.com/aretw0/formwizard/pkg/adapters/redis"
	"github.com/aretw0/formwizard/pkg/domain"
	"github.com/aretw0/formwizard/pkg/observability"
	"github.com/aretw0/formwizard/pkg/persistence/middleware"
	"github.com/aretw0/formwizard/pkg/ports"
	"github.com/aretw0/formwizard/pkg/session"
)

// NewEngine initializes an engine for cfg.Definition with standard CLI conventions.
// Extra hooks (metrics, for instance) are merged after the debug logging hooks.
func NewEngine(cfg *config.Config, logger *slog.Logger, hooks ...domain.LifecycleHooks) (*formwizard.Engine, error) {
	if cfg.Definition == "" {
		return nil, fmt.Errorf("no wizard definition given (use --definition or FORMWIZARD_DEFINITION)")
	}

	all := observability.LoggingHooks(logger.With("component", "hooks"))
	for _, h := range hooks {
		all = all.Merge(h)
	}

	engine, err := formwizard.New(cfg.Definition,
		formwizard.WithLogger(logger),
		formwizard.WithLifecycleHooks(all),
		formwizard.WithFirstStep(cfg.FirstStep),
	)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return engine, nil
}

// Persistence bundles the store selected by the configuration and its session manager.
type Persistence struct {
	Store   ports.StateStore
	Manager *session.Manager
	close   func() error
}

// Close releases backend connections.
func (p *Persistence) Close() error {
	if p.close == nil {
		return nil
	}
	return p.close()
}

// NewPersistence builds the state store for cfg.Store. Redis also provides a distributed locker.
// Masking and encryption wrap the backend when configured.
func NewPersistence(cfg *config.Config, logger *slog.Logger) (*Persistence, error) {
	p := &Persistence{}
	opts := []session.Option{session.WithLogger(logger)}

	switch cfg.Store {
	case config.StoreMemory:
		p.Store = memory.NewStore()
	case config.StoreFile:
		p.Store = file.NewStore(cfg.SessionDir)
	case config.StoreRedis:
		store := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, redis.WithTTL(cfg.SessionTTL))
		p.Store = store
		p.close = store.Close
		opts = append(opts, session.WithLocker(redis.NewLocker(store.Client(), store.Prefix())))
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}

	mws, err := storeMiddlewares(cfg)
	if err != nil {
		p.Close()
		return nil, err
	}
	p.Store = middleware.Chain(p.Store, mws...)

	p.Manager = session.NewManager(p.Store, opts...)
	return p, nil
}

func storeMiddlewares(cfg *config.Config) ([]middleware.Middleware, error) {
	var mws []middleware.Middleware
	if len(cfg.MaskFields) > 0 {
		mask, err := middleware.NewPIIMiddleware(cfg.MaskFields)
		if err != nil {
			return nil, err
		}
		mws = append(mws, mask)
	}
	if cfg.EncryptionKey != "" {
		enc := middleware.EncryptionConfig{}
		var err error
		if enc.ActiveKey, err = middleware.ParseKey(cfg.EncryptionKey); err != nil {
			return nil, err
		}
		for _, raw := range cfg.EncryptionFallbackKeys {
			key, err := middleware.ParseKey(raw)
			if err != nil {
				return nil, fmt.Errorf("fallback key: %w", err)
			}
			enc.FallbackKeys = append(enc.FallbackKeys, key)
		}
		seal, err := middleware.NewEncryptionMiddleware(enc)
		if err != nil {
			return nil, err
		}
		mws = append(mws, seal)
	}
	return mws, nil
}
