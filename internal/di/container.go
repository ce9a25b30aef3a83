package di

import (
	"database/sql"
	"fmt"

	repocache "github.com/goliatone/go-repository-cache/cache"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	adapters "github.com/goliatone/go-translate/internal/adapters/memory"
	"github.com/goliatone/go-translate/internal/cache"
	"github.com/goliatone/go-translate/internal/ledger"
	"github.com/goliatone/go-translate/internal/logging"
	"github.com/goliatone/go-translate/internal/logging/gologger"
	"github.com/goliatone/go-translate/internal/preview"
	"github.com/goliatone/go-translate/internal/provider"
	"github.com/goliatone/go-translate/internal/provider/deepl"
	"github.com/goliatone/go-translate/internal/provider/google"
	"github.com/goliatone/go-translate/internal/ratelimit"
	"github.com/goliatone/go-translate/internal/rules"
	"github.com/goliatone/go-translate/internal/runtimeconfig"
	"github.com/goliatone/go-translate/internal/translator"
	"github.com/goliatone/go-translate/pkg/interfaces"
)

// Container wires module dependencies.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider

	documents  interfaces.ContentStore
	navigation interfaces.NavigationStore
	backend    interfaces.CacheProvider

	bunDB         *bun.DB
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	limiter  *ratelimit.Limiter
	cache    *cache.Cache
	registry *provider.Registry
	jobRepo  ledger.Repository
	jobs     *ledger.Service
	previews *preview.Store
	engine   *rules.Engine
	svc      *translator.Service
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithContentStore plugs in the host CMS document store.
func WithContentStore(store interfaces.ContentStore) Option {
	return func(c *Container) {
		c.documents = store
	}
}

// WithNavigationStore plugs in the host CMS menu store.
func WithNavigationStore(store interfaces.NavigationStore) Option {
	return func(c *Container) {
		c.navigation = store
	}
}

// WithCacheBackend overrides the TTL key-value store backing the translation
// cache's slow tier and the preview store. Multi-process deployments should
// point this at a shared store.
func WithCacheBackend(backend interfaces.CacheProvider) Option {
	return func(c *Container) {
		c.backend = backend
	}
}

// WithBunDB supplies an already-open database for job persistence.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithRepositoryCache overrides the read-through cache wrapping the bun job
// repository.
func WithRepositoryCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithLoggerProvider overrides the configured logger provider.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// NewContainer builds the full dependency graph from the configuration.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{Config: cfg}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.configureLogging(); err != nil {
		return nil, err
	}
	if c.backend == nil {
		c.backend = adapters.NewCacheProvider()
	}
	if c.documents == nil {
		c.documents = adapters.NewContentStore()
	}
	if c.navigation == nil {
		c.navigation = adapters.NewNavigationStore()
	}

	c.configureDispatch()
	if err := c.configureLedger(); err != nil {
		return nil, err
	}

	engine, err := rules.NewEngine(rules.RuleSet{
		IncludeTypes:       cfg.Rules.IncludeTypes,
		ExcludeContentIDs:  cfg.Rules.ExcludeContentIDs,
		ExcludeTemplateIDs: cfg.Rules.ExcludeTemplateIDs,
		ExcludeFieldKeys:   cfg.Rules.ExcludeFieldKeys,
		ExcludeSelectors:   cfg.Rules.ExcludeSelectors,
	})
	if err != nil {
		return nil, err
	}
	c.engine = engine

	c.previews = preview.NewStore(c.backend,
		preview.WithTTL(cfg.Preview.TTL),
		preview.WithLogger(logging.ModuleLogger(c.loggerProvider, "translate.preview")),
	)

	c.svc = translator.NewService(
		cfg,
		c.documents,
		c.navigation,
		c.registry,
		c.jobs,
		c.previews,
		c.engine,
		c.cache,
		translator.WithLogger(logging.RunnerLogger(c.loggerProvider)),
	)

	return c, nil
}

func (c *Container) configureLogging() error {
	if c.loggerProvider != nil {
		return nil
	}
	switch c.Config.Logging.Provider {
	case "noop":
		return nil
	default:
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     c.Config.Logging.Level,
			Format:    c.Config.Logging.Format,
			AddSource: c.Config.Logging.AddSource,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
		return nil
	}
}

// configureDispatch builds the limiter, the translation cache, and the
// provider registry. Both vendors register unconditionally; a vendor with no
// credentials fails at call time, not at wiring time.
func (c *Container) configureDispatch() {
	c.limiter = ratelimit.New(ratelimit.Caps{
		RequestsPerMinute:   c.Config.Limits.RequestsPerMinute,
		CharactersPerMinute: c.Config.Limits.CharactersPerMinute,
		CharactersPerHour:   c.Config.Limits.CharactersPerHour,
	}, ratelimit.WithLogger(logging.RateLimitLogger(c.loggerProvider)))

	c.cache = cache.New(
		cache.WithTTL(c.Config.Cache.TTL),
		cache.WithSlowTier(c.backend),
		cache.WithLogger(logging.CacheLogger(c.loggerProvider)),
	)

	providerLogger := logging.ProviderLogger(c.loggerProvider)
	c.registry = provider.NewRegistry(provider.WithRegistryLogger(providerLogger))
	c.registry.Register(deepl.New(deepl.Config{
		APIKey: c.Config.DeepL.APIKey,
		APIURL: c.Config.DeepL.APIURL,
	}, deepl.WithRateLimiter(c.limiter), deepl.WithLogger(providerLogger)))
	c.registry.Register(google.New(google.Config{
		ProjectID:          c.Config.Google.ProjectID,
		Location:           c.Config.Google.Location,
		APIKey:             c.Config.Google.APIKey,
		ServiceAccountJSON: c.Config.Google.ServiceAccountJSON,
	}, google.WithRateLimiter(c.limiter), google.WithLogger(providerLogger)))
}

func (c *Container) configureLedger() error {
	switch c.Config.Storage.Driver {
	case "", "memory":
		c.jobRepo = ledger.NewMemoryRepository()
	case "sqlite":
		if c.bunDB == nil {
			sqldb, err := sql.Open("sqlite3", c.Config.Storage.DSN)
			if err != nil {
				return fmt.Errorf("open job storage: %w", err)
			}
			c.bunDB = bun.NewDB(sqldb, sqlitedialect.New())
		}
		c.configureRepositoryCache()
		c.jobRepo = ledger.NewBunRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
	default:
		if c.bunDB == nil {
			return fmt.Errorf("unsupported storage driver %q without an injected database", c.Config.Storage.Driver)
		}
		c.configureRepositoryCache()
		c.jobRepo = ledger.NewBunRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
	}

	c.jobs = ledger.NewService(c.jobRepo,
		ledger.WithMaxJobs(c.Config.Retention.MaxJobs),
		ledger.WithLogger(logging.LedgerLogger(c.loggerProvider)),
		ledger.WithContentStore(c.documents),
		ledger.WithNavigationStore(c.navigation),
	)
	return nil
}

func (c *Container) configureRepositoryCache() {
	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.Config.Cache.TTL > 0 {
			cfg.TTL = c.Config.Cache.TTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err != nil {
			return
		}
		c.cacheService = service
	}
	if c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

// Translator returns the orchestration service.
func (c *Container) Translator() *translator.Service {
	return c.svc
}

// Registry exposes the provider registry for host extensions.
func (c *Container) Registry() *provider.Registry {
	return c.registry
}

// Jobs exposes the ledger service.
func (c *Container) Jobs() *ledger.Service {
	return c.jobs
}

// Previews exposes the preview store.
func (c *Container) Previews() *preview.Store {
	return c.previews
}

// RateLimiter exposes the shared admission limiter.
func (c *Container) RateLimiter() *ratelimit.Limiter {
	return c.limiter
}

// Cache exposes the translation cache.
func (c *Container) Cache() *cache.Cache {
	return c.cache
}

// ContentStore returns the wired document store.
func (c *Container) ContentStore() interfaces.ContentStore {
	return c.documents
}

// NavigationStore returns the wired menu store.
func (c *Container) NavigationStore() interfaces.NavigationStore {
	return c.navigation
}

// LoggerProvider returns the active logger provider, which may be nil when
// logging is configured to noop.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}
