package svc

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx driver
	_ "github.com/mattn/go-sqlite3"     // register sqlite3 driver
	"github.com/zeromicro/go-zero/core/logx"
	gocache "github.com/zeromicro/go-zero/core/stores/cache"
	"github.com/zeromicro/go-zero/core/stores/redis"
	"github.com/zeromicro/go-zero/core/stores/sqlx"
	"github.com/zeromicro/go-zero/core/syncx"

	cachekeys "coinlens-api/internal/cache"
	"coinlens-api/internal/collector"
	"coinlens-api/internal/config"
	marketpersist "coinlens-api/internal/persistence/market"
	marketpkg "coinlens-api/pkg/market"
	_ "coinlens-api/pkg/market/exchanges/coingecko"
	"coinlens-api/pkg/market/fallback"
	"coinlens-api/pkg/market/memory"
	"coinlens-api/pkg/viewstate"
)

type ServiceContext struct {
	Config config.Config
	TTL    cachekeys.TTLSet

	MarketConfig    *marketpkg.Config
	MarketProviders map[string]marketpkg.Fetcher
	ProviderName    string
	DefaultMarket   marketpkg.Fetcher

	// Optional stores; nil when not configured.
	DBConn sqlx.SqlConn
	Redis  *redis.Redis
	Cache  gocache.Cache

	Persistence marketpkg.Persistence
	Fallback    *fallback.Service
	ViewState   *viewstate.Repository
	Collector   *collector.Job
	Refresher   *SnapshotRefresher
}

// DefaultMarketConfig is used when no market section is configured: a single
// CoinGecko provider with stock settings.
func DefaultMarketConfig() *marketpkg.Config {
	return &marketpkg.Config{
		Default: "coingecko",
		Providers: map[string]*marketpkg.ProviderConfig{
			"coingecko": {Type: "coingecko"},
		},
	}
}

func MustNewServiceContext(c config.Config) *ServiceContext {
	svc, err := NewServiceContext(c)
	logx.Must(err)
	return svc
}

func NewServiceContext(c config.Config) (*ServiceContext, error) {
	svc := &ServiceContext{
		Config: c,
		TTL:    cachekeys.NewTTLSet(c.TTL),
	}

	if c.HasRedis() {
		rds, err := redis.NewRedis(c.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		svc.Redis = rds
		svc.Cache = gocache.NewNode(rds, syncx.NewSingleFlight(), gocache.NewStat("coinlens"), marketpkg.ErrCacheMiss,
			gocache.WithExpiry(cachekeys.SeriesTTL(svc.TTL)))
		svc.ViewState = viewstate.NewRepository(viewstate.NewRedisKV(rds, cachekeys.ViewStateTTL()), cachekeys.ViewStateKey)
	} else {
		svc.ViewState = viewstate.NewRepository(viewstate.NewMemoryKV(), cachekeys.ViewStateKey)
	}

	// SQL persistence when a DSN is configured; otherwise keep the latest reads in memory.
	if c.HasStore() {
		conn, err := openStore(c.Store)
		if err != nil {
			return nil, err
		}
		svc.DBConn = conn
		persist := marketpersist.NewService(marketpersist.Config{
			SQLConn: conn,
			Cache:   svc.Cache,
			TTL:     svc.TTL,
		})
		if c.Store.AutoMigrate {
			if err := persist.EnsureSchema(context.Background()); err != nil {
				return nil, fmt.Errorf("migrate store: %w", err)
			}
		}
		svc.Persistence = persist
	} else {
		svc.Persistence = memory.New()
	}

	marketCfg := c.Market.Value
	if marketCfg == nil {
		marketCfg = DefaultMarketConfig()
	}
	providers, err := marketCfg.BuildProviders(svc.Persistence)
	if err != nil {
		return nil, fmt.Errorf("build market providers: %w", err)
	}
	name, fetcher, err := marketCfg.DefaultProvider(providers)
	if err != nil {
		return nil, err
	}
	svc.MarketConfig = marketCfg
	svc.MarketProviders = providers
	svc.ProviderName = name
	svc.DefaultMarket = fetcher

	svc.Fallback = fallback.NewService(fetcher, svc.Persistence, fallback.WithProviderName(name))
	svc.Collector = collector.NewJob(fetcher, c.CollectorConfig())
	svc.Refresher = NewSnapshotRefresher(svc.Fallback, c.Poll.Limit, time.Duration(c.Poll.Interval)*time.Second)
	return svc, nil
}

func openStore(c config.StoreConf) (sqlx.SqlConn, error) {
	db, err := sql.Open(c.Driver, c.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", c.Driver, err)
	}
	maxOpen, maxIdle := c.MaxOpen, c.MaxIdle
	if c.Driver == config.DriverSQLite {
		// One writer at a time; in-memory databases are per connection.
		maxOpen, maxIdle = 1, 1
	}
	if maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
	}
	if maxIdle > 0 {
		db.SetMaxIdleConns(maxIdle)
	}
	return sqlx.NewSqlConnFromDB(db), nil
}

// Start launches background work owned by the context.
func (s *ServiceContext) Start(ctx context.Context) error {
	if s.Config.Poll.Disabled || s.Refresher == nil {
		return nil
	}
	return s.Refresher.Start(ctx)
}

// Stop halts background work. Safe to call more than once.
func (s *ServiceContext) Stop() {
	if s.Refresher != nil {
		s.Refresher.Stop()
	}
}

