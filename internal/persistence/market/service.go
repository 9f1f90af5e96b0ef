package marketpersist

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
	gocache "github.com/zeromicro/go-zero/core/stores/cache"
	"github.com/zeromicro/go-zero/core/stores/sqlx"

	cachekeys "coinlens-api/internal/cache"
	"coinlens-api/pkg/market"
)

var _ market.Persistence = (*Service)(nil)

// Service persists provider reads to SQL and mirrors the latest payloads into
// Redis. SQL is the source of truth; Redis failures are logged and ignored.
type Service struct {
	sqlConn sqlx.SqlConn
	cache   gocache.Cache
	ttl     cachekeys.TTLSet
}

// Config enumerates dependencies required to persist market data.
type Config struct {
	SQLConn sqlx.SqlConn
	Cache   gocache.Cache
	TTL     cachekeys.TTLSet
}

// NewService wires a market persistence service. Returns nil when the SQL
// connection is missing.
func NewService(cfg Config) *Service {
	if cfg.SQLConn == nil {
		return nil
	}
	return &Service{
		sqlConn: cfg.SQLConn,
		cache:   cfg.Cache,
		ttl:     cfg.TTL,
	}
}

// Schema creates the tables used by Service. Statements are portable between
// Postgres and SQLite.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS asset_snapshots (
    provider TEXT NOT NULL,
    asset_id TEXT NOT NULL,
    captured_at BIGINT NOT NULL,
    symbol TEXT NOT NULL,
    name TEXT NOT NULL,
    current_price DOUBLE PRECISION NOT NULL,
    market_cap DOUBLE PRECISION NOT NULL,
    market_cap_rank INTEGER NOT NULL,
    total_volume DOUBLE PRECISION NOT NULL,
    change_24h DOUBLE PRECISION NOT NULL,
    change_7d DOUBLE PRECISION,
    change_30d DOUBLE PRECISION,
    image TEXT NOT NULL,
    last_updated BIGINT NOT NULL,
    PRIMARY KEY (provider, asset_id, captured_at)
)`,
	`CREATE TABLE IF NOT EXISTS historical_series (
    provider TEXT NOT NULL,
    asset_id TEXT NOT NULL,
    window_days INTEGER NOT NULL,
    captured_at BIGINT NOT NULL,
    payload TEXT NOT NULL,
    PRIMARY KEY (provider, asset_id, window_days, captured_at)
)`,
}

// EnsureSchema creates the tables if they do not exist.
func (s *Service) EnsureSchema(ctx context.Context) error {
	for _, stmt := range Schema {
		if _, err := s.sqlConn.ExecCtx(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

const snapshotColumns = `asset_id, symbol, name, current_price, market_cap, market_cap_rank, total_volume, change_24h, change_7d, change_30d, image, last_updated`

type snapshotRow struct {
	AssetID      string          `db:"asset_id"`
	Symbol       string          `db:"symbol"`
	Name         string          `db:"name"`
	CurrentPrice float64         `db:"current_price"`
	MarketCap    float64         `db:"market_cap"`
	Rank         int64           `db:"market_cap_rank"`
	TotalVolume  float64         `db:"total_volume"`
	Change24h    float64         `db:"change_24h"`
	Change7d     sql.NullFloat64 `db:"change_7d"`
	Change30d    sql.NullFloat64 `db:"change_30d"`
	Image        string          `db:"image"`
	LastUpdated  int64           `db:"last_updated"`
}

func (r snapshotRow) toSnapshot() market.AssetSnapshot {
	snap := market.AssetSnapshot{
		ID:           r.AssetID,
		Symbol:       r.Symbol,
		Name:         r.Name,
		CurrentPrice: r.CurrentPrice,
		MarketCap:    r.MarketCap,
		Rank:         int(r.Rank),
		TotalVolume:  r.TotalVolume,
		Change24h:    r.Change24h,
		Image:        r.Image,
	}
	if r.Change7d.Valid {
		v := r.Change7d.Float64
		snap.Change7d = &v
	}
	if r.Change30d.Valid {
		v := r.Change30d.Float64
		snap.Change30d = &v
	}
	if r.LastUpdated > 0 {
		snap.LastUpdated = time.UnixMilli(r.LastUpdated).UTC()
	}
	return snap
}

// StoreSnapshots upserts the whole batch in one transaction, keyed by
// (provider, asset_id, captured_at).
func (s *Service) StoreSnapshots(ctx context.Context, provider string, snapshots []market.AssetSnapshot, capturedAt time.Time) error {
	if s == nil || s.sqlConn == nil || len(snapshots) == 0 {
		return nil
	}
	stmt := `
INSERT INTO asset_snapshots (
    provider, asset_id, captured_at, symbol, name, current_price, market_cap, market_cap_rank,
    total_volume, change_24h, change_7d, change_30d, image, last_updated
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
)
ON CONFLICT (provider, asset_id, captured_at) DO UPDATE SET
    symbol = EXCLUDED.symbol,
    name = EXCLUDED.name,
    current_price = EXCLUDED.current_price,
    market_cap = EXCLUDED.market_cap,
    market_cap_rank = EXCLUDED.market_cap_rank,
    total_volume = EXCLUDED.total_volume,
    change_24h = EXCLUDED.change_24h,
    change_7d = EXCLUDED.change_7d,
    change_30d = EXCLUDED.change_30d,
    image = EXCLUDED.image,
    last_updated = EXCLUDED.last_updated;`
	ts := capturedAt.UTC().UnixMilli()
	err := s.sqlConn.TransactCtx(ctx, func(ctx context.Context, session sqlx.Session) error {
		for _, snap := range snapshots {
			if strings.TrimSpace(snap.ID) == "" {
				continue
			}
			var lastUpdated int64
			if !snap.LastUpdated.IsZero() {
				lastUpdated = snap.LastUpdated.UTC().UnixMilli()
			}
			if _, err := session.ExecCtx(ctx, stmt,
				provider,
				snap.ID,
				ts,
				snap.Symbol,
				snap.Name,
				snap.CurrentPrice,
				snap.MarketCap,
				snap.Rank,
				snap.TotalVolume,
				snap.Change24h,
				nullFloat(snap.Change7d),
				nullFloat(snap.Change30d),
				snap.Image,
				lastUpdated,
			); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.refreshSnapshots(ctx, provider)
	return nil
}

// refreshSnapshots writes the committed latest-per-asset view through to the
// cache so a read racing this store cannot pin an older view for long.
func (s *Service) refreshSnapshots(ctx context.Context, provider string) {
	if s.cache == nil {
		return
	}
	key := cachekeys.SnapshotsKey(provider)
	ttl := cachekeys.SnapshotsTTL(s.ttl)
	if ttl <= 0 {
		s.invalidate(ctx, key)
		return
	}
	latest, err := s.querySnapshots(ctx, provider)
	if err == nil {
		err = s.cache.SetWithExpireCtx(ctx, key, latest, ttl)
	}
	if err != nil {
		logx.WithContext(ctx).Errorf("marketpersist: refresh key=%s err=%v", key, err)
		s.invalidate(ctx, key)
	}
}

// LoadSnapshots returns the most recent row per asset ordered by rank.
func (s *Service) LoadSnapshots(ctx context.Context, provider string, limit int) ([]market.AssetSnapshot, error) {
	if s == nil || s.sqlConn == nil {
		return nil, market.ErrCacheMiss
	}
	key := cachekeys.SnapshotsKey(provider)
	if s.cache != nil {
		var cached []market.AssetSnapshot
		err := s.cache.GetCtx(ctx, key, &cached)
		switch {
		case err == nil && len(cached) > 0:
			return truncate(cached, limit), nil
		case err != nil && !s.cache.IsNotFound(err):
			logx.WithContext(ctx).Errorf("marketpersist: cache get key=%s err=%v", key, err)
		}
	}

	out, err := s.querySnapshots(ctx, provider)
	if err != nil {
		return nil, err
	}
	s.mirror(ctx, key, out, cachekeys.SnapshotsReadTTL(s.ttl))
	return truncate(out, limit), nil
}

func (s *Service) querySnapshots(ctx context.Context, provider string) ([]market.AssetSnapshot, error) {
	query := `
SELECT ` + snapshotColumns + `
FROM asset_snapshots s
WHERE s.provider = $1
  AND s.captured_at = (
    SELECT MAX(captured_at) FROM asset_snapshots
    WHERE provider = $1 AND asset_id = s.asset_id
  )
ORDER BY s.market_cap_rank ASC, s.asset_id ASC`
	var rows []snapshotRow
	if err := s.sqlConn.QueryRowsCtx(ctx, &rows, query, provider); err != nil {
		if errors.Is(err, sqlx.ErrNotFound) {
			return nil, market.ErrCacheMiss
		}
		return nil, err
	}
	if len(rows) == 0 {
		return nil, market.ErrCacheMiss
	}
	out := make([]market.AssetSnapshot, len(rows))
	for i, row := range rows {
		out[i] = row.toSnapshot()
	}
	return out, nil
}

// StoreSeries records the series keyed by (provider, asset_id, window_days, captured_at).
func (s *Service) StoreSeries(ctx context.Context, provider, assetID string, windowDays int, series *market.TimeSeries, capturedAt time.Time) error {
	if s == nil || s.sqlConn == nil || series == nil {
		return nil
	}
	payload, err := market.EncodeSeries(series)
	if err != nil {
		return err
	}
	stmt := `
INSERT INTO historical_series (provider, asset_id, window_days, captured_at, payload)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (provider, asset_id, window_days, captured_at) DO UPDATE SET
    payload = EXCLUDED.payload;`
	if _, err := s.sqlConn.ExecCtx(ctx, stmt, provider, assetID, windowDays, capturedAt.UTC().UnixMilli(), string(payload)); err != nil {
		return err
	}
	s.mirror(ctx, cachekeys.SeriesKey(provider, assetID, windowDays), series, cachekeys.SeriesTTL(s.ttl))
	return nil
}

// LoadSeries returns the most recently captured series for (provider, asset, window).
func (s *Service) LoadSeries(ctx context.Context, provider, assetID string, windowDays int) (*market.TimeSeries, error) {
	if s == nil || s.sqlConn == nil {
		return nil, market.ErrCacheMiss
	}
	key := cachekeys.SeriesKey(provider, assetID, windowDays)
	if s.cache != nil {
		var cached market.TimeSeries
		err := s.cache.GetCtx(ctx, key, &cached)
		switch {
		case err == nil:
			return &cached, nil
		case !s.cache.IsNotFound(err):
			logx.WithContext(ctx).Errorf("marketpersist: cache get key=%s err=%v", key, err)
		}
	}

	var payload string
	query := `
SELECT payload FROM historical_series
WHERE provider = $1 AND asset_id = $2 AND window_days = $3
ORDER BY captured_at DESC
LIMIT 1`
	if err := s.sqlConn.QueryRowCtx(ctx, &payload, query, provider, assetID, windowDays); err != nil {
		if errors.Is(err, sqlx.ErrNotFound) {
			return nil, market.ErrCacheMiss
		}
		return nil, err
	}
	series, err := market.DecodeSeries(key, []byte(payload))
	if err != nil {
		return nil, err
	}
	s.mirror(ctx, key, series, cachekeys.SeriesTTL(s.ttl))
	return series, nil
}

func (s *Service) mirror(ctx context.Context, key string, val any, ttl time.Duration) {
	if s.cache == nil || ttl <= 0 {
		return
	}
	if err := s.cache.SetWithExpireCtx(ctx, key, val, ttl); err != nil {
		logx.WithContext(ctx).Errorf("marketpersist: cache set key=%s err=%v", key, err)
	}
}

func (s *Service) invalidate(ctx context.Context, key string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DelCtx(ctx, key); err != nil {
		logx.WithContext(ctx).Errorf("marketpersist: cache del key=%s err=%v", key, err)
	}
}

func truncate(in []market.AssetSnapshot, limit int) []market.AssetSnapshot {
	if limit > 0 && len(in) > limit {
		in = in[:limit]
	}
	return market.CloneSnapshots(in)
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
