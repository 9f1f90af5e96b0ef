package coingecko

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"coinlens-api/pkg/market"
)

const (
	providerType           = "coingecko"
	defaultProviderTimeout = 15 * time.Second
)

// Provider wraps client calls behind the generic market.Fetcher contract and
// writes successful reads through to the persistence hook.
type Provider struct {
	client      *Client
	timeout     time.Duration
	persistence market.Persistence
	providerID  string
	now         func() time.Time
}

type providerConfig struct {
	timeout      time.Duration
	persistence  market.Persistence
	clientConfig []Option
}

// ProviderOption customises the provider.
type ProviderOption func(*providerConfig)

// WithTimeout overrides the default per-call timeout.
func WithTimeout(timeout time.Duration) ProviderOption {
	return func(cfg *providerConfig) {
		if timeout > 0 {
			cfg.timeout = timeout
		}
	}
}

// WithPersistence wires the write-through persistence hook.
func WithPersistence(persist market.Persistence) ProviderOption {
	return func(cfg *providerConfig) {
		cfg.persistence = persist
	}
}

// WithClientOptions passes options to the underlying client.
func WithClientOptions(options ...Option) ProviderOption {
	return func(cfg *providerConfig) {
		cfg.clientConfig = append(cfg.clientConfig, options...)
	}
}

// NewProvider constructs a market-data provider.
func NewProvider(opts ...ProviderOption) *Provider {
	cfg := &providerConfig{
		timeout: defaultProviderTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Provider{
		client:      NewClient(cfg.clientConfig...),
		timeout:     cfg.timeout,
		persistence: cfg.persistence,
		now:         time.Now,
	}
}

func init() {
	market.RegisterProvider(providerType, func(name string, cfg *market.ProviderConfig, persist market.Persistence) (market.Fetcher, error) {
		opts := []ProviderOption{WithPersistence(persist)}
		clientOptions := []Option{
			WithBaseURL(cfg.BaseURL),
			WithCurrency(cfg.Currency),
			WithAPIKey(cfg.APIKeyHeader, cfg.APIKey),
		}
		if cfg.Timeout > 0 {
			opts = append(opts, WithTimeout(cfg.Timeout))
		}
		if cfg.HTTPTimeout > 0 {
			clientOptions = append(clientOptions, WithHTTPTimeout(cfg.HTTPTimeout))
		}
		opts = append(opts, WithClientOptions(clientOptions...))
		provider := NewProvider(opts...)
		provider.providerID = name
		return provider, nil
	})
}

// Name implements market.Named.
func (p *Provider) Name() string {
	return p.providerName()
}

// FetchSnapshot implements market.Fetcher.
func (p *Provider) FetchSnapshot(ctx context.Context, limit int) ([]market.AssetSnapshot, error) {
	if err := market.ValidateLimit(limit); err != nil {
		return nil, err
	}
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	entries, err := p.client.GetMarkets(ctx, MarketsRequest{PerPage: limit, Page: 1})
	if err != nil {
		return nil, p.providerError("markets", "", err)
	}
	snapshots := rankSnapshots(entries, limit)
	p.persistSnapshots(ctx, snapshots)
	return market.CloneSnapshots(snapshots), nil
}

// FetchSeries implements market.Fetcher.
func (p *Provider) FetchSeries(ctx context.Context, req market.SeriesRequest) (*market.TimeSeries, error) {
	req.AssetID = strings.TrimSpace(req.AssetID)
	if err := market.ValidateSeriesRequest(req); err != nil {
		return nil, err
	}
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	chart, err := p.client.GetMarketChart(ctx, ChartRequest{AssetID: req.AssetID, Days: req.WindowDays, Interval: req.Interval})
	if err != nil {
		return nil, p.providerError("market_chart", req.AssetID, err)
	}
	series := (&market.TimeSeries{
		Prices:       chart.Prices,
		MarketCaps:   chart.MarketCaps,
		TotalVolumes: chart.TotalVolumes,
	}).Sanitize()
	p.persistSeries(ctx, req, series)
	return series.Clone(), nil
}

// rankSnapshots orders entries by descending market cap, truncates to limit and
// fills missing ranks from the resulting position.
func rankSnapshots(entries []MarketEntry, limit int) []market.AssetSnapshot {
	snapshots := make([]market.AssetSnapshot, 0, len(entries))
	for _, entry := range entries {
		if strings.TrimSpace(entry.ID) == "" {
			continue
		}
		snapshots = append(snapshots, entry.toSnapshot())
	}
	sort.SliceStable(snapshots, func(i, j int) bool {
		return snapshots[i].MarketCap > snapshots[j].MarketCap
	})
	if len(snapshots) > limit {
		snapshots = snapshots[:limit]
	}
	for i := range snapshots {
		if snapshots[i].Rank <= 0 {
			snapshots[i].Rank = i + 1
		}
	}
	return snapshots
}

func (p *Provider) providerError(op, assetID string, err error) error {
	pe := &market.ProviderError{Provider: p.providerName(), Op: op, AssetID: assetID, Err: err}
	var se *StatusError
	if errors.As(err, &se) {
		pe.StatusCode = se.StatusCode
	}
	return pe
}

func (p *Provider) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, p.timeout)
}

// SetPersistence wires a persistence layer for market data.
func (p *Provider) SetPersistence(persist market.Persistence) {
	p.persistence = persist
}

func (p *Provider) providerName() string {
	if strings.TrimSpace(p.providerID) != "" {
		return p.providerID
	}
	return providerType
}
