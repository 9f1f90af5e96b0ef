package coingecko

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	marketpkg "coinlens-api/pkg/market"
)

// persistSnapshots writes the snapshot batch to the persistence hook (if configured)
// and logs errors without blocking the data path.
func (p *Provider) persistSnapshots(ctx context.Context, snapshots []marketpkg.AssetSnapshot) {
	if p.persistence == nil || len(snapshots) == 0 {
		return
	}
	if err := p.persistence.StoreSnapshots(ctx, p.providerName(), snapshots, p.now().UTC()); err != nil {
		logx.WithContext(ctx).Errorf("coingecko: persist snapshots provider=%s count=%d err=%v", p.providerName(), len(snapshots), err)
	}
}

// persistSeries writes a fetched series for (asset, window) to the persistence hook.
func (p *Provider) persistSeries(ctx context.Context, req marketpkg.SeriesRequest, series *marketpkg.TimeSeries) {
	if p.persistence == nil || series == nil {
		return
	}
	if err := p.persistence.StoreSeries(ctx, p.providerName(), req.AssetID, req.WindowDays, series, p.now().UTC()); err != nil {
		logx.WithContext(ctx).Errorf("coingecko: persist series provider=%s asset=%s days=%d err=%v", p.providerName(), req.AssetID, req.WindowDays, err)
	}
}
