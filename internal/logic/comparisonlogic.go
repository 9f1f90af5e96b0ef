package logic

import (
	"context"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"coinlens-api/internal/svc"
	"coinlens-api/internal/types"
	"coinlens-api/pkg/market/chart"
)

type ComparisonLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewComparisonLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ComparisonLogic {
	return &ComparisonLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// Comparison joins one fallback read per coin, then aligns and normalizes the
// selected field onto the densest price axis.
func (l *ComparisonLogic) Comparison(req *types.ComparisonRequest) (*types.ComparisonResponse, error) {
	res, err := l.svcCtx.Fallback.Comparison(l.ctx, strings.Split(req.Coins, ","), req.Days)
	if err != nil {
		return nil, err
	}
	series := res.SeriesMap()
	sources := make(map[string]string, len(res.AssetIDs))
	for _, id := range res.AssetIDs {
		sources[id] = string(res.Results[id].Source)
	}
	aligned := chart.AlignSeries(res.AssetIDs, series, comparisonField(req.Field))
	l.Infof("comparison coins=%v days=%d points=%d", res.AssetIDs, res.WindowDays, len(aligned))
	return &types.ComparisonResponse{
		Coins:      res.AssetIDs,
		Days:       res.WindowDays,
		Series:     series,
		Sources:    sources,
		Aligned:    aligned,
		Normalized: chart.Normalize(aligned),
	}, nil
}

func comparisonField(name string) chart.Field {
	switch name {
	case "market_cap":
		return chart.FieldMarketCap
	case "volume":
		return chart.FieldVolume
	default:
		return chart.FieldPrice
	}
}
