package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"coinlens-api/internal/svc"
	"coinlens-api/internal/types"
	"coinlens-api/pkg/market"
)

type HistoricalLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewHistoricalLogic(ctx context.Context, svcCtx *svc.ServiceContext) *HistoricalLogic {
	return &HistoricalLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *HistoricalLogic) Historical(req *types.HistoricalRequest) (*types.HistoricalResponse, error) {
	res, err := l.svcCtx.Fallback.SeriesWithInterval(l.ctx, market.SeriesRequest{
		AssetID:    req.CoinID,
		WindowDays: req.Days,
		Interval:   req.Interval,
	})
	if err != nil {
		return nil, err
	}
	return &types.HistoricalResponse{
		CoinID: res.AssetID,
		Days:   res.WindowDays,
		Source: string(res.Source),
		Cause:  causeString(res.Cause),
		Data:   res.Series,
	}, nil
}
