package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"coinlens-api/internal/svc"
	"coinlens-api/internal/types"
	"coinlens-api/pkg/market"
)

type CryptoLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewCryptoLogic(ctx context.Context, svcCtx *svc.ServiceContext) *CryptoLogic {
	return &CryptoLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *CryptoLogic) Crypto(req *types.CryptoRequest) (*types.CryptoResponse, error) {
	res, err := l.svcCtx.Fallback.Snapshot(l.ctx, req.Limit)
	if err != nil {
		return nil, err
	}
	return &types.CryptoResponse{
		Source:  string(res.Source),
		Cause:   causeString(res.Cause),
		Data:    res.Assets,
		Summary: market.Summarize(res.Assets),
	}, nil
}

// Summary serves the market summary from the background refresher, refreshing
// on demand when nothing has been collected yet.
func (l *CryptoLogic) Summary() (*types.SummaryResponse, error) {
	refresher := l.svcCtx.Refresher
	res, at, ok := refresher.Latest()
	if !ok {
		if err := refresher.Refresh(l.ctx); err != nil {
			return nil, err
		}
		res, at, _ = refresher.Latest()
	}
	return &types.SummaryResponse{
		Source:      string(res.Source),
		RefreshedAt: at,
		Summary:     market.Summarize(res.Assets),
	}, nil
}

func causeString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
