package logic

import (
	"context"
	"fmt"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"coinlens-api/internal/svc"
	"coinlens-api/internal/types"
	"coinlens-api/pkg/market"
	"coinlens-api/pkg/market/chart"
	"coinlens-api/pkg/market/indicators"
	"coinlens-api/pkg/viewstate"
)

const candleInterval = "hourly"

type CandlesLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewCandlesLogic(ctx context.Context, svcCtx *svc.ServiceContext) *CandlesLogic {
	return &CandlesLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// Candles aggregates hourly history into daily candles and slices the visible
// window. With an owner, the range and position come from (and are saved back
// to) that owner's view state.
func (l *CandlesLogic) Candles(req *types.CandlesRequest) (*types.CandlesResponse, error) {
	dir, err := parseDirection(req.Direction)
	if err != nil {
		return nil, err
	}
	var (
		state *viewstate.State
		token viewstate.Token
	)
	if req.Owner != "" {
		token = l.svcCtx.ViewState.Begin(req.Owner)
		if state, err = l.svcCtx.ViewState.Load(l.ctx, req.Owner); err != nil {
			return nil, err
		}
		if req.CoinID == "" {
			req.CoinID = state.SelectedAsset
		}
	}

	res, err := l.svcCtx.Fallback.SeriesWithInterval(l.ctx, market.SeriesRequest{
		AssetID:    req.CoinID,
		WindowDays: req.Days,
		Interval:   candleInterval,
	})
	if err != nil {
		return nil, err
	}
	var prices, volumes []market.Point
	if res.Series != nil {
		prices, volumes = res.Series.Prices, res.Series.TotalVolumes
	}
	candles := chart.DailyCandles(prices, volumes)

	var view chart.Viewport
	rangeLabel := req.Range
	if state != nil {
		state.Select(res.AssetID)
		if rangeLabel != "" {
			state.SetRange(rangeLabel, len(candles))
		}
		view = state.Viewport(len(candles))
		if dir != "" {
			view = state.Slide(dir, len(candles))
		}
		state.Index = view.Index
		rangeLabel = state.Range
		l.commitView(req.Owner, token, state)
	} else {
		if rangeLabel == "" {
			rangeLabel = "30d"
		}
		view = chart.NewViewport(len(candles), chart.RangeDays(rangeLabel), req.Index)
		if dir != "" {
			view = view.Slide(dir)
		}
	}

	start, end := view.Bounds()
	overlay := indicators.Compute(chart.Closes(candles)).Window(start, end)
	return &types.CandlesResponse{
		CoinID:   res.AssetID,
		Range:    rangeLabel,
		Source:   string(res.Source),
		Viewport: view,
		Candles:  view.Visible(candles),
		Overlay:  overlay,
	}, nil
}

// commitView stores the viewed asset and window unless a newer request for the
// owner started meanwhile. Favorites are taken from the stored state.
func (l *CandlesLogic) commitView(owner string, token viewstate.Token, viewed *viewstate.State) {
	_, applied, err := l.svcCtx.ViewState.Commit(l.ctx, owner, token, func(s *viewstate.State) {
		s.SelectedAsset = viewed.SelectedAsset
		s.Range = viewed.Range
		s.Index = viewed.Index
	})
	switch {
	case err != nil:
		l.Errorf("candles: save view state owner=%s err=%v", owner, err)
	case !applied:
		l.Infof("candles: stale view for owner=%s asset=%s discarded", owner, viewed.SelectedAsset)
	}
}

func parseDirection(raw string) (chart.Direction, error) {
	switch d := chart.Direction(strings.ToLower(strings.TrimSpace(raw))); d {
	case "", chart.Left, chart.Right:
		return d, nil
	default:
		return "", &market.ValidationError{Field: "direction", Reason: fmt.Sprintf("must be left or right, got %q", raw)}
	}
}
