package logic

import (
	"context"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"coinlens-api/internal/svc"
	"coinlens-api/internal/types"
	"coinlens-api/pkg/market"
	"coinlens-api/pkg/viewstate"
)

const defaultOwner = "default"

type ViewStateLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewViewStateLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ViewStateLogic {
	return &ViewStateLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *ViewStateLogic) Get(req *types.ViewStateRequest) (*types.ViewStateResponse, error) {
	owner := ownerOrDefault(req.Owner)
	state, err := l.svcCtx.ViewState.Load(l.ctx, owner)
	if err != nil {
		return nil, err
	}
	return &types.ViewStateResponse{Owner: owner, State: state}, nil
}

func (l *ViewStateLogic) ToggleFavorite(req *types.FavoriteRequest) (*types.ViewStateResponse, error) {
	coinID := strings.TrimSpace(req.CoinID)
	if coinID == "" {
		return nil, &market.ValidationError{Field: "coinId", Reason: "required"}
	}
	owner := ownerOrDefault(req.Owner)
	var favorite bool
	state, err := l.svcCtx.ViewState.Update(l.ctx, owner, func(s *viewstate.State) {
		favorite = s.ToggleFavorite(coinID)
	})
	if err != nil {
		return nil, err
	}
	l.Infof("viewstate: owner=%s coin=%s favorite=%t", owner, coinID, favorite)
	return &types.ViewStateResponse{Owner: owner, State: state}, nil
}

// Select remembers the asset and, when given, the range. The viewport index
// is reset on asset change and re-clamped on the next candles read. Any candles
// request still in flight for the owner is superseded.
func (l *ViewStateLogic) Select(req *types.SelectRequest) (*types.ViewStateResponse, error) {
	coinID := strings.TrimSpace(req.CoinID)
	if coinID == "" {
		return nil, &market.ValidationError{Field: "coinId", Reason: "required"}
	}
	owner := ownerOrDefault(req.Owner)
	token := l.svcCtx.ViewState.Begin(owner)
	state, _, err := l.svcCtx.ViewState.Commit(l.ctx, owner, token, func(s *viewstate.State) {
		s.Select(coinID)
		if req.Range != "" {
			s.Range = req.Range
		}
	})
	if err != nil {
		return nil, err
	}
	if state == nil {
		// A newer selection won; report what is stored now.
		if state, err = l.svcCtx.ViewState.Load(l.ctx, owner); err != nil {
			return nil, err
		}
	}
	return &types.ViewStateResponse{Owner: owner, State: state}, nil
}

func ownerOrDefault(owner string) string {
	if owner = strings.TrimSpace(owner); owner != "" {
		return owner
	}
	return defaultOwner
}
