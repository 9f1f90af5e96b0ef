package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/zeromicro/go-zero/core/logx"

	"coinlens-api/internal/logic"
	"coinlens-api/pkg/market"
)

type errorBody struct {
	Error string `json:"error"`
}

// errorHandler maps domain errors onto status codes for httpx.ErrorCtx.
func errorHandler(ctx context.Context, err error) (int, any) {
	switch {
	case errors.Is(err, market.ErrValidation):
		return http.StatusBadRequest, errorBody{Error: err.Error()}
	case errors.Is(err, logic.ErrCollectorBusy):
		return http.StatusConflict, errorBody{Error: err.Error()}
	default:
		logx.WithContext(ctx).Errorf("request failed: %v", err)
		return http.StatusInternalServerError, errorBody{Error: err.Error()}
	}
}

func parseError(err error) error {
	return &market.ValidationError{Field: "request", Reason: err.Error()}
}
