package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest"
	"github.com/zeromicro/go-zero/rest/httpx"

	"coinlens-api/internal/svc"
)

func RegisterHandlers(server *rest.Server, serverCtx *svc.ServiceContext) {
	httpx.SetErrorHandlerCtx(errorHandler)

	server.AddRoutes(
		[]rest.Route{
			{
				Method:  http.MethodGet,
				Path:    "/crypto",
				Handler: CryptoHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/crypto/summary",
				Handler: SummaryHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/crypto/historical",
				Handler: HistoricalHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/crypto/comparison",
				Handler: ComparisonHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/crypto/candles",
				Handler: CandlesHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/cron",
				Handler: CronHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/viewstate",
				Handler: GetViewStateHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/viewstate/favorites",
				Handler: ToggleFavoriteHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/viewstate/select",
				Handler: SelectAssetHandler(serverCtx),
			},
		},
		rest.WithPrefix("/api"),
	)
}
