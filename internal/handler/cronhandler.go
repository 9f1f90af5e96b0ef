package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"coinlens-api/internal/logic"
	"coinlens-api/internal/svc"
)

// CronHandler triggers one collection. A failed run still returns its report,
// with status 500.
func CronHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := logic.NewCronLogic(r.Context(), svcCtx)
		report, err := l.Cron()
		switch {
		case err != nil:
			httpx.ErrorCtx(r.Context(), w, err)
		case !report.Success:
			httpx.WriteJsonCtx(r.Context(), w, http.StatusInternalServerError, report)
		default:
			httpx.OkJsonCtx(r.Context(), w, report)
		}
	}
}
