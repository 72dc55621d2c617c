package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/phishsim/gateway/internal/model"
	xhttp "github.com/phishsim/gateway/pkg/http"
)

type ReportService interface {
	AllClicks(ctx context.Context) ([]*model.ClickEvent, error)
	ClicksCSV(ctx context.Context) (string, error)
}

type ReportHandler struct {
	svc ReportService
}

func RegisterReportRoutes(e *router.Group, h *ReportHandler) {
	e.GET("/clicks", h.ListClicks)
	e.GET("/report/csv", h.DownloadCSV)
}

func NewReportHandler(reportService ReportService) *ReportHandler {
	return &ReportHandler{
		svc: reportService,
	}
}

func (h *ReportHandler) ListClicks(ctx *xhttp.RequestCtx) {
	clicks, err := h.svc.AllClicks(ctx)
	if err != nil {
		writeError(ctx, 500, err.Error())
		return
	}
	writeJSON(ctx, 200, clicks)
}

func (h *ReportHandler) DownloadCSV(ctx *xhttp.RequestCtx) {
	csv, err := h.svc.ClicksCSV(ctx)
	if err != nil {
		writeError(ctx, 500, err.Error())
		return
	}

	ctx.Response.Header.Set("Content-Type", "text/csv; charset=utf-8")
	ctx.Response.Header.Set("Content-Disposition", `attachment; filename="click_report.csv"`)
	ctx.Response.SetStatusCode(200)
	ctx.Response.SetBodyString(csv)
}
