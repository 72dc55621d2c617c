package handlers

import (
	"context"
	"errors"

	"github.com/fasthttp/router"
	"github.com/google/uuid"
	"github.com/phishsim/gateway/internal/model"
	"github.com/phishsim/gateway/internal/services"
	xhttp "github.com/phishsim/gateway/pkg/http"
)

type CampaignService interface {
	Create(ctx context.Context, p model.CampaignCreateRequest) (*model.Campaign, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Campaign, error)
	List(ctx context.Context) ([]*model.Campaign, error)
	Update(ctx context.Context, id uuid.UUID, p model.CampaignUpdateRequest) (*model.Campaign, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Send(ctx context.Context, id uuid.UUID, emails []string) (*model.SendResult, error)
	VerifyTransport(ctx context.Context, id uuid.UUID) error
}

type CampaignReporter interface {
	CampaignStats(ctx context.Context, id uuid.UUID) (*model.CampaignStats, error)
	CampaignClicks(ctx context.Context, id uuid.UUID) ([]*model.ClickEvent, error)
}

type CampaignHandler struct {
	svc      CampaignService
	reporter CampaignReporter
}

func RegisterCampaignRoutes(e *router.Group, h *CampaignHandler) {
	e.GET("/campaigns", h.ListCampaigns)
	e.POST("/campaigns", h.CreateCampaign)
	e.GET("/campaigns/{id}", h.GetCampaign)
	e.PUT("/campaigns/{id}", h.UpdateCampaign)
	e.DELETE("/campaigns/{id}", h.DeleteCampaign)
	e.GET("/campaigns/{id}/stats", h.GetCampaignStats)
	e.GET("/campaigns/{id}/clicks", h.GetCampaignClicks)
	e.POST("/campaigns/{id}/send", h.SendCampaign)
	e.POST("/campaigns/{id}/verify-smtp", h.VerifySMTP)
}

func NewCampaignHandler(campaignService CampaignService, reporter CampaignReporter) *CampaignHandler {
	return &CampaignHandler{
		svc:      campaignService,
		reporter: reporter,
	}
}

type sendCampaignRequest struct {
	RecipientEmails []string `json:"recipientEmails"`
}

func (h *CampaignHandler) ListCampaigns(ctx *xhttp.RequestCtx) {
	items, err := h.svc.List(ctx)
	if err != nil {
		writeError(ctx, 500, err.Error())
		return
	}
	writeJSON(ctx, 200, items)
}

func (h *CampaignHandler) CreateCampaign(ctx *xhttp.RequestCtx) {
	var req model.CampaignCreateRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	c, err := h.svc.Create(ctx, req)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 201, c)
}

func (h *CampaignHandler) GetCampaign(ctx *xhttp.RequestCtx) {
	id, err := paramUUID(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid id")
		return
	}

	c, err := h.svc.Get(ctx, id)
	if err != nil {
		writeCampaignError(ctx, err)
		return
	}
	writeJSON(ctx, 200, c)
}

func (h *CampaignHandler) UpdateCampaign(ctx *xhttp.RequestCtx) {
	id, err := paramUUID(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid id")
		return
	}

	var req model.CampaignUpdateRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	c, err := h.svc.Update(ctx, id, req)
	if err != nil {
		if errors.Is(err, services.ErrCampaignNotFound) {
			writeError(ctx, 404, err.Error())
			return
		}
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 200, c)
}

func (h *CampaignHandler) DeleteCampaign(ctx *xhttp.RequestCtx) {
	id, err := paramUUID(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid id")
		return
	}

	if err := h.svc.Delete(ctx, id); err != nil {
		writeCampaignError(ctx, err)
		return
	}
	writeJSON(ctx, 200, map[string]bool{"deleted": true})
}

func (h *CampaignHandler) GetCampaignStats(ctx *xhttp.RequestCtx) {
	id, err := paramUUID(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid id")
		return
	}

	stats, err := h.reporter.CampaignStats(ctx, id)
	if err != nil {
		writeCampaignError(ctx, err)
		return
	}
	writeJSON(ctx, 200, stats)
}

func (h *CampaignHandler) GetCampaignClicks(ctx *xhttp.RequestCtx) {
	id, err := paramUUID(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid id")
		return
	}

	clicks, err := h.reporter.CampaignClicks(ctx, id)
	if err != nil {
		writeCampaignError(ctx, err)
		return
	}
	writeJSON(ctx, 200, clicks)
}

func (h *CampaignHandler) SendCampaign(ctx *xhttp.RequestCtx) {
	id, err := paramUUID(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid id")
		return
	}

	// the filter is optional: no body, or a body without recipientEmails,
	// sends to the whole recipient list
	var req sendCampaignRequest
	if body := ctx.PostBody(); len(body) > 0 {
		if err := readJSON(ctx, &req); err != nil {
			writeError(ctx, 400, "invalid JSON: "+err.Error())
			return
		}
	}

	result, err := h.svc.Send(ctx, id, req.RecipientEmails)
	if err != nil {
		if errors.Is(err, services.ErrNoRecipients) {
			writeError(ctx, 400, err.Error())
			return
		}
		writeCampaignError(ctx, err)
		return
	}
	writeJSON(ctx, 200, result)
}

func (h *CampaignHandler) VerifySMTP(ctx *xhttp.RequestCtx) {
	id, err := paramUUID(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid id")
		return
	}

	if err := h.svc.VerifyTransport(ctx, id); err != nil {
		if errors.Is(err, services.ErrCampaignNotFound) {
			writeError(ctx, 404, err.Error())
			return
		}
		writeJSON(ctx, 200, map[string]any{"connected": false, "error": err.Error()})
		return
	}
	writeJSON(ctx, 200, map[string]any{"connected": true})
}

func writeCampaignError(ctx *xhttp.RequestCtx, err error) {
	if errors.Is(err, services.ErrCampaignNotFound) {
		writeError(ctx, 404, err.Error())
		return
	}
	writeError(ctx, 500, err.Error())
}
