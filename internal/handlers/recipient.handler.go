package handlers

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/fasthttp/router"
	"github.com/google/uuid"
	"github.com/phishsim/gateway/internal/model"
	"github.com/phishsim/gateway/internal/services"
	xhttp "github.com/phishsim/gateway/pkg/http"
)

type RecipientService interface {
	Create(ctx context.Context, p model.RecipientCreateRequest) (*model.Recipient, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Recipient, error)
	List(ctx context.Context) ([]*model.Recipient, error)
	Update(ctx context.Context, id uuid.UUID, p model.RecipientUpdateRequest) (*model.Recipient, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Import(ctx context.Context, rows []model.RecipientCreateRequest) (*model.RecipientImportResult, error)
}

type RecipientHandler struct {
	svc RecipientService
}

func RegisterRecipientRoutes(e *router.Group, h *RecipientHandler) {
	e.GET("/recipients", h.ListRecipients)
	e.POST("/recipients", h.CreateRecipient)
	e.POST("/recipients/import", h.ImportRecipients)
	e.GET("/recipients/{id}", h.GetRecipient)
	e.PUT("/recipients/{id}", h.UpdateRecipient)
	e.DELETE("/recipients/{id}", h.DeleteRecipient)
}

func NewRecipientHandler(recipientService RecipientService) *RecipientHandler {
	return &RecipientHandler{
		svc: recipientService,
	}
}

func (h *RecipientHandler) ListRecipients(ctx *xhttp.RequestCtx) {
	items, err := h.svc.List(ctx)
	if err != nil {
		writeError(ctx, 500, err.Error())
		return
	}
	writeJSON(ctx, 200, items)
}

func (h *RecipientHandler) CreateRecipient(ctx *xhttp.RequestCtx) {
	var req model.RecipientCreateRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	r, err := h.svc.Create(ctx, req)
	if err != nil {
		if errors.Is(err, services.ErrDuplicateEmail) {
			writeError(ctx, 409, err.Error())
			return
		}
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 201, r)
}

func (h *RecipientHandler) ImportRecipients(ctx *xhttp.RequestCtx) {
	var rows []model.RecipientCreateRequest
	if err := readJSON(ctx, &rows); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	result, err := h.svc.Import(ctx, rows)
	if err != nil {
		writeError(ctx, 500, err.Error())
		return
	}
	writeJSON(ctx, 200, result)
}

func (h *RecipientHandler) GetRecipient(ctx *xhttp.RequestCtx) {
	id, err := paramUUID(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid id")
		return
	}

	r, err := h.svc.Get(ctx, id)
	if err != nil {
		if errors.Is(err, services.ErrRecipientNotFound) {
			writeError(ctx, 404, err.Error())
			return
		}
		writeError(ctx, 500, err.Error())
		return
	}
	writeJSON(ctx, 200, r)
}

func (h *RecipientHandler) UpdateRecipient(ctx *xhttp.RequestCtx) {
	id, err := paramUUID(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid id")
		return
	}

	var req model.RecipientUpdateRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	r, err := h.svc.Update(ctx, id, req)
	if err != nil {
		if errors.Is(err, services.ErrRecipientNotFound) {
			writeError(ctx, 404, err.Error())
			return
		}
		writeError(ctx, 400, err.Error())
		return
	}
	writeJSON(ctx, 200, r)
}

func (h *RecipientHandler) DeleteRecipient(ctx *xhttp.RequestCtx) {
	id, err := paramUUID(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid id")
		return
	}

	if err := h.svc.Delete(ctx, id); err != nil {
		if errors.Is(err, services.ErrRecipientNotFound) {
			writeError(ctx, 404, err.Error())
			return
		}
		writeError(ctx, 500, err.Error())
		return
	}
	writeJSON(ctx, 200, map[string]bool{"deleted": true})
}

func readJSON(ctx *xhttp.RequestCtx, dst any) error {
	body := ctx.PostBody()
	return json.Unmarshal(body, dst)
}

func writeJSON(ctx *xhttp.RequestCtx, status int, v any) {
	b, _ := json.Marshal(v)
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Response.SetStatusCode(status)
	ctx.Response.SetBodyRaw(b)
}

func writeError(ctx *xhttp.RequestCtx, status int, msg string) {
	writeJSON(ctx, status, map[string]string{"error": msg})
}

func paramUUID(ctx *xhttp.RequestCtx, name string) (uuid.UUID, error) {
	v, ok := ctx.UserValue(name).(string)
	if !ok {
		return uuid.Nil, errors.New("missing " + name)
	}
	return uuid.Parse(v)
}
