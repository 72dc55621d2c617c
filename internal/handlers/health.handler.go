package handlers

import (
	"github.com/fasthttp/router"
	xhttp "github.com/phishsim/gateway/pkg/http"
)

type StorageHealth interface {
	Ping() error
}

type HealthHandler struct {
	storage StorageHealth
}

func RegisterHealthRoutes(r *router.Router, api *router.Group, h *HealthHandler) {
	r.GET("/health", h.GetHealth)
	api.GET("/health/postgres", h.GetPostgresHealth)
}

func NewHealthHandler(storage StorageHealth) *HealthHandler {
	return &HealthHandler{
		storage: storage,
	}
}

func (h *HealthHandler) GetHealth(ctx *xhttp.RequestCtx) {
	writeJSON(ctx, 200, map[string]string{"status": "ok"})
}

func (h *HealthHandler) GetPostgresHealth(ctx *xhttp.RequestCtx) {
	if err := h.storage.Ping(); err != nil {
		writeError(ctx, 500, err.Error())
		return
	}
	writeJSON(ctx, 200, map[string]string{"postgres": "ok"})
}
