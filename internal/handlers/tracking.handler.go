package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/fasthttp/router"
	"github.com/phishsim/gateway/internal/services"
	xhttp "github.com/phishsim/gateway/pkg/http"
	"github.com/phishsim/gateway/pkg/logger"
)

// landingPage is what every visitor sees, first click and replay alike. The
// page must not reveal whether the click was counted.
const landingPage = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>Security Awareness</title>
</head>
<body style="font-family: sans-serif; max-width: 600px; margin: 40px auto;">
  <h1>This was a phishing simulation</h1>
  <p>The link you just clicked was part of a security awareness exercise run
  by your organization. No harm was done and no data was collected beyond
  this click.</p>
  <p>Real phishing emails look just like this one. When in doubt, do not
  click: report the message to your security team instead.</p>
</body>
</html>`

type VisitService interface {
	Visit(ctx context.Context, token, ip, userAgent string) error
}

type Limiter interface {
	Allow(key string) (bool, error)
}

type TrackingHandler struct {
	svc     VisitService
	limiter Limiter
}

func RegisterTrackingRoutes(r *router.Router, h *TrackingHandler) {
	r.GET("/track/{token}", h.Track)
}

func NewTrackingHandler(visitService VisitService, limiter Limiter) *TrackingHandler {
	return &TrackingHandler{
		svc:     visitService,
		limiter: limiter,
	}
}

// Track serves a tracking link open. Checks run in a fixed order: the rate
// limit first so abusive clients cannot probe token validity, then token
// shape, then lookup. The landing page is identical for first clicks and
// replays.
func (h *TrackingHandler) Track(ctx *xhttp.RequestCtx) {
	ip := clientIP(ctx)

	allowed, err := h.limiter.Allow(ip)
	if err != nil {
		// a broken limiter backend must not take the endpoint down
		logger.Error("rate limiter check failed", "ip", ip, "error", err)
		allowed = true
	}
	if !allowed {
		ctx.Response.Header.Set("Retry-After", "60")
		writeError(ctx, 429, "too many requests")
		return
	}

	tok, _ := ctx.UserValue("token").(string)
	userAgent := string(ctx.Request.Header.UserAgent())

	err = h.svc.Visit(ctx, tok, ip, userAgent)
	switch {
	case errors.Is(err, services.ErrMalformedToken):
		writeError(ctx, 400, "invalid token")
		return
	case errors.Is(err, services.ErrTokenNotFound):
		writeError(ctx, 404, "not found")
		return
	case err != nil:
		writeError(ctx, 500, "internal error")
		return
	}

	ctx.Response.Header.Set("Content-Type", "text/html; charset=utf-8")
	ctx.Response.SetStatusCode(200)
	ctx.Response.SetBodyString(landingPage)
}

// clientIP extracts the caller's address for rate limiting and click
// records: first X-Forwarded-For entry, then X-Real-Ip, then the peer
// address, then "unknown".
func clientIP(ctx *xhttp.RequestCtx) string {
	if v := ctx.Request.Header.Peek("X-Forwarded-For"); len(v) > 0 {
		first := strings.TrimSpace(strings.Split(string(v), ",")[0])
		if first != "" {
			return first
		}
	}
	if v := ctx.Request.Header.Peek("X-Real-Ip"); len(v) > 0 {
		return string(v)
	}
	if ip := ctx.RemoteIP(); ip != nil {
		return ip.String()
	}
	return "unknown"
}
