package e2e

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/phishsim/gateway/internal/handlers"
	"github.com/phishsim/gateway/internal/model"
	"github.com/phishsim/gateway/internal/ratelimit"
	"github.com/phishsim/gateway/internal/repository"
	"github.com/phishsim/gateway/internal/services"
	xhttp "github.com/phishsim/gateway/pkg/http"
	"github.com/phishsim/gateway/pkg/pg"
	"github.com/phishsim/gateway/test/fixtures"
	"github.com/phishsim/gateway/test/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

const trackingBase = "http://phish.test"

var trackingLinkRe = regexp.MustCompile(`/track/([0-9a-f]{64})`)

type sentMail struct {
	To      string
	Subject string
	HTML    string
}

// recordingTransport collects dispatched mail instead of talking SMTP.
type recordingTransport struct {
	mu      sync.Mutex
	sent    []sentMail
	failFor map[string]error
}

func (t *recordingTransport) Send(to, subject, html string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err, ok := t.failFor[to]; ok {
		return err
	}
	t.sent = append(t.sent, sentMail{To: to, Subject: subject, HTML: html})
	return nil
}

func (t *recordingTransport) Verify() error { return nil }

func (t *recordingTransport) tokenFor(to string) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, m := range t.sent {
		if m.To == to {
			if match := trackingLinkRe.FindStringSubmatch(m.HTML); match != nil {
				return match[1]
			}
		}
	}
	return ""
}

type TestEnvironment struct {
	DB               *pg.DB
	Transport        *recordingTransport
	RecipientRepo    *repository.RecipientRepository
	CampaignRepo     *repository.CampaignRepository
	ClickRepo        *repository.ClickEventRepository
	RecipientService *services.RecipientService
	CampaignService  *services.CampaignService
	TrackingService  *services.TrackingService
	ReportService    *services.ReportService
	TrackingHandler  *handlers.TrackingHandler
}

func setupE2EEnvironment(t *testing.T) *TestEnvironment {
	db := helpers.SetupTestDB(t)

	recipientRepo := repository.NewRecipientRepository(db)
	campaignRepo := repository.NewCampaignRepository(db)
	clickRepo := repository.NewClickEventRepository(db)

	transport := &recordingTransport{failFor: map[string]error{}}

	recipientService := services.NewRecipientService(recipientRepo)
	campaignService := services.NewCampaignService(
		campaignRepo, recipientRepo, clickRepo, transport, trackingBase, 0,
	)
	trackingService := services.NewTrackingService(clickRepo, nil)
	reportService := services.NewReportService(campaignRepo, recipientRepo, clickRepo)

	limiter := ratelimit.NewMemoryLimiter(10, time.Minute)
	trackingHandler := handlers.NewTrackingHandler(trackingService, limiter)

	return &TestEnvironment{
		DB:               db,
		Transport:        transport,
		RecipientRepo:    recipientRepo,
		CampaignRepo:     campaignRepo,
		ClickRepo:        clickRepo,
		RecipientService: recipientService,
		CampaignService:  campaignService,
		TrackingService:  trackingService,
		ReportService:    reportService,
		TrackingHandler:  trackingHandler,
	}
}

func (env *TestEnvironment) track(token, ip string) *xhttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	// attach the fake server so ctx.Done() works when used as a context.Context
	ctx.Init(&fasthttp.Request{}, nil, nil)
	ctx.Request.Header.SetMethod("GET")
	ctx.Request.SetRequestURI("/track/" + token)
	ctx.Request.Header.Set("X-Forwarded-For", ip)
	ctx.Request.Header.SetUserAgent("e2e-browser/1.0")
	ctx.SetUserValue("token", token)
	env.TrackingHandler.Track(ctx)
	return ctx
}

func TestCampaignFlow(t *testing.T) {
	env := setupE2EEnvironment(t)
	ctx := context.Background()

	// recipients come in through the bulk import
	importResult, err := env.RecipientService.Import(ctx, fixtures.TestTeam)
	require.NoError(t, err)
	require.Equal(t, 3, importResult.Added)

	campaign, err := env.CampaignService.Create(ctx, fixtures.CampaignCreateRequest("Q3 drill"))
	require.NoError(t, err)
	assert.Equal(t, model.CampaignStatusDraft, campaign.Status)

	// send to the whole team plus one address nobody knows
	result, err := env.CampaignService.Send(ctx, campaign.ID, []string{
		"alice@example.com", "bob@example.com", "carol@example.com", "ghost@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 3, result.Sent)
	assert.Equal(t, 0, result.Failed)

	sent, err := env.CampaignRepo.GetByID(ctx, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CampaignStatusSent, sent.Status)
	require.NotNil(t, sent.SentAt)

	// every message got a personalized body and its own token
	aliceToken := env.Transport.tokenFor("alice@example.com")
	bobToken := env.Transport.tokenFor("bob@example.com")
	carolToken := env.Transport.tokenFor("carol@example.com")
	require.NotEmpty(t, aliceToken)
	require.NotEmpty(t, bobToken)
	require.NotEmpty(t, carolToken)
	assert.NotEqual(t, aliceToken, bobToken)

	for _, m := range env.Transport.sent {
		assert.NotContains(t, m.HTML, "{{")
		if m.To == "carol@example.com" {
			// no stored name, the template sees the email instead
			assert.Contains(t, m.HTML, "Hi carol@example.com,")
		}
	}

	// alice clicks
	resp := env.track(aliceToken, "203.0.113.7")
	assert.Equal(t, 200, resp.Response.StatusCode())
	firstBody := string(resp.Response.Body())
	assert.Contains(t, firstBody, "phishing simulation")

	event, err := env.ClickRepo.GetByToken(ctx, aliceToken)
	require.NoError(t, err)
	require.True(t, event.Clicked())
	assert.Equal(t, "203.0.113.7", *event.IPAddress)
	assert.Equal(t, "e2e-browser/1.0", *event.UserAgent)
	firstClickedAt := *event.ClickedAt

	// alice forwards the mail, someone else clicks the same link later
	resp = env.track(aliceToken, "198.51.100.9")
	assert.Equal(t, 200, resp.Response.StatusCode())
	assert.Equal(t, firstBody, string(resp.Response.Body()))

	event, err = env.ClickRepo.GetByToken(ctx, aliceToken)
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.7", *event.IPAddress)
	assert.Equal(t, firstClickedAt.Unix(), event.ClickedAt.Unix())

	// bob clicks too
	resp = env.track(bobToken, "203.0.113.8")
	assert.Equal(t, 200, resp.Response.StatusCode())

	stats, err := env.ReportService.CampaignStats(ctx, campaign.ID)
	require.NoError(t, err)
	// totalRecipients counts everyone stored, not just this send's audience
	assert.Equal(t, 3, stats.TotalRecipients)
	assert.Equal(t, 2, stats.TotalClicks)
	assert.Equal(t, 2, stats.UniqueClickers)
	assert.Equal(t, "66.67", stats.ClickRate)

	csv, err := env.ReportService.ClicksCSV(ctx)
	require.NoError(t, err)
	assert.Contains(t, csv, `"Q3 drill","Alice Park","alice@example.com","Engineering","203.0.113.7"`)
	// carol never clicked: her issued row exports with N/A gaps
	assert.Contains(t, csv, `"carol@example.com","N/A","N/A","N/A"`)
}

func TestCampaignFlow_ResendIssuesFreshTokens(t *testing.T) {
	env := setupE2EEnvironment(t)
	ctx := context.Background()

	_, err := env.RecipientService.Create(ctx, fixtures.RecipientCreateRequest("alice@example.com", "Alice", ""))
	require.NoError(t, err)

	campaign, err := env.CampaignService.Create(ctx, fixtures.CampaignCreateRequest("resend"))
	require.NoError(t, err)

	_, err = env.CampaignService.Send(ctx, campaign.ID, []string{"alice@example.com"})
	require.NoError(t, err)
	first := env.Transport.tokenFor("alice@example.com")

	env.Transport.sent = nil
	_, err = env.CampaignService.Send(ctx, campaign.ID, []string{"alice@example.com"})
	require.NoError(t, err)
	second := env.Transport.tokenFor("alice@example.com")

	require.NotEmpty(t, first)
	require.NotEmpty(t, second)
	assert.NotEqual(t, first, second)

	// both links stay live
	assert.Equal(t, 200, env.track(first, "203.0.113.1").Response.StatusCode())
	assert.Equal(t, 200, env.track(second, "203.0.113.1").Response.StatusCode())
}

func TestCampaignFlow_DispatchFailureAccounting(t *testing.T) {
	env := setupE2EEnvironment(t)
	ctx := context.Background()

	_, err := env.RecipientService.Import(ctx, fixtures.TestTeam)
	require.NoError(t, err)
	env.Transport.failFor["bob@example.com"] = assert.AnError

	campaign, err := env.CampaignService.Create(ctx, fixtures.CampaignCreateRequest("partial"))
	require.NoError(t, err)

	result, err := env.CampaignService.Send(ctx, campaign.ID, []string{
		"alice@example.com", "bob@example.com", "carol@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, result.Sent)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "bob@example.com", result.Errors[0].Email)

	// no tracking event for the failed dispatch
	assert.Empty(t, env.Transport.tokenFor("bob@example.com"))

	sent, err := env.CampaignRepo.GetByID(ctx, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CampaignStatusSent, sent.Status)
}

func TestTrackingEndpoint_ErrorOrder(t *testing.T) {
	env := setupE2EEnvironment(t)

	t.Run("malformed token", func(t *testing.T) {
		resp := env.track("short", "203.0.113.2")
		assert.Equal(t, 400, resp.Response.StatusCode())
	})

	t.Run("unknown but well formed token", func(t *testing.T) {
		resp := env.track("0123456789abcdef", "203.0.113.2")
		assert.Equal(t, 404, resp.Response.StatusCode())
	})

	t.Run("rate limit wins over token validation", func(t *testing.T) {
		ip := "203.0.113.99"
		for i := 0; i < 10; i++ {
			env.track("irrelevant-token-shape", ip)
		}
		resp := env.track("short", ip)
		assert.Equal(t, 429, resp.Response.StatusCode())
	})
}
