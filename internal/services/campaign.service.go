package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/phishsim/gateway/internal/mailer"
	"github.com/phishsim/gateway/internal/model"
	"github.com/phishsim/gateway/internal/repository"
	"github.com/phishsim/gateway/pkg/logger"
	"github.com/phishsim/gateway/pkg/prom"
	"github.com/phishsim/gateway/pkg/templates"
	"github.com/phishsim/gateway/pkg/token"
)

var (
	ErrCampaignNotFound = errors.New("campaign not found")
	ErrNoRecipients     = errors.New("no valid recipients")
)

type CampaignRepository interface {
	Create(ctx context.Context, c *model.Campaign) (*model.Campaign, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Campaign, error)
	List(ctx context.Context) ([]*model.Campaign, error)
	Update(ctx context.Context, id uuid.UUID, p model.CampaignUpdateRequest) (*model.Campaign, error)
	MarkSent(ctx context.Context, id uuid.UUID, at time.Time) (*model.Campaign, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ClickEventRegistrar interface {
	Create(ctx context.Context, e *model.ClickEvent) (*model.ClickEvent, error)
}

type CampaignService struct {
	campaignRepo  CampaignRepository
	recipientRepo RecipientRepository
	clickRepo     ClickEventRegistrar
	transport     mailer.Transport

	trackingBaseURL string
	sendDelay       time.Duration
}

func NewCampaignService(
	campaignRepo CampaignRepository,
	recipientRepo RecipientRepository,
	clickRepo ClickEventRegistrar,
	transport mailer.Transport,
	trackingBaseURL string,
	sendDelay time.Duration,
) *CampaignService {
	return &CampaignService{
		campaignRepo:    campaignRepo,
		recipientRepo:   recipientRepo,
		clickRepo:       clickRepo,
		transport:       transport,
		trackingBaseURL: trackingBaseURL,
		sendDelay:       sendDelay,
	}
}

func mapCampaignErr(err error) error {
	if errors.Is(err, repository.ErrCampaignNotFound) {
		return ErrCampaignNotFound
	}
	return err
}

func (s *CampaignService) Create(ctx context.Context, p model.CampaignCreateRequest) (*model.Campaign, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return s.campaignRepo.Create(ctx, &model.Campaign{
		Name:    p.Name,
		Subject: p.Subject,
		Body:    p.Body,
	})
}

func (s *CampaignService) Get(ctx context.Context, id uuid.UUID) (*model.Campaign, error) {
	c, err := s.campaignRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCampaignNotFound) {
			return nil, ErrCampaignNotFound
		}
		return nil, err
	}
	return c, nil
}

func (s *CampaignService) List(ctx context.Context) ([]*model.Campaign, error) {
	return s.campaignRepo.List(ctx)
}

func (s *CampaignService) Update(ctx context.Context, id uuid.UUID, p model.CampaignUpdateRequest) (*model.Campaign, error) {
	c, err := s.campaignRepo.Update(ctx, id, p)
	if err != nil {
		if errors.Is(err, repository.ErrCampaignNotFound) {
			return nil, ErrCampaignNotFound
		}
		return nil, err
	}
	return c, nil
}

func (s *CampaignService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.campaignRepo.Delete(ctx, id)
	if errors.Is(err, repository.ErrCampaignNotFound) {
		return ErrCampaignNotFound
	}
	return err
}

// VerifyTransport checks the mail backend without sending anything.
func (s *CampaignService) VerifyTransport(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.transport.Verify()
}

// Send dispatches the campaign, one message at a time with a pacing delay
// between them. An empty emails slice means no filter: the campaign goes to
// the whole stored recipient list. Every recipient gets a fresh token, so
// re-sending a campaign issues new tracking links rather than reviving old
// ones. A dispatch failure is recorded and the batch moves on; the campaign
// is marked sent even when some or all dispatches failed, since the send
// attempt itself is what the operator asked for.
func (s *CampaignService) Send(ctx context.Context, id uuid.UUID, emails []string) (*model.SendResult, error) {
	campaign, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	recipients, err := s.resolveAudience(ctx, emails)
	if err != nil {
		return nil, err
	}
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}

	start := time.Now()
	result := &model.SendResult{
		Total:  len(recipients),
		Errors: []model.SendError{},
	}

	for i, r := range recipients {
		if i > 0 && s.sendDelay > 0 {
			time.Sleep(s.sendDelay)
		}

		tok := token.Generate()
		html := templates.Render(campaign.Body, map[string]string{
			"name":         r.DisplayName(),
			"email":        r.Email,
			"tracking_url": s.trackingBaseURL + "/track/" + tok,
		})

		if err := s.transport.Send(r.Email, campaign.Subject, html); err != nil {
			logger.Warn("campaign dispatch failed",
				"campaign_id", campaign.ID,
				"recipient", r.Email,
				"error", err,
			)
			prom.IncEmailResult("failure")
			result.Failed++
			result.Errors = append(result.Errors, model.SendError{
				Email: r.Email,
				Error: err.Error(),
			})
			continue
		}

		prom.IncEmailResult("success")
		result.Sent++

		// pre-register the issued event; dispatch already succeeded, so a
		// storage hiccup here loses tracking for this one link but must not
		// fail the batch
		_, err := s.clickRepo.Create(ctx, &model.ClickEvent{
			RecipientID:   r.ID,
			CampaignID:    campaign.ID,
			TrackingToken: tok,
		})
		if err != nil {
			logger.Error("failed to pre-register click event",
				"campaign_id", campaign.ID,
				"recipient", r.Email,
				"error", err,
			)
		}
	}

	if _, err := s.campaignRepo.MarkSent(ctx, campaign.ID, time.Now().UTC()); err != nil {
		logger.Error("failed to mark campaign sent", "campaign_id", campaign.ID, "error", err)
	}

	prom.ObserveCampaignSendDuration(time.Since(start).Seconds())
	return result, nil
}

func (s *CampaignService) resolveAudience(ctx context.Context, emails []string) ([]*model.Recipient, error) {
	if len(emails) == 0 {
		return s.recipientRepo.List(ctx)
	}

	// unknown addresses are dropped silently; the caller controls its own
	// list and partial overlap with stored recipients is normal
	var recipients []*model.Recipient
	for _, email := range emails {
		r, err := s.recipientRepo.GetByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, repository.ErrRecipientNotFound) {
				continue
			}
			return nil, err
		}
		recipients = append(recipients, r)
	}
	return recipients, nil
}
