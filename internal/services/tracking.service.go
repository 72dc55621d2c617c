package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/phishsim/gateway/internal/audit"
	"github.com/phishsim/gateway/internal/model"
	"github.com/phishsim/gateway/internal/repository"
	"github.com/phishsim/gateway/pkg/logger"
	"github.com/phishsim/gateway/pkg/prom"
	"github.com/phishsim/gateway/pkg/token"
)

var (
	ErrMalformedToken = errors.New("malformed tracking token")
	ErrTokenNotFound  = errors.New("unknown tracking token")
)

type ClickEventRepository interface {
	Create(ctx context.Context, e *model.ClickEvent) (*model.ClickEvent, error)
	GetByToken(ctx context.Context, t string) (*model.ClickEvent, error)
	RecordClick(ctx context.Context, t, ip, userAgent string, at time.Time) (bool, error)
	ListByCampaign(ctx context.Context, campaignID uuid.UUID) ([]*model.ClickEvent, error)
	ListAll(ctx context.Context) ([]*model.ClickEvent, error)
	CountClicked(ctx context.Context, campaignID uuid.UUID) (int64, error)
	CountDistinctClickers(ctx context.Context, campaignID uuid.UUID) (int64, error)
}

// ClickAuditor receives winning first clicks; a nil auditor disables the
// stream without branching at every call site.
type ClickAuditor interface {
	Record(rec audit.ClickRecord)
}

type TrackingService struct {
	clickRepo ClickEventRepository
	auditor   ClickAuditor
}

func NewTrackingService(clickRepo ClickEventRepository, auditor ClickAuditor) *TrackingService {
	return &TrackingService{
		clickRepo: clickRepo,
		auditor:   auditor,
	}
}

// Visit resolves a tracking link open. The first visit for a token records
// IP, user agent and timestamp; replays resolve successfully without
// touching the stored click, so the visitor cannot tell the difference.
func (s *TrackingService) Visit(ctx context.Context, tok, ip, userAgent string) error {
	if err := token.Validate(tok); err != nil {
		prom.IncTrackOutcome("malformed")
		return ErrMalformedToken
	}

	event, err := s.clickRepo.GetByToken(ctx, tok)
	if err != nil {
		if errors.Is(err, repository.ErrClickEventNotFound) {
			prom.IncTrackOutcome("unknown")
			return ErrTokenNotFound
		}
		return err
	}

	clickedAt := time.Now().UTC()
	won, err := s.clickRepo.RecordClick(ctx, tok, ip, userAgent, clickedAt)
	if err != nil {
		return err
	}

	if !won {
		prom.IncTrackOutcome("replay")
		return nil
	}

	prom.IncTrackOutcome("click")
	logger.Info("tracking click recorded",
		"campaign_id", event.CampaignID,
		"recipient_id", event.RecipientID,
		"ip", ip,
	)

	if s.auditor != nil {
		s.auditor.Record(audit.ClickRecord{
			CampaignID:  event.CampaignID,
			RecipientID: event.RecipientID,
			Token:       tok,
			IPAddress:   ip,
			UserAgent:   userAgent,
			ClickedAt:   clickedAt,
		})
	}

	return nil
}
