package services

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/phishsim/gateway/internal/audit"
	"github.com/phishsim/gateway/internal/model"
	"github.com/phishsim/gateway/internal/repository"
	"github.com/phishsim/gateway/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTrackingService_Visit(t *testing.T) {
	ctx := context.Background()

	t.Run("malformed token rejected before any lookup", func(t *testing.T) {
		clickRepo := new(MockClickEventRepository)
		svc := NewTrackingService(clickRepo, nil)

		err := svc.Visit(ctx, "short", "192.0.2.1", "ua")
		assert.ErrorIs(t, err, ErrMalformedToken)
		clickRepo.AssertNotCalled(t, "GetByToken", mock.Anything, mock.Anything)
	})

	t.Run("unknown token", func(t *testing.T) {
		clickRepo := new(MockClickEventRepository)
		svc := NewTrackingService(clickRepo, nil)
		tok := token.Generate()

		clickRepo.On("GetByToken", ctx, tok).Return(nil, repository.ErrClickEventNotFound)

		err := svc.Visit(ctx, tok, "192.0.2.1", "ua")
		assert.ErrorIs(t, err, ErrTokenNotFound)
	})

	t.Run("first visit records and audits", func(t *testing.T) {
		clickRepo := new(MockClickEventRepository)
		auditor := new(MockAuditor)
		svc := NewTrackingService(clickRepo, auditor)

		tok := token.Generate()
		event := &model.ClickEvent{
			ID:            uuid.New(),
			RecipientID:   uuid.New(),
			CampaignID:    uuid.New(),
			TrackingToken: tok,
		}

		clickRepo.On("GetByToken", ctx, tok).Return(event, nil)
		clickRepo.On("RecordClick", ctx, tok, "192.0.2.1", "Mozilla/5.0", mock.Anything).Return(true, nil)
		auditor.On("Record", mock.MatchedBy(func(rec audit.ClickRecord) bool {
			return rec.Token == tok && rec.CampaignID == event.CampaignID
		})).Once()

		require.NoError(t, svc.Visit(ctx, tok, "192.0.2.1", "Mozilla/5.0"))
		auditor.AssertExpectations(t)
	})

	t.Run("replay succeeds without auditing", func(t *testing.T) {
		clickRepo := new(MockClickEventRepository)
		auditor := new(MockAuditor)
		svc := NewTrackingService(clickRepo, auditor)

		tok := token.Generate()
		event := &model.ClickEvent{ID: uuid.New(), TrackingToken: tok}

		clickRepo.On("GetByToken", ctx, tok).Return(event, nil)
		clickRepo.On("RecordClick", ctx, tok, mock.Anything, mock.Anything, mock.Anything).Return(false, nil)

		require.NoError(t, svc.Visit(ctx, tok, "10.0.0.1", "ua"))
		auditor.AssertNotCalled(t, "Record", mock.Anything)
	})

	t.Run("ten character token passes shape check", func(t *testing.T) {
		clickRepo := new(MockClickEventRepository)
		svc := NewTrackingService(clickRepo, nil)
		tok := strings.Repeat("a", 10)

		clickRepo.On("GetByToken", ctx, tok).Return(nil, repository.ErrClickEventNotFound)

		err := svc.Visit(ctx, tok, "192.0.2.1", "ua")
		assert.ErrorIs(t, err, ErrTokenNotFound)
	})
}
