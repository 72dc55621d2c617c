package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phishsim/gateway/internal/model"
	"github.com/phishsim/gateway/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clickTestEnv struct {
	recipients *RecipientRepository
	campaigns  *CampaignRepository
	clicks     *ClickEventRepository
}

func setupClickEnv(t *testing.T) *clickTestEnv {
	db := setupTestDB(t).DB
	return &clickTestEnv{
		recipients: NewRecipientRepository(db),
		campaigns:  NewCampaignRepository(db),
		clicks:     NewClickEventRepository(db),
	}
}

func (e *clickTestEnv) seed(t *testing.T, ctx context.Context, email string) (*model.Recipient, *model.Campaign) {
	rec, err := e.recipients.Create(ctx, &model.Recipient{Email: email})
	require.NoError(t, err)
	camp, err := e.campaigns.Create(ctx, &model.Campaign{Name: "n", Subject: "s", Body: "b"})
	require.NoError(t, err)
	return rec, camp
}

func (e *clickTestEnv) issue(t *testing.T, ctx context.Context, rec *model.Recipient, camp *model.Campaign) *model.ClickEvent {
	ev, err := e.clicks.Create(ctx, &model.ClickEvent{
		RecipientID:   rec.ID,
		CampaignID:    camp.ID,
		TrackingToken: token.Generate(),
	})
	require.NoError(t, err)
	return ev
}

func TestClickEventRepository_Create(t *testing.T) {
	env := setupClickEnv(t)
	ctx := context.Background()
	rec, camp := env.seed(t, ctx, "a@example.com")

	ev := env.issue(t, ctx, rec, camp)
	assert.NotEqual(t, uuid.Nil, ev.ID)
	assert.False(t, ev.Clicked())

	t.Run("duplicate token rejected", func(t *testing.T) {
		_, err := env.clicks.Create(ctx, &model.ClickEvent{
			RecipientID:   rec.ID,
			CampaignID:    camp.ID,
			TrackingToken: ev.TrackingToken,
		})
		assert.Error(t, err)
	})
}

func TestClickEventRepository_GetByToken(t *testing.T) {
	env := setupClickEnv(t)
	ctx := context.Background()
	rec, camp := env.seed(t, ctx, "a@example.com")
	ev := env.issue(t, ctx, rec, camp)

	got, err := env.clicks.GetByToken(ctx, ev.TrackingToken)
	require.NoError(t, err)
	assert.Equal(t, ev.ID, got.ID)

	_, err = env.clicks.GetByToken(ctx, token.Generate())
	assert.ErrorIs(t, err, ErrClickEventNotFound)
}

func TestClickEventRepository_RecordClick(t *testing.T) {
	env := setupClickEnv(t)
	ctx := context.Background()
	rec, camp := env.seed(t, ctx, "a@example.com")
	ev := env.issue(t, ctx, rec, camp)

	t.Run("first click wins", func(t *testing.T) {
		won, err := env.clicks.RecordClick(ctx, ev.TrackingToken, "192.0.2.1", "curl/8.0", time.Now())
		require.NoError(t, err)
		assert.True(t, won)

		got, err := env.clicks.GetByToken(ctx, ev.TrackingToken)
		require.NoError(t, err)
		assert.True(t, got.Clicked())
		assert.Equal(t, "192.0.2.1", *got.IPAddress)
		assert.Equal(t, "curl/8.0", *got.UserAgent)
	})

	t.Run("replay leaves original data untouched", func(t *testing.T) {
		won, err := env.clicks.RecordClick(ctx, ev.TrackingToken, "198.51.100.9", "other", time.Now().Add(time.Hour))
		require.NoError(t, err)
		assert.False(t, won)

		got, err := env.clicks.GetByToken(ctx, ev.TrackingToken)
		require.NoError(t, err)
		assert.Equal(t, "192.0.2.1", *got.IPAddress)
	})

	t.Run("unknown token matches nothing", func(t *testing.T) {
		won, err := env.clicks.RecordClick(ctx, token.Generate(), "ip", "ua", time.Now())
		require.NoError(t, err)
		assert.False(t, won)
	})
}

func TestClickEventRepository_RecordClick_Concurrent(t *testing.T) {
	env := setupClickEnv(t)
	ctx := context.Background()
	rec, camp := env.seed(t, ctx, "a@example.com")
	ev := env.issue(t, ctx, rec, camp)

	const attempts = 10
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			won, err := env.clicks.RecordClick(ctx, ev.TrackingToken, "192.0.2.1", "ua", time.Now())
			if err != nil {
				return
			}
			if won {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
}

func TestClickEventRepository_Counts(t *testing.T) {
	env := setupClickEnv(t)
	ctx := context.Background()

	camp, err := env.campaigns.Create(ctx, &model.Campaign{Name: "n", Subject: "s", Body: "b"})
	require.NoError(t, err)

	// three recipients, two of them click, one clicks twice via a second token
	var events []*model.ClickEvent
	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		rec, err := env.recipients.Create(ctx, &model.Recipient{Email: email})
		require.NoError(t, err)
		events = append(events, env.issue(t, ctx, rec, camp))
	}
	extra, err := env.clicks.Create(ctx, &model.ClickEvent{
		RecipientID:   events[0].RecipientID,
		CampaignID:    camp.ID,
		TrackingToken: token.Generate(),
	})
	require.NoError(t, err)

	for _, tok := range []string{events[0].TrackingToken, events[1].TrackingToken, extra.TrackingToken} {
		won, err := env.clicks.RecordClick(ctx, tok, "ip", "ua", time.Now())
		require.NoError(t, err)
		require.True(t, won)
	}

	clicked, err := env.clicks.CountClicked(ctx, camp.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), clicked)

	unique, err := env.clicks.CountDistinctClickers(ctx, camp.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unique)
}

func TestClickEventRepository_ListByCampaign(t *testing.T) {
	env := setupClickEnv(t)
	ctx := context.Background()
	rec, camp := env.seed(t, ctx, "a@example.com")
	ev := env.issue(t, ctx, rec, camp)

	otherCamp, err := env.campaigns.Create(ctx, &model.Campaign{Name: "other", Subject: "s", Body: "b"})
	require.NoError(t, err)
	env.issue(t, ctx, rec, otherCamp)

	list, err := env.clicks.ListByCampaign(ctx, camp.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, ev.ID, list[0].ID)
	require.NotNil(t, list[0].Recipient)
	assert.Equal(t, "a@example.com", list[0].Recipient.Email)
}
