package audit

import (
	"time"

	"github.com/google/uuid"
	"github.com/phishsim/gateway/pkg/logger"
	"github.com/phishsim/gateway/pkg/redis"
	"github.com/phishsim/gateway/pkg/worker"
)

// ClickRecord is the entry appended to the audit stream whenever a tracking
// link is opened for the first time.
type ClickRecord struct {
	CampaignID  uuid.UUID
	RecipientID uuid.UUID
	Token       string
	IPAddress   string
	UserAgent   string
	ClickedAt   time.Time
}

// Publisher appends click records to a capped redis stream. Publishing is
// asynchronous and best effort: tracking responses never wait on redis, and
// a failed append only logs.
type Publisher struct {
	adapter redis.RedisAdapter
	stream  string
	maxLen  int64
	pool    *worker.WorkerManager
}

type Options struct {
	Stream  string
	MaxLen  int64
	Workers int
}

func NewPublisher(adapter redis.RedisAdapter, opts Options) *Publisher {
	workers := opts.Workers
	if workers <= 0 {
		workers = 2
	}

	p := &Publisher{
		adapter: adapter,
		stream:  opts.Stream,
		maxLen:  opts.MaxLen,
		pool:    worker.NewWorkerManager(1024, workers, nil),
	}
	p.pool.SetWorker(p.publish)
	go func() {
		_ = p.pool.Start()
	}()
	return p
}

// Record enqueues the click for appending. It never blocks the caller beyond
// channel backpressure and never returns an error.
func (p *Publisher) Record(rec ClickRecord) {
	p.pool.Enqueue(rec)
}

func (p *Publisher) publish(_ int, job interface{}) {
	rec, ok := job.(ClickRecord)
	if !ok {
		return
	}

	_, err := p.adapter.XAdd(p.stream, map[string]interface{}{
		"campaign_id":  rec.CampaignID.String(),
		"recipient_id": rec.RecipientID.String(),
		"token":        rec.Token,
		"ip_address":   rec.IPAddress,
		"user_agent":   rec.UserAgent,
		"clicked_at":   rec.ClickedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		logger.Warn("failed to append click to audit stream",
			"stream", p.stream,
			"token", rec.Token,
			"error", err,
		)
		return
	}

	if p.maxLen > 0 {
		if err := p.adapter.XTrimApprox(p.stream, p.maxLen); err != nil {
			logger.Warn("failed to trim audit stream", "stream", p.stream, "error", err)
		}
	}
}

func (p *Publisher) Stop() {
	p.pool.Exit()
}
