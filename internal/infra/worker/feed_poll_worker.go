package worker

import (
	"context"
	"log"
	"time"

	"github.com/xavierca1/pharma-crm/internal/infra/integration/leadfeed"
	"github.com/xavierca1/pharma-crm/internal/usecase"
)

// FeedPollWorker is the cron-driven twin of the webhook endpoint: it pulls
// pending enquiries from the lead portal on a timer and pushes them through
// the merge engine.
type FeedPollWorker struct {
	client       *leadfeed.Client
	ingest       usecase.IngestExecutor
	tickInterval time.Duration
}

func NewFeedPollWorker(client *leadfeed.Client, ingest usecase.IngestExecutor, tickInterval time.Duration) *FeedPollWorker {
	if tickInterval <= 0 {
		tickInterval = 5 * time.Minute
	}
	return &FeedPollWorker{
		client:       client,
		ingest:       ingest,
		tickInterval: tickInterval,
	}
}

func (w *FeedPollWorker) Start(ctx context.Context) {
	log.Printf("🕒 [FEED] poll worker started (every %s)", w.tickInterval)

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("⚠️ [FEED] poll worker stopped")
			return
		case <-ticker.C:
			w.poll(ctx)
		}
	}
}

func (w *FeedPollWorker) poll(ctx context.Context) {
	raws, err := w.client.FetchEnquiries(ctx)
	if err != nil {
		log.Printf("❌ [FEED] fetch failed: %v", err)
		return
	}
	if len(raws) == 0 {
		return
	}

	var created, clubbed, skipped int
	for _, raw := range raws {
		enq, ok := leadfeed.MapEnquiry(raw)
		if !ok {
			skipped++
			continue
		}

		res, err := w.ingest.Execute(ctx, usecase.IngestLeadInput{
			Name:       enq.Name,
			Subject:    enq.Subject,
			Message:    enq.Message,
			MobileNo:   enq.MobileNo,
			Email:      enq.Email,
			State:      enq.State,
			District:   enq.District,
			Station:    enq.Station,
			Pincode:    enq.Pincode,
			AgencyName: enq.AgencyName,
			Source:     enq.Source,
			Origin:     usecase.OriginFeed,
		})
		if err != nil {
			// One bad enquiry never stops the batch.
			log.Printf("⚠️ [FEED] enquiry rejected: %v", err)
			skipped++
			continue
		}

		switch {
		case res.Created:
			created++
		case res.Clubbed:
			clubbed++
		default:
			skipped++
		}
	}

	log.Printf("✅ [FEED] processed %d enquiries: %d created, %d clubbed, %d skipped",
		len(raws), created, clubbed, skipped)
}
