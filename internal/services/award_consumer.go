package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/clashpoint/deltacoin/internal/metrics"
	"github.com/clashpoint/deltacoin/internal/models"
)

const (
	awardQueue       = "deltacoin:awards"
	awardFailedQueue = "deltacoin:awards:failed"
	awardMaxTries    = 3
)

// AwardEvent is one queued coin award from the tournament side. EventID
// doubles as the idempotency key, so redelivery can never double-credit.
type AwardEvent struct {
	EventID string        `json:"event_id"`
	OwnerID string        `json:"owner_id"`
	Amount  int64         `json:"amount"`
	Reason  models.Reason `json:"reason"`
	Source  string        `json:"source"`
	Tries   int           `json:"tries"`
	Created time.Time     `json:"created"`
}

// awardReasons are the only reasons the queue may credit with. Anything
// else in an event is a producer bug and the event is dropped.
var awardReasons = map[models.Reason]bool{
	models.ReasonParticipationAward: true,
	models.ReasonPlacementAward:     true,
	models.ReasonPrizePayout:        true,
}

// AwardConsumer drains the award queue and credits wallets through the
// ledger. A bad event is logged and dropped, never propagated: the queue
// must keep moving even when producers misbehave.
type AwardConsumer struct {
	redis  *redis.Client
	ledger *LedgerService
}

func NewAwardConsumer(redisClient *redis.Client, ledger *LedgerService) *AwardConsumer {
	return &AwardConsumer{redis: redisClient, ledger: ledger}
}

// Enqueue publishes an award event. Exposed for the admin surface and
// for tools that backfill awards.
func (c *AwardConsumer) Enqueue(ctx context.Context, event AwardEvent) error {
	if c.redis == nil {
		return fmt.Errorf("%w: award queue is not connected", ErrTemporarilyUnavailable)
	}
	if event.Created.IsZero() {
		event.Created = time.Now()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if err := c.redis.RPush(ctx, awardQueue, string(data)).Err(); err != nil {
		log.Printf("[AwardConsumer] failed to enqueue event %s: %v", event.EventID, err)
		return err
	}
	return nil
}

// Start blocks draining the queue until ctx is cancelled.
func (c *AwardConsumer) Start(ctx context.Context) {
	log.Printf("[AwardConsumer] started on queue %s", awardQueue)

	for {
		select {
		case <-ctx.Done():
			log.Printf("[AwardConsumer] stopped")
			return
		default:
			c.processNext(ctx)
		}
	}
}

func (c *AwardConsumer) processNext(ctx context.Context) {
	result, err := c.redis.BLPop(ctx, 2*time.Second, awardQueue).Result()
	if err != nil {
		// Timeout while the queue is empty lands here too.
		return
	}

	var event AwardEvent
	if err := json.Unmarshal([]byte(result[1]), &event); err != nil {
		log.Printf("[AwardConsumer] dropping malformed event: %v", err)
		metrics.RecordAwardEvent("malformed")
		c.saveFailed(result[1], err)
		return
	}

	c.handle(ctx, event)
}

func (c *AwardConsumer) handle(ctx context.Context, event AwardEvent) {
	if event.EventID == "" || event.OwnerID == "" || event.Amount <= 0 || !awardReasons[event.Reason] {
		log.Printf("[AwardConsumer] dropping invalid event %q: owner=%q amount=%d reason=%q",
			event.EventID, event.OwnerID, event.Amount, event.Reason)
		metrics.RecordAwardEvent("invalid")
		c.saveFailedEvent(event, "validation failed")
		return
	}

	opts := EntryOptions{
		IdempotencyKey: "award:" + event.EventID,
		Metadata:       models.Metadata{"source": event.Source, "event_id": event.EventID},
	}
	res, err := c.ledger.Credit(ctx, event.OwnerID, event.Amount, event.Reason, opts)
	if err == nil {
		if res.Replayed {
			metrics.RecordAwardEvent("replayed")
			return
		}
		metrics.RecordAwardEvent("credited")
		log.Printf("[AwardConsumer] credited event %s: owner=%s amount=%d", event.EventID, event.OwnerID, event.Amount)
		return
	}

	if IsClientError(err) {
		// Retrying an event the ledger rejected will reject again.
		log.Printf("[AwardConsumer] dropping rejected event %s: %v", event.EventID, err)
		metrics.RecordAwardEvent("rejected")
		c.saveFailedEvent(event, err.Error())
		return
	}

	event.Tries++
	if event.Tries < awardMaxTries {
		log.Printf("[AwardConsumer] requeueing event %s after transient error (attempt %d): %v", event.EventID, event.Tries, err)
		metrics.RecordAwardEvent("requeued")
		time.Sleep(2 * time.Second)
		data, _ := json.Marshal(event)
		c.redis.RPush(context.Background(), awardQueue, string(data))
		return
	}

	log.Printf("[AwardConsumer] event %s failed after %d attempts: %v", event.EventID, event.Tries, err)
	metrics.RecordAwardEvent("failed")
	c.saveFailedEvent(event, err.Error())
}

func (c *AwardConsumer) saveFailedEvent(event AwardEvent, cause string) {
	failed := map[string]any{
		"event": event,
		"error": cause,
		"time":  time.Now(),
	}
	data, _ := json.Marshal(failed)
	c.redis.LPush(context.Background(), awardFailedQueue, string(data))
}

func (c *AwardConsumer) saveFailed(raw string, err error) {
	failed := map[string]any{
		"raw":   raw,
		"error": err.Error(),
		"time":  time.Now(),
	}
	data, _ := json.Marshal(failed)
	c.redis.LPush(context.Background(), awardFailedQueue, string(data))
}

// QueueLength reports the backlog, surfaced on the admin endpoint.
func (c *AwardConsumer) QueueLength(ctx context.Context) int64 {
	if c.redis == nil {
		return 0
	}
	length, _ := c.redis.LLen(ctx, awardQueue).Result()
	return length
}
