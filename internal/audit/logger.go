package audit

import (
	"encoding/json"
	"log"
	"time"
)

// AuditEvent is one structured audit record. Events go to the process
// log as single-line JSON so the log shipper can index them.
type AuditEvent struct {
	Timestamp time.Time `json:"timestamp"`
	EventType string    `json:"event_type"`
	Actor     string    `json:"actor"`
	OwnerID   string    `json:"owner_id,omitempty"`
	Amount    int64     `json:"amount,omitempty"`
	Status    string    `json:"status"`
	Details   any       `json:"details,omitempty"`
}

// AuditLogger records privileged operations: manual adjustments,
// reconciliation runs and catalog changes all leave a trail of who did
// what.
type AuditLogger struct{}

func NewAuditLogger() *AuditLogger {
	return &AuditLogger{}
}

func (a *AuditLogger) LogAdjustment(actor, ownerID string, amount int64, note string, entryID int64) {
	event := AuditEvent{
		Timestamp: time.Now(),
		EventType: "MANUAL_ADJUSTMENT",
		Actor:     actor,
		OwnerID:   ownerID,
		Amount:    amount,
		Status:    "SUCCESS",
		Details: map[string]any{
			"note":     note,
			"entry_id": entryID,
		},
	}
	a.log(event)
}

func (a *AuditLogger) LogReconciliation(actor string, dryRun bool, checked, drifted int, totalDrift int64) {
	event := AuditEvent{
		Timestamp: time.Now(),
		EventType: "RECONCILIATION",
		Actor:     actor,
		Status:    "SUCCESS",
		Details: map[string]any{
			"dry_run":     dryRun,
			"checked":     checked,
			"drifted":     drifted,
			"total_drift": totalDrift,
		},
	}
	a.log(event)
}

func (a *AuditLogger) LogCatalogChange(actor, sku, change string) {
	event := AuditEvent{
		Timestamp: time.Now(),
		EventType: "CATALOG_CHANGE",
		Actor:     actor,
		Status:    "SUCCESS",
		Details: map[string]string{
			"sku":    sku,
			"change": change,
		},
	}
	a.log(event)
}

func (a *AuditLogger) LogOverdraftChange(actor, ownerID string, allow bool) {
	event := AuditEvent{
		Timestamp: time.Now(),
		EventType: "OVERDRAFT_CHANGE",
		Actor:     actor,
		OwnerID:   ownerID,
		Status:    "SUCCESS",
		Details:   map[string]bool{"allow_overdraft": allow},
	}
	a.log(event)
}

func (a *AuditLogger) LogAwardEnqueue(actor, eventID, ownerID string, amount int64) {
	event := AuditEvent{
		Timestamp: time.Now(),
		EventType: "AWARD_ENQUEUE",
		Actor:     actor,
		OwnerID:   ownerID,
		Amount:    amount,
		Status:    "SUCCESS",
		Details:   map[string]string{"event_id": eventID},
	}
	a.log(event)
}

func (a *AuditLogger) LogError(actor, operation string, err error) {
	event := AuditEvent{
		Timestamp: time.Now(),
		EventType: operation,
		Actor:     actor,
		Status:    "FAILED",
		Details:   map[string]string{"error": err.Error()},
	}
	a.log(event)
}

func (a *AuditLogger) log(event AuditEvent) {
	data, _ := json.Marshal(event)
	log.Printf("AUDIT: %s", string(data))
}
