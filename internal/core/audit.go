package core

import "time"

// SyncAudit is one immutable row per replication attempt. Rows are
// append-only; they are never updated or deleted.
type SyncAudit struct {
	ID            int64     `json:"id"`
	TableName     string    `json:"table_name"`
	RecordsSynced int       `json:"records_synced"`
	RecordsAdded  int       `json:"records_added"`
	SyncedAt      time.Time `json:"synced_at"`
	DurationMs    int64     `json:"duration_ms"`
	ErrorMessage  string    `json:"error_message,omitempty"`
}

// DispatchAudit is one immutable row per terminal dispatch outcome. It
// feeds the subscription success-rate statistics and the circuit breaker.
type DispatchAudit struct {
	ID             int64     `json:"id"`
	SubscriptionID string    `json:"subscription_id"`
	RecordIDs      []int64   `json:"record_ids"`
	RecordsCount   int       `json:"records_count"`
	Success        bool      `json:"success"`
	ResponseCode   int       `json:"response_code,omitempty"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	TriggeredAt    time.Time `json:"triggered_at"`
}

// SyncResult summarizes one replication run.
type SyncResult struct {
	RecordsSynced int           `json:"records_synced"`
	RecordsAdded  int           `json:"records_added"`
	Duration      time.Duration `json:"duration_ms"`
}
