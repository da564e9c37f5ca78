package model

// DispatchJob is the queue payload that asks a worker to dispatch one broadcast.
type DispatchJob struct {
	TenantID    int64 `json:"tenant_id"`
	BroadcastID int64 `json:"broadcast_id"`
}
