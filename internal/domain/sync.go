package domain

// SyncOutcome describes what a provider event did to local state
type SyncOutcome string

const (
	SyncCreated       SyncOutcome = "created"
	SyncAlreadySynced SyncOutcome = "already_synced"
	SyncUpdated       SyncOutcome = "updated"
	SyncNoop          SyncOutcome = "noop"
	SyncMissing       SyncOutcome = "missing"
	SyncDeleted       SyncOutcome = "deleted"
	SyncIgnored       SyncOutcome = "ignored"
)
