package bus

import "time"

// Event is a domain event published on the bus.
//
// Kinds used by the agent:
//   - "conn.online" / "conn.offline"  — backend reachability transitions
//   - "conn.reconnected"              — offline→online transition notice
//   - "notify.toast"                  — user-facing notifications
//   - "sync.completed"                — reconciliation report
//   - "record.created" / "record.deleted"
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}
