package models

import "time"

// RotationKeyLeadAssign is the pool key for round-robin lead assignment.
const RotationKeyLeadAssign = "lead_assign"

// RotationCursor is the persisted round-robin pointer for one named pool.
// At most one row exists per key. The stored assignee may leave the pool
// after it is written; the rotation then resets to the pool's first
// member instead of erroring.
type RotationCursor struct {
	Key            string    `json:"key"`
	LastAssigneeID string    `json:"last_assignee_id"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NextAssignee returns the pool member following last in rotation order.
// With an empty last (no cursor yet) or a last that left the pool, the
// rotation starts over at the first member. Returns nil for an empty pool.
func NextAssignee(pool []*User, last string) *User {
	if len(pool) == 0 {
		return nil
	}

	if last == "" {
		return pool[0]
	}

	for i, user := range pool {
		if user.ID == last {
			return pool[(i+1)%len(pool)]
		}
	}

	return pool[0]
}
