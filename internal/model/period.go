package model

import "time"

type Role string

const (
	RoleHost      Role = "host"
	RoleAssistant Role = "assistant"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleHost || r == RoleAssistant
}

// Period is a recurring on-air time slot for one channel and role. The end
// is exclusive; a period whose start is after its end spans midnight.
type Period struct {
	ID        int64     `json:"id"`
	ChannelID string    `json:"channel_id"`
	Role      Role      `json:"role"`
	StartTime TimeOfDay `json:"start_time"`
	EndTime   TimeOfDay `json:"end_time"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
