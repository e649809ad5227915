package domain

import "time"

// Group is a capacity-bounded WhatsApp group applicants are assigned to
// in arrival order.
type Group struct {
	ID          string
	Name        string
	Capacity    int
	MemberCount int
	InviteLink  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsFull reports whether the group has reached its capacity.
func (g *Group) IsFull() bool {
	return g.MemberCount >= g.Capacity
}
