package domain

import "time"

// StaffRole enumerates internal staff roles.
type StaffRole string

const (
	StaffRoleAdmin           StaffRole = "ADMIN"
	StaffRoleHelpdesk        StaffRole = "HELPDESK"
	StaffRoleHelpdeskOffline StaffRole = "HELPDESK_OFFLINE"
	StaffRoleContent         StaffRole = "CONTENT"
)

// StaffMember models a portal staff account.
type StaffMember struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         StaffRole
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
