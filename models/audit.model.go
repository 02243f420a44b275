package models

import "time"

// AuditEntry is append-only. UserID is deliberately unconstrained (no foreign
// key) so entries outlive the users they mention, and stays nil for events
// recorded before an identity was resolved (failed logins, rate limiting).
type AuditEntry struct {
	ID            uint      `json:"id" gorm:"primarykey"`
	EventID       string    `json:"event_id" gorm:"size:36;index"`
	UserID        *uint     `json:"user_id"`
	Action        string    `json:"action" gorm:"index;not null"`
	ResourceType  string    `json:"resource_type"`
	ResourceID    *uint     `json:"resource_id"`
	ClientAddress string    `json:"client_address"`
	CreatedAt     time.Time `json:"created_at"`
}
