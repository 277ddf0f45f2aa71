package models

import (
	"time"
)

// StatusLog is an append-only audit record of a ticket status change.
// Rows are only ever created, never updated or deleted. In the current
// workflow a row is guaranteed only on completion.
type StatusLog struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	TicketID    uint         `gorm:"not null;index" json:"ticket_id"`
	Ticket      Ticket       `gorm:"foreignKey:TicketID" json:"-"`
	Status      TicketStatus `gorm:"not null" json:"status"`
	ChangedByID *uint        `json:"changed_by_id"` // nil for system-driven changes
	CreatedAt   time.Time    `json:"created_at"`
}

// TableName specifies the table name for the StatusLog model
func (StatusLog) TableName() string {
	return "status_logs"
}
