package models

import (
	"time"

	"gorm.io/gorm"
)

// TicketStatus is a ticket's position in the fixed service workflow
type TicketStatus string

// Ticket statuses, in workflow order
const (
	StatusSeen           TicketStatus = "Seen"
	StatusLeavingForSite TicketStatus = "Leaving for Site"
	StatusEnroute        TicketStatus = "Enroute"
	StatusArrivedOnSite  TicketStatus = "Arrived on Site"
	StatusSubmitDetails  TicketStatus = "Submit Details"
	StatusComplete       TicketStatus = "Complete"
)

// StatusFlow is the fixed forward-only progression of a ticket. Statuses
// advance one step at a time; Complete is terminal.
var StatusFlow = []TicketStatus{
	StatusSeen,
	StatusLeavingForSite,
	StatusEnroute,
	StatusArrivedOnSite,
	StatusSubmitDetails,
	StatusComplete,
}

// NextStatus returns the status following s in the workflow. The second
// return value is false when s is terminal or not a known status.
func NextStatus(s TicketStatus) (TicketStatus, bool) {
	for i, status := range StatusFlow {
		if status == s {
			if i == len(StatusFlow)-1 {
				return "", false
			}
			return StatusFlow[i+1], true
		}
	}
	return "", false
}

// Ticket types
const (
	TicketTypeInstallation = "installation"
	TicketTypeSupport      = "support"
)

// Installation types
const (
	InstallationWireless = "wireless"
	InstallationFibre    = "fibre"
)

// Ticket represents a work order assigned to a technician
type Ticket struct {
	ID         uint         `gorm:"primaryKey" json:"id"`
	TicketType string       `gorm:"not null" json:"ticket_type"` // "installation" or "support"
	Status     TicketStatus `gorm:"not null;default:'Seen';index" json:"status"`
	Location   string       `gorm:"not null" json:"location"`

	// Assignment and authorship are denormalized snapshots taken at creation
	// time. Usernames are never re-synced if the user renames later.
	AssignedTechnicianID       uint   `gorm:"not null;index" json:"assigned_technician_id"`
	AssignedTechnicianUsername string `gorm:"not null;index" json:"assigned_technician_username"`
	CreatedByID                uint   `gorm:"not null" json:"created_by_id"`
	CreatedByUsername          string `gorm:"not null" json:"created_by_username"`

	// Installation-only fields, required when ticket_type = "installation"
	ClientName       string `json:"client_name,omitempty"`
	MobileNumber     string `json:"mobile_number,omitempty"`
	InstallationType string `json:"installation_type,omitempty"` // "wireless" or "fibre"
	PPPoEUsername    string `gorm:"column:pppoe_username" json:"pppoe_username,omitempty"`
	PPPoEPassword    string `gorm:"column:pppoe_password" json:"pppoe_password,omitempty"`

	// Submission fields, populated once the technician reaches "Submit Details".
	// Photo fields hold storage keys (S3) or local upload paths.
	SpeedtestScreenshot *string `json:"speedtest_screenshot"`
	WANPhoto            *string `gorm:"column:wan_photo" json:"wan_photo"`
	LANPhoto            *string `gorm:"column:lan_photo" json:"lan_photo"`
	MACAddress          *string `gorm:"column:mac_address" json:"mac_address"`
	SignalReceived      *string `json:"signal_received"`
	BOMUsed             *string `gorm:"column:bom_used" json:"bom_used"`
	AdditionalNotes     *string `json:"additional_notes"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Ticket model
func (Ticket) TableName() string {
	return "tickets"
}

// IsTerminal reports whether the ticket has reached its final status
func (t *Ticket) IsTerminal() bool {
	return t.Status == StatusComplete
}
