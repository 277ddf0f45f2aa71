package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/weba-hub/weba-hub-api/models"
)

// SubmissionDetails carries the fields a technician attaches when submitting
// site details. Nil fields are left untouched on the ticket.
type SubmissionDetails struct {
	SpeedtestScreenshot *string
	WANPhoto            *string
	LANPhoto            *string
	MACAddress          *string
	SignalReceived      *string
	BOMUsed             *string
	AdditionalNotes     *string
}

// TicketService drives a ticket through its status workflow
type TicketService struct {
	db *gorm.DB
}

// NewTicketService creates a ticket service over the given database
func NewTicketService(db *gorm.DB) *TicketService {
	return &TicketService{db: db}
}

// GetTicket loads a ticket by ID
func (s *TicketService) GetTicket(id uint) (*models.Ticket, error) {
	var ticket models.Ticket
	if err := s.db.First(&ticket, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "ticket", Message: "Ticket not found"}
		}
		return nil, &StorageError{Op: "load ticket", Err: err}
	}
	return &ticket, nil
}

// Advance moves the ticket one step forward in the status workflow. Tickets
// at the terminal status, or carrying an unknown status, cannot advance.
// The update is conditional on the status just read, so two concurrent calls
// cannot both step the ticket forward.
func (s *TicketService) Advance(id uint) (*models.Ticket, error) {
	ticket, err := s.GetTicket(id)
	if err != nil {
		return nil, err
	}

	next, ok := models.NextStatus(ticket.Status)
	if !ok {
		return nil, &InvalidTransitionError{
			Current: string(ticket.Status),
			Message: "Cannot update status further",
		}
	}

	result := s.db.Model(&models.Ticket{}).
		Where("id = ? AND status = ?", id, ticket.Status).
		Update("status", next)
	if result.Error != nil {
		return nil, &StorageError{Op: "advance ticket status", Err: result.Error}
	}
	if result.RowsAffected == 0 {
		return nil, &InvalidTransitionError{
			Current: string(ticket.Status),
			Message: "Ticket status was changed by another request",
		}
	}

	ticket.Status = next
	return ticket, nil
}

// Close forces the ticket to the terminal status regardless of its current
// position in the workflow and appends a status log entry. This is an
// administrative override, not a workflow step, and is the only transition
// that writes an audit record.
func (s *TicketService) Close(id uint, changedBy *uint) (*models.Ticket, error) {
	ticket, err := s.GetTicket(id)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(ticket).Update("status", models.StatusComplete).Error; err != nil {
		return nil, &StorageError{Op: "close ticket", Err: err}
	}

	entry := models.StatusLog{
		TicketID:    ticket.ID,
		Status:      models.StatusComplete,
		ChangedByID: changedBy,
	}
	if err := s.db.Create(&entry).Error; err != nil {
		return nil, &StorageError{Op: "write status log", Err: err}
	}

	return ticket, nil
}

// SubmitDetails attaches the submission fields to the ticket. Submitting
// details does not change the ticket status; completion is a separate call
// from the client.
func (s *TicketService) SubmitDetails(id uint, details SubmissionDetails) (*models.Ticket, error) {
	ticket, err := s.GetTicket(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if details.SpeedtestScreenshot != nil {
		updates["speedtest_screenshot"] = *details.SpeedtestScreenshot
	}
	if details.WANPhoto != nil {
		updates["wan_photo"] = *details.WANPhoto
	}
	if details.LANPhoto != nil {
		updates["lan_photo"] = *details.LANPhoto
	}
	if details.MACAddress != nil {
		updates["mac_address"] = *details.MACAddress
	}
	if details.SignalReceived != nil {
		updates["signal_received"] = *details.SignalReceived
	}
	if details.BOMUsed != nil {
		updates["bom_used"] = *details.BOMUsed
	}
	if details.AdditionalNotes != nil {
		updates["additional_notes"] = *details.AdditionalNotes
	}

	if len(updates) > 0 {
		if err := s.db.Model(ticket).Updates(updates).Error; err != nil {
			return nil, &StorageError{Op: "submit ticket details", Err: err}
		}
	}

	return s.GetTicket(id)
}
