package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/weba-hub/weba-hub-api/models"
)

func setupTicketTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Ticket{}, &models.StatusLog{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

func createTestTicket(t *testing.T, db *gorm.DB, status models.TicketStatus) *models.Ticket {
	t.Helper()

	ticket := models.Ticket{
		TicketType:                 models.TicketTypeSupport,
		Status:                     status,
		Location:                   "Westlands, Nairobi",
		AssignedTechnicianID:       1,
		AssignedTechnicianUsername: "tech_john",
		CreatedByID:                2,
		CreatedByUsername:          "cs_mary",
	}
	require.NoError(t, db.Create(&ticket).Error)
	return &ticket
}

func TestGetTicket(t *testing.T) {
	db := setupTicketTestDB(t)
	service := NewTicketService(db)

	created := createTestTicket(t, db, models.StatusSeen)

	ticket, err := service.GetTicket(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, ticket.ID)
	assert.Equal(t, models.StatusSeen, ticket.Status)
}

func TestGetTicket_NotFound(t *testing.T) {
	db := setupTicketTestDB(t)
	service := NewTicketService(db)

	_, err := service.GetTicket(999)
	require.Error(t, err)

	var notFound *NotFoundError
	assert.True(t, errors.As(err, &notFound))
	assert.Equal(t, "ticket", notFound.Resource)
}

func TestAdvance_StepsOneStatusForward(t *testing.T) {
	db := setupTicketTestDB(t)
	service := NewTicketService(db)

	ticket := createTestTicket(t, db, models.StatusSeen)

	updated, err := service.Advance(ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusLeavingForSite, updated.Status)

	// The new status is persisted, not just returned
	var stored models.Ticket
	require.NoError(t, db.First(&stored, ticket.ID).Error)
	assert.Equal(t, models.StatusLeavingForSite, stored.Status)
}

func TestAdvance_WalksToTerminal(t *testing.T) {
	db := setupTicketTestDB(t)
	service := NewTicketService(db)

	ticket := createTestTicket(t, db, models.StatusSeen)

	// Five advances take a fresh ticket all the way to Complete
	for _, want := range models.StatusFlow[1:] {
		updated, err := service.Advance(ticket.ID)
		require.NoError(t, err)
		assert.Equal(t, want, updated.Status)
	}

	// The sixth advance fails; Complete is terminal
	_, err := service.Advance(ticket.ID)
	require.Error(t, err)

	var invalid *InvalidTransitionError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, string(models.StatusComplete), invalid.Current)
}

func TestAdvance_UnknownStatus(t *testing.T) {
	db := setupTicketTestDB(t)
	service := NewTicketService(db)

	ticket := createTestTicket(t, db, models.TicketStatus("Cancelled"))

	_, err := service.Advance(ticket.ID)
	require.Error(t, err)

	var invalid *InvalidTransitionError
	assert.True(t, errors.As(err, &invalid))
}

func TestAdvance_ConcurrentStatusChange(t *testing.T) {
	db := setupTicketTestDB(t)
	service := NewTicketService(db)

	ticket := createTestTicket(t, db, models.StatusSeen)

	// A single pooled connection keeps every statement on the same in-memory
	// database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	// Slip a competing close in between the status read and the guarded
	// update. Raw SQL runs outside the update callback chain, so the hook
	// does not re-enter itself.
	interfered := false
	err = db.Callback().Update().Before("gorm:update").Register("competing_status_change", func(_ *gorm.DB) {
		if interfered {
			return
		}
		interfered = true
		require.NoError(t, db.Exec(
			"UPDATE tickets SET status = ? WHERE id = ?",
			models.StatusComplete, ticket.ID,
		).Error)
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Callback().Update().Remove("competing_status_change") })

	_, err = service.Advance(ticket.ID)
	require.Error(t, err)
	require.True(t, interfered, "the competing update ran before the guarded one")

	var invalid *InvalidTransitionError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, string(models.StatusSeen), invalid.Current)

	// The competing update wins; the advance does not land on top of it
	var stored models.Ticket
	require.NoError(t, db.First(&stored, ticket.ID).Error)
	assert.Equal(t, models.StatusComplete, stored.Status)
}

func TestAdvance_NotFound(t *testing.T) {
	db := setupTicketTestDB(t)
	service := NewTicketService(db)

	_, err := service.Advance(42)
	require.Error(t, err)

	var notFound *NotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestClose_FromAnyStatus(t *testing.T) {
	statuses := []models.TicketStatus{
		models.StatusSeen,
		models.StatusEnroute,
		models.StatusSubmitDetails,
		models.StatusComplete,
	}

	for _, status := range statuses {
		t.Run(string(status), func(t *testing.T) {
			db := setupTicketTestDB(t)
			service := NewTicketService(db)

			ticket := createTestTicket(t, db, status)
			changedBy := uint(7)

			closed, err := service.Close(ticket.ID, &changedBy)
			require.NoError(t, err)
			assert.Equal(t, models.StatusComplete, closed.Status)

			// Closing writes exactly one audit record
			var logs []models.StatusLog
			require.NoError(t, db.Where("ticket_id = ?", ticket.ID).Find(&logs).Error)
			require.Len(t, logs, 1)
			assert.Equal(t, models.StatusComplete, logs[0].Status)
			require.NotNil(t, logs[0].ChangedByID)
			assert.Equal(t, changedBy, *logs[0].ChangedByID)
		})
	}
}

func TestClose_WithoutActor(t *testing.T) {
	db := setupTicketTestDB(t)
	service := NewTicketService(db)

	ticket := createTestTicket(t, db, models.StatusArrivedOnSite)

	closed, err := service.Close(ticket.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusComplete, closed.Status)

	var entry models.StatusLog
	require.NoError(t, db.Where("ticket_id = ?", ticket.ID).First(&entry).Error)
	assert.Nil(t, entry.ChangedByID)
}

func TestClose_NotFound(t *testing.T) {
	db := setupTicketTestDB(t)
	service := NewTicketService(db)

	_, err := service.Close(404, nil)
	require.Error(t, err)

	var notFound *NotFoundError
	assert.True(t, errors.As(err, &notFound))

	var count int64
	db.Model(&models.StatusLog{}).Count(&count)
	assert.Zero(t, count, "no audit record for a failed close")
}

func TestSubmitDetails_AttachesFieldsWithoutStatusChange(t *testing.T) {
	db := setupTicketTestDB(t)
	service := NewTicketService(db)

	ticket := createTestTicket(t, db, models.StatusSubmitDetails)

	mac := "AA:BB:CC:DD:EE:FF"
	signal := "-52 dBm"
	bom := "20m cat6, 2 connectors"
	updated, err := service.SubmitDetails(ticket.ID, SubmissionDetails{
		MACAddress:     &mac,
		SignalReceived: &signal,
		BOMUsed:        &bom,
	})
	require.NoError(t, err)

	require.NotNil(t, updated.MACAddress)
	assert.Equal(t, mac, *updated.MACAddress)
	require.NotNil(t, updated.SignalReceived)
	assert.Equal(t, signal, *updated.SignalReceived)
	require.NotNil(t, updated.BOMUsed)
	assert.Equal(t, bom, *updated.BOMUsed)

	// Submission never moves the workflow; completion is a separate call
	assert.Equal(t, models.StatusSubmitDetails, updated.Status)
	assert.Nil(t, updated.WANPhoto, "untouched fields stay nil")
	assert.Nil(t, updated.AdditionalNotes)
}

func TestSubmitDetails_PartialResubmission(t *testing.T) {
	db := setupTicketTestDB(t)
	service := NewTicketService(db)

	ticket := createTestTicket(t, db, models.StatusSubmitDetails)

	mac := "AA:BB:CC:DD:EE:FF"
	_, err := service.SubmitDetails(ticket.ID, SubmissionDetails{MACAddress: &mac})
	require.NoError(t, err)

	// A later submission with different fields keeps the earlier ones
	notes := "Client asked for a follow-up visit"
	updated, err := service.SubmitDetails(ticket.ID, SubmissionDetails{AdditionalNotes: &notes})
	require.NoError(t, err)

	require.NotNil(t, updated.MACAddress)
	assert.Equal(t, mac, *updated.MACAddress)
	require.NotNil(t, updated.AdditionalNotes)
	assert.Equal(t, notes, *updated.AdditionalNotes)
}

func TestSubmitDetails_EmptySubmission(t *testing.T) {
	db := setupTicketTestDB(t)
	service := NewTicketService(db)

	ticket := createTestTicket(t, db, models.StatusArrivedOnSite)

	updated, err := service.SubmitDetails(ticket.ID, SubmissionDetails{})
	require.NoError(t, err)
	assert.Equal(t, models.StatusArrivedOnSite, updated.Status)
}

func TestSubmitDetails_NotFound(t *testing.T) {
	db := setupTicketTestDB(t)
	service := NewTicketService(db)

	_, err := service.SubmitDetails(1, SubmissionDetails{})
	require.Error(t, err)

	var notFound *NotFoundError
	assert.True(t, errors.As(err, &notFound))
}
