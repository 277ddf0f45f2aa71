package controllers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/weba-hub/weba-hub-api/config"
	"github.com/weba-hub/weba-hub-api/middleware"
	"github.com/weba-hub/weba-hub-api/models"
	"github.com/weba-hub/weba-hub-api/services"
	"github.com/weba-hub/weba-hub-api/utils"
)

// CreateTicketRequest represents the request body for creating a ticket
type CreateTicketRequest struct {
	TicketType         string `json:"ticket_type" binding:"required,oneof=installation support"`
	AssignedTechnician string `json:"assigned_technician" binding:"required"`
	Location           string `json:"location" binding:"required"`
	ClientName         string `json:"client_name"`
	MobileNumber       string `json:"mobile_number"`
	InstallationType   string `json:"installation_type" binding:"omitempty,oneof=wireless fibre"`
	PPPoEUsername      string `json:"pppoe_username"`
	PPPoEPassword      string `json:"pppoe_password"`
}

// currentUser resolves the caller's profile from the validated JWT. It writes
// the error response itself and returns false when the caller has no profile.
func currentUser(c *gin.Context) (models.User, bool) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return models.User{}, false
	}

	db := config.GetDB()
	var user models.User
	if err := db.Where("auth0_id = ?", auth0ID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "USER_NOT_FOUND",
				"message": "User profile not found. Please create a profile first.",
			},
		})
		return models.User{}, false
	}

	return user, true
}

// ticketIDParam parses the :ticketId route parameter. It writes the error
// response itself and returns false for a malformed ID.
func ticketIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("ticketId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_TICKET_ID",
				"message": "Ticket ID must be a number",
			},
		})
		return 0, false
	}
	return uint(id), true
}

// CreateTicket handles POST /api/v1/tickets - creates a ticket and assigns it
// to a technician (admins and customer service only)
func CreateTicket(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	// Only privileged roles can open work orders
	if user.Role != models.RoleAdmin && user.Role != models.RoleCustomerService {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Access denied. Only admins and customer service can create tickets.",
			},
		})
		return
	}

	var req CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	// Installation tickets carry the client and line details; support tickets
	// don't need them
	if req.TicketType == models.TicketTypeInstallation {
		if req.ClientName == "" || req.MobileNumber == "" || req.InstallationType == "" ||
			req.PPPoEUsername == "" || req.PPPoEPassword == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "Client name, mobile number, installation type and PPPoE credentials are required for installation tickets",
				},
			})
			return
		}
	}

	// Resolve the assigned technician; the snapshot of id and username is
	// taken here and never re-synced
	db := config.GetDB()
	var technician models.User
	if err := db.Where("username = ? AND user_type = ?", req.AssignedTechnician, models.UserTypeTechnician).
		First(&technician).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "TECHNICIAN_NOT_FOUND",
				"message": "Assigned technician not found.",
			},
		})
		return
	}

	ticket := models.Ticket{
		TicketType:                 req.TicketType,
		Status:                     models.StatusSeen,
		Location:                   req.Location,
		AssignedTechnicianID:       technician.ID,
		AssignedTechnicianUsername: technician.Username,
		CreatedByID:                user.ID,
		CreatedByUsername:          user.Username,
		ClientName:                 req.ClientName,
		MobileNumber:               req.MobileNumber,
		InstallationType:           req.InstallationType,
		PPPoEUsername:              req.PPPoEUsername,
		PPPoEPassword:              req.PPPoEPassword,
	}

	if err := db.Create(&ticket).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create ticket",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    ticket,
	})
}

// GetAllTickets handles GET /api/v1/tickets - lists every ticket for the
// admin panel
func GetAllTickets(c *gin.Context) {
	db := config.GetDB()
	var tickets []models.Ticket
	if err := db.Order("created_at DESC").Find(&tickets).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch tickets.",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    tickets,
	})
}

// GetClosedTickets handles GET /api/v1/tickets/closed - lists completed
// tickets for the admin panel
func GetClosedTickets(c *gin.Context) {
	db := config.GetDB()
	var tickets []models.Ticket
	if err := db.Where("status = ?", models.StatusComplete).Order("updated_at DESC").Find(&tickets).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Error fetching closed tickets",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    tickets,
	})
}

// GetTechnicianTickets handles GET /api/v1/tickets/technician/:username -
// lists a technician's open tickets (completed tickets are excluded)
func GetTechnicianTickets(c *gin.Context) {
	username := c.Param("username")

	db := config.GetDB()
	var tickets []models.Ticket
	err := db.Where("assigned_technician_username = ? AND status <> ?", username, models.StatusComplete).
		Order("created_at DESC").
		Find(&tickets).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch tickets for technician.",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    tickets,
	})
}

// GetTicketByID handles GET /api/v1/tickets/:ticketId - fetches a single
// ticket
func GetTicketByID(c *gin.Context) {
	id, ok := ticketIDParam(c)
	if !ok {
		return
	}

	ticketService := services.NewTicketService(config.GetDB())
	ticket, err := ticketService.GetTicket(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    ticket,
	})
}

// UpdateTicketStatus handles PUT /api/v1/tickets/:ticketId/status - advances
// the ticket to the next status in the workflow. The next status is computed
// server-side; the request takes no body.
func UpdateTicketStatus(c *gin.Context) {
	id, ok := ticketIDParam(c)
	if !ok {
		return
	}

	ticketService := services.NewTicketService(config.GetDB())
	ticket, err := ticketService.Advance(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    ticket,
	})
}

// CloseTicket handles PUT /api/v1/tickets/:ticketId/close - forces the ticket
// to Complete and writes the audit record
func CloseTicket(c *gin.Context) {
	id, ok := ticketIDParam(c)
	if !ok {
		return
	}

	// Record who closed the ticket when the caller has a profile; closing
	// still works without one
	var changedBy *uint
	auth0ID, err := middleware.GetUserID(c)
	if err == nil {
		var user models.User
		if err := config.GetDB().Where("auth0_id = ?", auth0ID).First(&user).Error; err == nil {
			changedBy = &user.ID
		}
	}

	ticketService := services.NewTicketService(config.GetDB())
	ticket, err := ticketService.Close(id, changedBy)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    ticket,
	})
}

// storeUploadedPhoto validates and stores one uploaded photo, returning the
// storage key (S3) or local path. A nil fileHeader returns nil.
func storeUploadedPhoto(fileHeader *multipart.FileHeader) (*string, error) {
	if fileHeader == nil {
		return nil, nil
	}

	if imageService := services.GetImageService(); imageService != nil {
		key, err := imageService.UploadImage(fileHeader)
		if err != nil {
			return nil, err
		}
		return &key, nil
	}

	// No S3 configured; validate and keep the file on local disk
	if err := utils.ValidateImageFile(fileHeader); err != nil {
		return nil, err
	}
	filename, err := utils.SaveUploadedFile(fileHeader, utils.UploadDir)
	if err != nil {
		return nil, err
	}
	path := utils.GetImageURL(filename)
	return &path, nil
}

// SubmitTicketDetails handles PUT /api/v1/tickets/:ticketId/submitTicketDetails -
// attaches the site submission fields and photos to the ticket. Submitting
// details does not complete the ticket; the client closes it separately.
func SubmitTicketDetails(c *gin.Context) {
	id, ok := ticketIDParam(c)
	if !ok {
		return
	}

	details := services.SubmissionDetails{}
	if v, exists := c.GetPostForm("macAddress"); exists {
		details.MACAddress = &v
	}
	if v, exists := c.GetPostForm("signalReceived"); exists {
		details.SignalReceived = &v
	}
	if v, exists := c.GetPostForm("bomUsed"); exists {
		details.BOMUsed = &v
	}
	if v, exists := c.GetPostForm("additionalNotes"); exists {
		details.AdditionalNotes = &v
	}

	// Photos are optional; each present file is validated and stored
	photoFields := []struct {
		name string
		dest **string
	}{
		{"speedtestScreenshot", &details.SpeedtestScreenshot},
		{"wanPhoto", &details.WANPhoto},
		{"lanPhoto", &details.LANPhoto},
	}
	for _, field := range photoFields {
		fileHeader, err := c.FormFile(field.name)
		if err != nil {
			// Field not present in the form
			continue
		}
		key, err := storeUploadedPhoto(fileHeader)
		if err != nil {
			var uploadErr *utils.FileUploadError
			if errors.As(err, &uploadErr) {
				c.JSON(http.StatusBadRequest, gin.H{
					"success": false,
					"error": gin.H{
						"code":    uploadErr.Code,
						"message": uploadErr.Message,
					},
				})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UPLOAD_ERROR",
					"message": "Failed to store uploaded photo",
				},
			})
			return
		}
		*field.dest = key
	}

	ticketService := services.NewTicketService(config.GetDB())
	ticket, err := ticketService.SubmitDetails(id, details)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    ticket,
	})
}
