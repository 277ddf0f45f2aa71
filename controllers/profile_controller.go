package controllers

import (
	"errors"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/weba-hub/weba-hub-api/config"
	"github.com/weba-hub/weba-hub-api/models"
	"github.com/weba-hub/weba-hub-api/services"
	"github.com/weba-hub/weba-hub-api/utils"
)

// SkillRequest represents the request body for adding or updating a skill
type SkillRequest struct {
	Name              string `json:"name" binding:"required"`
	Level             string `json:"level" binding:"required,oneof=beginner intermediate expert"`
	YearsOfExperience int    `json:"years_of_experience" binding:"omitempty,min=0"`
}

// CertificationRequest represents the request body for adding a certification
type CertificationRequest struct {
	Name           string `json:"name" binding:"required"`
	IssuedBy       string `json:"issued_by" binding:"required"`
	IssueYear      int    `json:"issue_year" binding:"required"`
	ExpirationYear *int   `json:"expiration_year" binding:"omitempty"`
	CredentialID   string `json:"credential_id" binding:"omitempty"`
	CredentialURL  string `json:"credential_url" binding:"omitempty"`
}

// EducationRequest represents the request body for adding an education entry
type EducationRequest struct {
	Institution    string `json:"institution" binding:"required"`
	EducationType  string `json:"education_type" binding:"required,oneof=degree diploma certificate"`
	FieldOfStudy   string `json:"field_of_study" binding:"required"`
	GraduationYear int    `json:"graduation_year" binding:"omitempty"`
	Description    string `json:"description" binding:"omitempty"`
}

// PortfolioProjectRequest represents the request body for adding a portfolio
// project
type PortfolioProjectRequest struct {
	Title        string     `json:"title" binding:"required"`
	Description  string     `json:"description" binding:"required"`
	ProjectURL   string     `json:"project_url" binding:"omitempty"`
	Technologies []string   `json:"technologies" binding:"omitempty"`
	ProjectDate  *time.Time `json:"project_date" binding:"omitempty"`
}

// IntroVideoRequest represents the request body for updating the intro video
type IntroVideoRequest struct {
	VideoURL string `json:"video_url" binding:"required"`
}

// profileItemIDParam parses a numeric route parameter identifying a profile
// section entry. It writes the error response itself and returns false for a
// malformed ID.
func profileItemIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Entry ID must be a number",
			},
		})
		return 0, false
	}
	return uint(id), true
}

func respondDatabaseError(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "DATABASE_ERROR",
			"message": message,
		},
	})
}

func respondValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "VALIDATION_ERROR",
			"message": "Invalid request data",
			"details": err.Error(),
		},
	})
}

// respondProfileSection returns the full section after a mutation so the
// client can re-render without a second request
func respondProfileSection(c *gin.Context, key string, userID uint, dest interface{}) {
	db := config.GetDB()
	if err := db.Where("user_id = ?", userID).Order("id").Find(dest).Error; err != nil {
		respondDatabaseError(c, "Failed to load profile section")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{key: dest},
	})
}

// AddSkill handles POST /api/v1/users/me/skills - adds a self-declared skill.
// Skill names are unique per user, compared case-insensitively.
func AddSkill(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req SkillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	name := strings.TrimSpace(req.Name)

	db := config.GetDB()
	var count int64
	err := db.Model(&models.Skill{}).
		Where("user_id = ? AND LOWER(name) = LOWER(?)", user.ID, name).
		Count(&count).Error
	if err != nil {
		respondDatabaseError(c, "Failed to check existing skills")
		return
	}
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "SKILL_EXISTS",
				"message": "Skill already exists",
			},
		})
		return
	}

	skill := models.Skill{
		UserID:            user.ID,
		Name:              name,
		Level:             req.Level,
		YearsOfExperience: req.YearsOfExperience,
	}
	if err := db.Create(&skill).Error; err != nil {
		respondDatabaseError(c, "Failed to add skill")
		return
	}

	respondProfileSection(c, "skills", user.ID, &[]models.Skill{})
}

// UpdateSkill handles PUT /api/v1/users/me/skills/:skillId - renames or
// relevels an existing skill
func UpdateSkill(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	skillID, ok := profileItemIDParam(c, "skillId")
	if !ok {
		return
	}

	var req SkillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	name := strings.TrimSpace(req.Name)

	db := config.GetDB()
	var skill models.Skill
	if err := db.Where("id = ? AND user_id = ?", skillID, user.ID).First(&skill).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "SKILL_NOT_FOUND",
				"message": "Skill not found",
			},
		})
		return
	}

	// The new name must not collide with another of the user's skills
	var count int64
	err := db.Model(&models.Skill{}).
		Where("user_id = ? AND id <> ? AND LOWER(name) = LOWER(?)", user.ID, skill.ID, name).
		Count(&count).Error
	if err != nil {
		respondDatabaseError(c, "Failed to check existing skills")
		return
	}
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "SKILL_EXISTS",
				"message": "Skill name already exists",
			},
		})
		return
	}

	updates := map[string]interface{}{
		"name":                name,
		"level":               req.Level,
		"years_of_experience": req.YearsOfExperience,
	}
	if err := db.Model(&skill).Updates(updates).Error; err != nil {
		respondDatabaseError(c, "Failed to update skill")
		return
	}

	respondProfileSection(c, "skills", user.ID, &[]models.Skill{})
}

// RemoveSkill handles DELETE /api/v1/users/me/skills/:skillId. Removing an
// entry that is already gone is a no-op.
func RemoveSkill(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	skillID, ok := profileItemIDParam(c, "skillId")
	if !ok {
		return
	}

	db := config.GetDB()
	if err := db.Where("id = ? AND user_id = ?", skillID, user.ID).Delete(&models.Skill{}).Error; err != nil {
		respondDatabaseError(c, "Failed to remove skill")
		return
	}

	respondProfileSection(c, "skills", user.ID, &[]models.Skill{})
}

// AddCertification handles POST /api/v1/users/me/certifications
func AddCertification(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req CertificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	cert := models.Certification{
		UserID:         user.ID,
		Name:           req.Name,
		IssuedBy:       req.IssuedBy,
		IssueYear:      req.IssueYear,
		ExpirationYear: req.ExpirationYear,
		CredentialID:   req.CredentialID,
		CredentialURL:  req.CredentialURL,
	}
	if err := config.GetDB().Create(&cert).Error; err != nil {
		respondDatabaseError(c, "Failed to add certification")
		return
	}

	respondProfileSection(c, "certifications", user.ID, &[]models.Certification{})
}

// RemoveCertification handles DELETE /api/v1/users/me/certifications/:certificationId
func RemoveCertification(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	certID, ok := profileItemIDParam(c, "certificationId")
	if !ok {
		return
	}

	db := config.GetDB()
	if err := db.Where("id = ? AND user_id = ?", certID, user.ID).Delete(&models.Certification{}).Error; err != nil {
		respondDatabaseError(c, "Failed to remove certification")
		return
	}

	respondProfileSection(c, "certifications", user.ID, &[]models.Certification{})
}

// AddEducation handles POST /api/v1/users/me/education
func AddEducation(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req EducationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	entry := models.Education{
		UserID:         user.ID,
		Institution:    req.Institution,
		EducationType:  req.EducationType,
		FieldOfStudy:   req.FieldOfStudy,
		GraduationYear: req.GraduationYear,
		Description:    req.Description,
	}
	if err := config.GetDB().Create(&entry).Error; err != nil {
		respondDatabaseError(c, "Failed to add education entry")
		return
	}

	respondProfileSection(c, "education", user.ID, &[]models.Education{})
}

// RemoveEducation handles DELETE /api/v1/users/me/education/:educationId
func RemoveEducation(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	entryID, ok := profileItemIDParam(c, "educationId")
	if !ok {
		return
	}

	db := config.GetDB()
	if err := db.Where("id = ? AND user_id = ?", entryID, user.ID).Delete(&models.Education{}).Error; err != nil {
		respondDatabaseError(c, "Failed to remove education entry")
		return
	}

	respondProfileSection(c, "education", user.ID, &[]models.Education{})
}

// AddPortfolioProject handles POST /api/v1/users/me/portfolio. The project
// date defaults to the submission time when omitted.
func AddPortfolioProject(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req PortfolioProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	projectDate := time.Now()
	if req.ProjectDate != nil {
		projectDate = *req.ProjectDate
	}

	project := models.PortfolioProject{
		UserID:       user.ID,
		Title:        req.Title,
		Description:  req.Description,
		ProjectURL:   req.ProjectURL,
		Technologies: models.StringList(req.Technologies),
		ProjectDate:  projectDate,
	}
	if err := config.GetDB().Create(&project).Error; err != nil {
		respondDatabaseError(c, "Failed to add portfolio project")
		return
	}

	respondProfileSection(c, "portfolio", user.ID, &[]models.PortfolioProject{})
}

// RemovePortfolioProject handles DELETE /api/v1/users/me/portfolio/:projectId
func RemovePortfolioProject(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	projectID, ok := profileItemIDParam(c, "projectId")
	if !ok {
		return
	}

	db := config.GetDB()
	if err := db.Where("id = ? AND user_id = ?", projectID, user.ID).Delete(&models.PortfolioProject{}).Error; err != nil {
		respondDatabaseError(c, "Failed to remove portfolio project")
		return
	}

	respondProfileSection(c, "portfolio", user.ID, &[]models.PortfolioProject{})
}

// UpdateIntroVideo handles PUT /api/v1/users/me/intro-video - stores an
// external video URL on the profile
func UpdateIntroVideo(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req IntroVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	db := config.GetDB()
	if err := db.Model(&user).Update("intro_video", req.VideoURL).Error; err != nil {
		respondDatabaseError(c, "Failed to update intro video")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"intro_video": req.VideoURL},
	})
}

// UpdateProfilePicture handles PUT /api/v1/users/me/picture - replaces the
// profile picture. The old picture is removed from storage after the new one
// is saved.
func UpdateProfilePicture(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("picture")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_FILE",
				"message": "No picture uploaded",
			},
		})
		return
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
				"message": "Failed to store uploaded picture",
			},
		})
		return
	}

	old := user.ProfilePicture

	db := config.GetDB()
	if err := db.Model(&user).Update("profile_picture", *key).Error; err != nil {
		respondDatabaseError(c, "Failed to update profile picture")
		return
	}

	// Clean up the previous picture; a failure here leaves an orphaned file
	// but never fails the request
	if old != "" && old != *key {
		if imageService := services.GetImageService(); imageService != nil {
			if err := imageService.DeleteImage(old); err != nil {
				log.Printf("Failed to delete old profile picture %s: %v", old, err)
			}
		} else if err := os.Remove(filepath.Join(utils.UploadDir, filepath.Base(old))); err != nil && !os.IsNotExist(err) {
			log.Printf("Failed to delete old profile picture %s: %v", old, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"profile_picture": *key},
	})
}
