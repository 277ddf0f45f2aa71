package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// User types
const (
	UserTypeClient     = "client"
	UserTypeTechnician = "technician"
)

// Roles
const (
	RoleAdmin           = "Admin"
	RoleCustomerService = "Customer-Service"
	RoleTechnician      = "Technician"
	RoleClient          = "Client"
)

// Visibility tiers
const (
	TierBasic    = "basic"
	TierPremium  = "premium"
	TierFeatured = "featured"
)

// StringList stores a set of strings as a JSON array in a text column so the
// same model works with both the PostgreSQL and SQLite drivers.
type StringList []string

// Value implements driver.Valuer
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (l *StringList) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("cannot scan %T into StringList", value)
	}
}

// Contains reports whether s is a member of the list
func (l StringList) Contains(s string) bool {
	for _, item := range l {
		if item == s {
			return true
		}
	}
	return false
}

// User represents a user in the system (client or technician).
// Technician-specific fields (category, offered services, location, visibility
// tier, rating) are unset for clients.
type User struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Auth0ID     string `gorm:"uniqueIndex;not null" json:"auth0_id"` // Auth0 user ID (from 'sub' claim)
	Username    string `gorm:"uniqueIndex;not null" json:"username"`
	Name        string `json:"name"`
	Email       string `gorm:"uniqueIndex;not null" json:"email"`
	PhoneNumber string `json:"phone_number"`
	UserType    string `gorm:"not null;default:'client';index" json:"user_type"` // "client" or "technician"
	Role        string `gorm:"not null;default:'Client'" json:"role"`            // "Admin", "Customer-Service", "Technician" or "Client"

	// Professional information. A technician offers one top-level category and
	// a set of sub-services. The subServices/services/professions split mirrors
	// historical field naming; all three are matched during discovery.
	Category    string     `gorm:"index" json:"category"`
	SubServices StringList `gorm:"type:text" json:"sub_services"`
	Services    StringList `gorm:"type:text" json:"services"`
	Professions StringList `gorm:"type:text" json:"professions"`

	// Location point. Both coordinates are set together or not at all.
	// (0,0) is a literal coordinate, not a "missing" sentinel.
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`

	// Paid visibility. The tier only counts while visibility_expiry is in the
	// future; an expired or missing expiry decays the tier to basic at read
	// time, no background job involved.
	VisibilityTier   string     `gorm:"not null;default:'basic'" json:"visibility_tier"` // "basic", "premium" or "featured"
	VisibilityExpiry *time.Time `json:"visibility_expiry"`
	IsActive         bool       `gorm:"not null;default:true" json:"is_active"`

	RatingAverage float64 `gorm:"not null;default:0" json:"rating_average"` // 0-5
	RatingCount   int     `gorm:"not null;default:0" json:"rating_count"`

	// Public profile enrichment. The picture holds a storage key or local
	// upload path; the intro video holds an external URL.
	ProfilePicture string `json:"profile_picture"`
	IntroVideo     string `json:"intro_video"`

	// Profile sections, preloaded only where the full profile is served
	Skills         []Skill            `gorm:"foreignKey:UserID" json:"skills,omitempty"`
	Certifications []Certification    `gorm:"foreignKey:UserID" json:"certifications,omitempty"`
	Education      []Education        `gorm:"foreignKey:UserID" json:"education,omitempty"`
	Portfolio      []PortfolioProject `gorm:"foreignKey:UserID" json:"portfolio,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// HasLocation reports whether the user has a stored location point
func (u *User) HasLocation() bool {
	return u.Latitude != nil && u.Longitude != nil
}

// IsPremiumActive reports whether the user's premium visibility is currently
// active: tier is "premium" and the expiry lies in the future.
func (u *User) IsPremiumActive(now time.Time) bool {
	if u.VisibilityTier != TierPremium {
		return false
	}
	if u.VisibilityExpiry == nil {
		return false
	}
	return now.Before(*u.VisibilityExpiry)
}

// IsFeaturedActive reports whether the user's featured visibility is currently
// active: tier is "featured" and the expiry lies in the future.
func (u *User) IsFeaturedActive(now time.Time) bool {
	if u.VisibilityTier != TierFeatured {
		return false
	}
	if u.VisibilityExpiry == nil {
		return false
	}
	return now.Before(*u.VisibilityExpiry)
}

// OffersSubService reports whether the sub-service appears in any of the three
// offering fields. The union across subServices/services/professions is
// intentional; offerings of older accounts live in the legacy fields.
func (u *User) OffersSubService(subService string) bool {
	return u.SubServices.Contains(subService) ||
		u.Services.Contains(subService) ||
		u.Professions.Contains(subService)
}
