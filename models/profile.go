package models

import "time"

// Skill levels
const (
	SkillLevelBeginner     = "beginner"
	SkillLevelIntermediate = "intermediate"
	SkillLevelExpert       = "expert"
)

// Education types
const (
	EducationTypeDegree      = "degree"
	EducationTypeDiploma     = "diploma"
	EducationTypeCertificate = "certificate"
)

// Skill is a self-declared technician skill. Skill names are free text but
// unique per user (case-insensitive).
type Skill struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	UserID            uint      `gorm:"index;not null" json:"-"`
	Name              string    `gorm:"not null" json:"name"`
	Level             string    `gorm:"not null" json:"level"` // "beginner", "intermediate" or "expert"
	YearsOfExperience int       `gorm:"not null;default:0" json:"years_of_experience"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Skill model
func (Skill) TableName() string {
	return "skills"
}

// Certification is a professional certification held by a technician
type Certification struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"index;not null" json:"-"`
	Name           string    `gorm:"not null" json:"name"`
	IssuedBy       string    `gorm:"not null" json:"issued_by"`
	IssueYear      int       `gorm:"not null" json:"issue_year"`
	ExpirationYear *int      `json:"expiration_year"`
	CredentialID   string    `json:"credential_id"`
	CredentialURL  string    `json:"credential_url"`
	CreatedAt      time.Time `json:"created_at"`
}

// TableName specifies the table name for the Certification model
func (Certification) TableName() string {
	return "certifications"
}

// Education is a formal education entry on a technician profile
type Education struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"index;not null" json:"-"`
	Institution    string    `gorm:"not null" json:"institution"`
	EducationType  string    `gorm:"not null" json:"education_type"` // "degree", "diploma" or "certificate"
	FieldOfStudy   string    `gorm:"not null" json:"field_of_study"`
	GraduationYear int       `json:"graduation_year"`
	Description    string    `json:"description"`
	CreatedAt      time.Time `json:"created_at"`
}

// TableName specifies the table name for the Education model
func (Education) TableName() string {
	return "education_entries"
}

// PortfolioProject is a past project showcased on a technician profile
type PortfolioProject struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UserID       uint       `gorm:"index;not null" json:"-"`
	Title        string     `gorm:"not null" json:"title"`
	Description  string     `gorm:"not null" json:"description"`
	ProjectURL   string     `json:"project_url"`
	Technologies StringList `gorm:"type:text" json:"technologies"`
	ProjectDate  time.Time  `json:"project_date"`
	CreatedAt    time.Time  `json:"created_at"`
}

// TableName specifies the table name for the PortfolioProject model
func (PortfolioProject) TableName() string {
	return "portfolio_projects"
}
