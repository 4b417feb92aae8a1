package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Return of earnings statuses.
const (
	StatusDraft     = "draft"
	StatusSubmitted = "submitted"
	StatusFlagged   = "flagged"
	StatusAccepted  = "accepted"
)

// DefaultDocumentType is used when an upload carries no explicit type.
const DefaultDocumentType = "ROE_Document"

// Assessment is one earnings declaration, provisional or final.
type Assessment struct {
	EmployeesEarnings     float64 `json:"employeesEarnings"`
	DirectorsEarnings     float64 `json:"directorsEarnings"`
	AccommodationAndMeals float64 `json:"accommodationAndMeals"`
	TotalEarnings         float64 `json:"totalEarnings"`
	Comment               string  `json:"comment"`
}

// IsZero reports whether no assessment data was captured.
func (a Assessment) IsZero() bool {
	return a == Assessment{}
}

// ROE is a return of earnings declaration for one organisation and
// assessment year. The cf number/year pair is indexed but not unique;
// duplicate prevention happens at submission.
type ROE struct {
	ID                   snowflake.ID `gorm:"primaryKey" json:"id"`
	CFRegistrationNumber string       `gorm:"size:12;index:ix_roes_cf_year" json:"cfRegistrationNumber"`
	AssessmentYear       int          `gorm:"index:ix_roes_cf_year" json:"assessmentYear"`
	ProcessedBy          snowflake.ID `json:"processedBy"`
	Status               string       `gorm:"size:16;default:draft" json:"status"`

	EmployeesEarnings  float64 `json:"employeesEarnings"`
	DirectorsEarnings  float64 `json:"directorsEarnings"`
	AccommodationMeals float64 `json:"accommodationMeals"`
	TotalEarnings      float64 `json:"totalEarnings"`
	NumberOfEmployees  int     `json:"numberOfEmployees"`
	NumberOfDirectors  int     `json:"numberOfDirectors"`
	Comments           string  `json:"comments"`

	FinalAssessment       datatypes.JSONType[Assessment] `gorm:"type:jsonb" json:"finalAssessment"`
	ProvisionalAssessment datatypes.JSONType[Assessment] `gorm:"type:jsonb" json:"provisionalAssessment"`

	PaymentAmount float64 `json:"paymentAmount"`

	FlaggedAt  *time.Time `json:"flaggedAt,omitempty"`
	FlaggedBy  string     `gorm:"size:64" json:"flaggedBy,omitempty"`
	AcceptedAt *time.Time `json:"acceptedAt,omitempty"`
	AcceptedBy string     `gorm:"size:64" json:"acceptedBy,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Documents []Document `gorm:"foreignKey:ROEID" json:"documents,omitempty"`
}

func (ROE) TableName() string { return "roes" }

// RecalculateTotal refreshes the top level total from its parts.
func (r *ROE) RecalculateTotal() {
	r.TotalEarnings = r.EmployeesEarnings + r.DirectorsEarnings + r.AccommodationMeals
}

type Document struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	ROEID        snowflake.ID `gorm:"index:ix_roe_documents_roe" json:"roeId"`
	DocumentType string       `gorm:"size:64" json:"documentType"`
	Filename     string       `gorm:"size:255" json:"filename"`
	OriginalName string       `gorm:"size:255" json:"originalName"`
	FileSize     int64        `json:"fileSize"`
	MimeType     string       `gorm:"size:128" json:"mimeType"`
	UploadedAt   time.Time    `json:"uploadDate"`
}

func (Document) TableName() string { return "roe_documents" }

// DocumentMeta describes a document attached to a declaration, either
// from a multipart upload or from the submission payload.
type DocumentMeta struct {
	Filename     string
	OriginalName string
	DocumentType string
	FileSize     int64
	MimeType     string
}
