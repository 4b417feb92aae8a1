package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Organisation types accepted by the portal.
const (
	TypeBodyCorporate       = "Body Corporate"
	TypeTrustNumber         = "Trust Number"
	TypeDomesticEmployer    = "Domestic Employer"
	TypeNPONumber           = "NPO Number"
	TypeSchool              = "School"
	TypeSoleProprietor      = "Sole Proprietor"
	TypeCompanyRegistration = "Company Registration Number"
)

// Registration lifecycle statuses.
const (
	StatusDraft     = "draft"
	StatusSubmitted = "submitted"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
)

// Verification statuses tracked alongside the lifecycle.
const (
	VerificationPending  = "pending"
	VerificationVerified = "verified"
	VerificationFailed   = "failed"
)

// Link statuses for users attached to an organisation.
const (
	LinkStatusPending  = "pending"
	LinkStatusApproved = "approved"
)

// DefaultMaxLinkedUsers caps how many users may be linked to one
// organisation.
const DefaultMaxLinkedUsers = 10

type Organisation struct {
	ID                 snowflake.ID `gorm:"primaryKey" json:"id"`
	OwnerID            snowflake.ID `gorm:"index:ix_organisations_owner" json:"ownerId"`
	OrganisationType   string       `gorm:"size:64" json:"organisationType"`
	RegistrationNumber string       `gorm:"size:32;index:ix_organisations_registration_number" json:"registrationNumber"`
	// IdentityNumbers holds every identity number registered against
	// the employer, any one of which verifies.
	IdentityNumbers datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"identityNumber"`
	TaxNumber       string                      `gorm:"size:16" json:"taxNumber"`

	Status             string `gorm:"size:16;default:draft;index:ix_organisations_status" json:"status"`
	VerificationStatus string `gorm:"size:16;default:pending" json:"verificationStatus"`

	CFRegistrationNumber *string `gorm:"size:12;uniqueIndex:ux_organisations_cf_number" json:"cfRegistrationNumber,omitempty"`
	BPNumber             *string `gorm:"size:10;uniqueIndex:ux_organisations_bp_number" json:"bpNumber,omitempty"`

	// Profile sections are stored as separate jsonb columns so each
	// can be merged independently.
	Details      datatypes.JSONMap `gorm:"type:jsonb" json:"details"`
	Address      datatypes.JSONMap `gorm:"type:jsonb" json:"address"`
	Contact      datatypes.JSONMap `gorm:"type:jsonb" json:"contact"`
	Banking      datatypes.JSONMap `gorm:"type:jsonb" json:"banking"`
	BusinessInfo datatypes.JSONMap `gorm:"type:jsonb" json:"businessInfo"`

	MaxLinkedUsers int `gorm:"default:10" json:"maxLinkedUsers"`

	SubmittedAt *time.Time `json:"submittedAt,omitempty"`
	ApprovedAt  *time.Time `json:"approvedAt,omitempty"`
	RejectedAt  *time.Time `json:"rejectedAt,omitempty"`

	ApprovedBy      string `gorm:"size:64" json:"approvedBy,omitempty"`
	ApprovalNotes   string `json:"approvalNotes,omitempty"`
	RejectedBy      string `gorm:"size:64" json:"rejectedBy,omitempty"`
	RejectionReason string `json:"rejectionReason,omitempty"`
	RejectionNotes  string `json:"rejectionNotes,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Documents   []Document   `gorm:"foreignKey:OrganisationID" json:"documents,omitempty"`
	LinkedUsers []LinkedUser `gorm:"foreignKey:OrganisationID" json:"linkedUsers,omitempty"`
}

func (Organisation) TableName() string { return "organisations" }

// IsApproved reports whether the organisation completed approval and
// holds both issued identifiers.
func (o *Organisation) IsApproved() bool {
	return o.Status == StatusApproved && o.CFRegistrationNumber != nil && o.BPNumber != nil
}

type Document struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	OrganisationID snowflake.ID `gorm:"uniqueIndex:ux_organisation_documents_type;index:ix_organisation_documents_org" json:"organisationId"`
	DocumentType   string       `gorm:"size:64;uniqueIndex:ux_organisation_documents_type" json:"documentType"`
	Filename       string       `gorm:"size:255" json:"filename"`
	OriginalName   string       `gorm:"size:255" json:"originalName"`
	FilePath       string       `gorm:"size:512" json:"-"`
	FileSize       int64        `json:"fileSize"`
	MimeType       string       `gorm:"size:128" json:"mimeType"`
	UploadedAt     time.Time    `json:"uploadDate"`
}

func (Document) TableName() string { return "organisation_documents" }

type LinkedUser struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	OrganisationID snowflake.ID `gorm:"uniqueIndex:ux_organisation_links_user;index:ix_organisation_links_org" json:"organisationId"`
	UserID         snowflake.ID `gorm:"uniqueIndex:ux_organisation_links_user;index:ix_organisation_links_user" json:"userId"`
	Status         string       `gorm:"size:16;default:pending" json:"status"`
	SignedFormPath string       `gorm:"size:512" json:"signedFormPath,omitempty"`
	LinkedAt       time.Time    `json:"linkedAt"`
}

func (LinkedUser) TableName() string { return "organisation_links" }
