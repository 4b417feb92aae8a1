package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	// VerifyDetails checks the presented identifiers against the
	// registered employer record and returns its captured profile.
	VerifyDetails(ctx context.Context, req VerifyDetailsRequest) (*VerificationResult, error)

	GetProfile(ctx context.Context, userID snowflake.ID) (*Organisation, error)
	GetByID(ctx context.Context, id snowflake.ID) (*Organisation, error)
	ListAll(ctx context.Context) ([]Organisation, error)
	// ListForUser returns owned and approved-linked organisations,
	// owned entries winning when both apply.
	ListForUser(ctx context.Context, userID snowflake.ID) ([]OrganisationAccess, error)

	// UpdateDetails merges the supplied profile sections and
	// auto-submits a draft once every required field is present.
	UpdateDetails(ctx context.Context, userID, orgID snowflake.ID, update ProfileUpdate) (*Organisation, bool, error)
	UpdateSection(ctx context.Context, userID, orgID snowflake.ID, section string, values map[string]any) (*Organisation, error)

	UploadDocument(ctx context.Context, req UploadDocumentRequest) (*Document, error)
	ReplaceDocument(ctx context.Context, req ReplaceDocumentRequest) (*Document, error)

	SubmitForApproval(ctx context.Context, userID snowflake.ID, key SubmissionKey) (*Organisation, error)
	Resubmit(ctx context.Context, userID, orgID snowflake.ID) (*Organisation, error)
	Approve(ctx context.Context, req ApproveRequest) (*Organisation, error)
	Reject(ctx context.Context, req RejectRequest) (*Organisation, error)

	// LinkByCF starts a linking request against an approved
	// organisation and mails the authorisation form.
	LinkByCF(ctx context.Context, userID snowflake.ID, cfNumber string) (*Organisation, error)
	UploadSignedForm(ctx context.Context, userID, orgID snowflake.ID, formPath string) (*Organisation, error)
}

type VerifyDetailsRequest struct {
	OrganisationType   string
	RegistrationNumber string
	IdentityNumber     string
	TaxNumber          string
}

type VerificationResult struct {
	Organisation *Organisation
	Documents    []Document
}

// OrganisationAccess pairs an organisation with the caller's
// relationship to it.
type OrganisationAccess struct {
	Organisation Organisation
	Role         string // "owner" or "linked_user"
	LinkStatus   string
	LinkedAt     string
	HasSigned    bool
}

// ProfileUpdate carries section payloads for a full details merge.
// Nil sections are left untouched.
type ProfileUpdate struct {
	Details      map[string]any
	Address      map[string]any
	Contact      map[string]any
	Banking      map[string]any
	BusinessInfo map[string]any
}

// Profile sections addressable by field-scoped updates.
const (
	SectionDetails      = "details"
	SectionContact      = "contact"
	SectionAddress      = "address"
	SectionBanking      = "banking"
	SectionBusinessInfo = "businessInfo"
)

// StoredFile describes an already-persisted upload.
type StoredFile struct {
	Filename     string
	OriginalName string
	Path         string
	Size         int64
	MimeType     string
}

type UploadDocumentRequest struct {
	RegistrationNumber string
	DocumentType       string
	File               StoredFile
}

type ReplaceDocumentRequest struct {
	UserID         snowflake.ID
	OrganisationID snowflake.ID
	DocumentID     snowflake.ID
	DocumentType   string
	File           StoredFile
}

type ApproveRequest struct {
	OrganisationID snowflake.ID
	ApprovedBy     string
	Notes          string
	// CFOverride lets the reviewer supply a CF number instead of
	// generating one; it is stored verbatim.
	CFOverride string
}

type RejectRequest struct {
	OrganisationID snowflake.ID
	RejectedBy     string
	Reason         string
	Notes          string
}
