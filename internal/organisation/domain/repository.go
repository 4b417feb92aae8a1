package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// SubmissionKey identifies the draft an employer is submitting: every
// identifier captured at verification must match.
type SubmissionKey struct {
	OrganisationType   string
	RegistrationNumber string
	IdentityNumber     string
	TaxNumber          string
}

type Repository interface {
	Create(ctx context.Context, org *Organisation) error
	FindByID(ctx context.Context, id snowflake.ID) (*Organisation, error)
	FindByTypeAndRegistration(ctx context.Context, orgType, registrationNumber string) (*Organisation, error)
	FindByRegistrationNumber(ctx context.Context, registrationNumber string) (*Organisation, error)
	FindByCFNumber(ctx context.Context, cfNumber string) (*Organisation, error)
	FindBySubmissionKey(ctx context.Context, key SubmissionKey) (*Organisation, error)
	FindFirstOwnedBy(ctx context.Context, ownerID snowflake.ID) (*Organisation, error)
	ListOwnedBy(ctx context.Context, ownerID snowflake.ID) ([]Organisation, error)
	// ListLinkedTo returns organisations the user is linked to with an
	// approved link.
	ListLinkedTo(ctx context.Context, userID snowflake.ID) ([]Organisation, error)
	ListAll(ctx context.Context) ([]Organisation, error)
	// FindAccessible loads an organisation only if the user owns it or
	// holds an approved link; otherwise ErrAccessDenied.
	FindAccessible(ctx context.Context, id, userID snowflake.ID) (*Organisation, error)

	UpdateFields(ctx context.Context, id snowflake.ID, fields map[string]any) error
	// TransitionStatus applies fields only if the organisation is
	// still in the expected status; returns false when the guard
	// no longer holds.
	TransitionStatus(ctx context.Context, id snowflake.ID, from string, fields map[string]any) (bool, error)

	AddDocument(ctx context.Context, doc *Document) error
	FindDocument(ctx context.Context, orgID, docID snowflake.ID) (*Document, error)
	ListDocuments(ctx context.Context, orgID snowflake.ID) ([]Document, error)
	UpdateDocumentFields(ctx context.Context, docID snowflake.ID, fields map[string]any) error

	AddLink(ctx context.Context, link *LinkedUser) error
	FindLink(ctx context.Context, orgID, userID snowflake.ID) (*LinkedUser, error)
	CountLinks(ctx context.Context, orgID snowflake.ID) (int64, error)
	ListLinks(ctx context.Context, orgID snowflake.ID) ([]LinkedUser, error)
	UpdateLinkFields(ctx context.Context, linkID snowflake.ID, fields map[string]any) error
}
