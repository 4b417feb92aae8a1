package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrOrganisationNotFound = errors.New("organisation not found")
	ErrAccessDenied         = errors.New("organisation not found or access denied")
	ErrTypeRequired         = errors.New("organisation type is required")
	ErrInvalidType          = errors.New("invalid organisation type")

	// Format failures on verification identifiers. These map to 404,
	// matching the portal's published behaviour.
	ErrInvalidRegistrationNumber = errors.New("registration number is invalid")
	ErrInvalidIdentityNumber     = errors.New("identity number is invalid")
	ErrInvalidTaxNumber          = errors.New("tax number is invalid")

	ErrRegistrationNumberRequired = errors.New("registration number is required for verification")
	ErrIdentityNumberRequired     = errors.New("identity number is required for verification")
	ErrTaxNumberRequired          = errors.New("tax number is required for verification")

	ErrNoRegisteredOrganisation = errors.New("organisation with this registration number does not exist")
	ErrIdentityNumberMismatch   = errors.New("organisation exists, identity number incorrect")
	ErrTaxNumberMismatch        = errors.New("organisation exists, tax number incorrect")
	ErrIdentityDataMissing      = errors.New("organisation identity number data is missing")
	ErrTaxDataMissing           = errors.New("organisation tax number data is missing")

	ErrAlreadyApproved = errors.New("organisation is already approved, link to it instead of registering")
	ErrNotRejected     = errors.New("organisation can only be resubmitted if it was previously rejected")
	ErrNoDraftToSubmit = errors.New("no draft organisation found to submit")

	ErrDocumentExists   = errors.New("document of this type already exists")
	ErrDocumentNotFound = errors.New("document not found")

	ErrInvalidCFNumber  = errors.New("invalid cf registration number")
	ErrAlreadyLinked    = errors.New("user is already linked to this organisation")
	ErrLinkLimitReached = errors.New("organisation has reached the maximum number of linked users")
	ErrLinkNotFound     = errors.New("linking record not found")

	ErrRejectionReasonRequired = errors.New("rejection reason is required")

	// ErrIdentifierExhausted is returned when identifier generation
	// keeps colliding with issued numbers.
	ErrIdentifierExhausted = errors.New("could not issue unique identifiers")
)

// MissingFieldsError reports verification fields absent for the
// organisation type.
type MissingFieldsError struct {
	OrganisationType string
	Fields           []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("missing required fields for %s: %s", e.OrganisationType, strings.Join(e.Fields, ", "))
}

// MissingDocumentsError reports document types that must be uploaded
// before submission.
type MissingDocumentsError struct {
	Documents []string
}

func (e *MissingDocumentsError) Error() string {
	return fmt.Sprintf("missing required documents: %s", strings.Join(e.Documents, ", "))
}

// InvalidDocumentTypeError reports an upload of a document type the
// organisation's type does not accept.
type InvalidDocumentTypeError struct {
	OrganisationType string
	Allowed          []string
}

func (e *InvalidDocumentTypeError) Error() string {
	return fmt.Sprintf("invalid document type for %s, allowed types: %s", e.OrganisationType, strings.Join(e.Allowed, ", "))
}

// InvalidStatusError reports an operation attempted in the wrong
// lifecycle status.
type InvalidStatusError struct {
	Required string
	Current  string
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("organisation must be in %s status, current status: %s", e.Required, e.Current)
}
