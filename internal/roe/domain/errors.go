package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrROENotFound      = errors.New("roe not found")
	ErrFieldsRequired   = errors.New("cfRegistrationNumber and assessmentYear are required")
	ErrAlreadySubmitted = errors.New("roe has already been submitted for this organisation and assessment year")
	ErrDocumentExists   = errors.New("document of this type already exists for this roe")
)

// MissingDocumentsError reports required document types still absent
// after merging the submission's documents with the stored ones.
type MissingDocumentsError struct {
	Documents []string
}

func (e *MissingDocumentsError) Error() string {
	return fmt.Sprintf("missing required documents after merge: %s", strings.Join(e.Documents, ", "))
}

// InvalidStatusError reports an audit action attempted on a
// declaration that is not in the required status.
type InvalidStatusError struct {
	Required string
	Current  string
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("roe must be in %s status, current status: %s", e.Required, e.Current)
}
