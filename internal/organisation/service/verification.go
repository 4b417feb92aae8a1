package service

import (
	"context"
	"strings"

	"github.com/compfund/cfportal/internal/organisation/domain"
)

// VerifyDetails validates the presented identifiers in a fixed order:
// type, per-type required fields, then registration, identity and tax
// numbers each checked for format before being matched against the
// registered record.
func (s *service) VerifyDetails(ctx context.Context, req domain.VerifyDetailsRequest) (*domain.VerificationResult, error) {
	if req.OrganisationType == "" {
		return nil, domain.ErrTypeRequired
	}

	required, ok := domain.RequiredVerificationFields(req.OrganisationType)
	if !ok {
		return nil, domain.ErrInvalidType
	}

	present := map[string]string{
		"registrationNumber": req.RegistrationNumber,
		"identityNumber":     req.IdentityNumber,
		"taxNumber":          req.TaxNumber,
	}
	var missing []string
	for _, field := range required {
		if present[field] == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, &domain.MissingFieldsError{OrganisationType: req.OrganisationType, Fields: missing}
	}

	if req.RegistrationNumber == "" {
		return nil, domain.ErrRegistrationNumberRequired
	}
	if !domain.RegistrationNumberPattern.MatchString(req.RegistrationNumber) {
		return nil, domain.ErrInvalidRegistrationNumber
	}

	org, err := s.repo.FindByTypeAndRegistration(ctx, req.OrganisationType, req.RegistrationNumber)
	if err != nil {
		if err == domain.ErrOrganisationNotFound {
			return nil, domain.ErrNoRegisteredOrganisation
		}
		return nil, err
	}

	if org.IsApproved() {
		return nil, domain.ErrAlreadyApproved
	}

	if req.IdentityNumber == "" {
		return nil, domain.ErrIdentityNumberRequired
	}
	if !domain.IdentityNumberPattern.MatchString(req.IdentityNumber) {
		return nil, domain.ErrInvalidIdentityNumber
	}
	if len(org.IdentityNumbers) == 0 {
		return nil, domain.ErrIdentityDataMissing
	}
	if !containsIdentity(org.IdentityNumbers, strings.TrimSpace(req.IdentityNumber)) {
		return nil, domain.ErrIdentityNumberMismatch
	}

	if req.TaxNumber == "" {
		return nil, domain.ErrTaxNumberRequired
	}
	if !domain.TaxNumberPattern.MatchString(req.TaxNumber) {
		return nil, domain.ErrInvalidTaxNumber
	}
	if strings.TrimSpace(org.TaxNumber) == "" {
		return nil, domain.ErrTaxDataMissing
	}
	if strings.TrimSpace(org.TaxNumber) != strings.TrimSpace(req.TaxNumber) {
		return nil, domain.ErrTaxNumberMismatch
	}

	docs, err := s.repo.ListDocuments(ctx, org.ID)
	if err != nil {
		return nil, err
	}
	return &domain.VerificationResult{Organisation: org, Documents: docs}, nil
}

func containsIdentity(numbers []string, idNumber string) bool {
	for _, n := range numbers {
		if n == idNumber {
			return true
		}
	}
	return false
}
