package domain

import "regexp"

// Wire formats for employer identifiers.
var (
	RegistrationNumberPattern = regexp.MustCompile(`^\d{4} / \d{6} / \d{2}$`)
	IdentityNumberPattern     = regexp.MustCompile(`^\d{13}$`)
	TaxNumberPattern          = regexp.MustCompile(`^\d{10}$`)
)

// requiredVerificationFields lists which identifying fields each
// organisation type must present during verification.
var requiredVerificationFields = map[string][]string{
	TypeBodyCorporate:       {"registrationNumber"},
	TypeTrustNumber:         {"registrationNumber"},
	TypeDomesticEmployer:    {"identityNumber"},
	TypeNPONumber:           {"registrationNumber"},
	TypeSchool:              {"registrationNumber"},
	TypeSoleProprietor:      {"identityNumber"},
	TypeCompanyRegistration: {"registrationNumber", "identityNumber", "taxNumber"},
}

// RequiredVerificationFields returns the identifying fields required
// for the given organisation type, or false for an unknown type.
func RequiredVerificationFields(orgType string) ([]string, bool) {
	fields, ok := requiredVerificationFields[orgType]
	return fields, ok
}

// Registration document types.
const (
	DocIDCopy              = "Id_Copy"
	DocCIPCCertificate     = "CIPC_Certificate"
	DocBusinessAddress     = "Business_Address"
	DocLetterOfAuthority   = "Letter_of_Authority"
	DocProofOfRegistration = "Proof_of_Registration"
)

// ValidDocumentTypes returns the document types an organisation of
// the given type may upload. The same set must be complete before the
// registration can be submitted for approval.
func ValidDocumentTypes(orgType string) []string {
	switch orgType {
	case TypeBodyCorporate, TypeTrustNumber:
		return []string{DocIDCopy, DocLetterOfAuthority, DocBusinessAddress}
	case TypeDomesticEmployer, TypeSoleProprietor:
		return []string{DocIDCopy, DocBusinessAddress}
	case TypeNPONumber, TypeSchool:
		return []string{DocProofOfRegistration, DocIDCopy, DocBusinessAddress}
	default:
		return []string{DocIDCopy, DocCIPCCertificate, DocBusinessAddress}
	}
}

// Profile fields that must be present before a draft auto-submits.
var (
	requiredDetailFields   = []string{"ownershipType", "tradingName", "firstEmployeeDate"}
	requiredAddressFields  = []string{"number", "name", "suburb", "city", "province", "postalCode"}
	requiredContactFields  = []string{"person", "telephone", "cellphone", "email"}
	requiredBankingFields  = []string{"bankName", "accountHolder", "accountNumber", "branchCode"}
	requiredBusinessFields = []string{"numberOfEmployees", "industries"}
)

// DetailsComplete reports whether every required profile field holds
// a non-empty value across all sections.
func (o *Organisation) DetailsComplete() bool {
	return sectionComplete(o.Details, requiredDetailFields) &&
		sectionComplete(o.Address, requiredAddressFields) &&
		sectionComplete(o.Contact, requiredContactFields) &&
		sectionComplete(o.Banking, requiredBankingFields) &&
		sectionComplete(o.BusinessInfo, requiredBusinessFields)
}

func sectionComplete(section map[string]any, required []string) bool {
	if section == nil {
		return false
	}
	for _, field := range required {
		if !hasValue(section[field]) {
			return false
		}
	}
	return true
}

func hasValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return val != ""
	case []any:
		return len(val) > 0
	case float64:
		return val != 0
	case int:
		return val != 0
	default:
		return true
	}
}
