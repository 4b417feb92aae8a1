package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	identitydomain "github.com/compfund/cfportal/internal/identity/domain"
	orgdomain "github.com/compfund/cfportal/internal/organisation/domain"
	roedomain "github.com/compfund/cfportal/internal/roe/domain"
)

var (
	errUnauthorized   = errors.New("unauthorized")
	errForbidden      = errors.New("forbidden")
	errInvalidRequest = errors.New("invalid request")
)

// ErrorHandlingMiddleware turns errors recorded on the context into
// the portal's response envelope once the handler chain finishes.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, body := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, body)
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, gin.H) {
	var missingFields *orgdomain.MissingFieldsError
	if errors.As(err, &missingFields) {
		return http.StatusBadRequest, gin.H{
			"success":       false,
			"message":       "Missing required fields for " + missingFields.OrganisationType,
			"missingFields": missingFields.Fields,
		}
	}

	var missingDocs *orgdomain.MissingDocumentsError
	if errors.As(err, &missingDocs) {
		return http.StatusBadRequest, gin.H{
			"success":          false,
			"message":          "Missing required documents",
			"missingDocuments": missingDocs.Documents,
		}
	}

	var roeMissingDocs *roedomain.MissingDocumentsError
	if errors.As(err, &roeMissingDocs) {
		return http.StatusBadRequest, gin.H{
			"success":          false,
			"message":          "Missing required documents after merge",
			"missingDocuments": roeMissingDocs.Documents,
		}
	}

	var invalidDocType *orgdomain.InvalidDocumentTypeError
	if errors.As(err, &invalidDocType) {
		return http.StatusBadRequest, envelope(invalidDocType.Error())
	}

	var invalidStatus *orgdomain.InvalidStatusError
	if errors.As(err, &invalidStatus) {
		return http.StatusBadRequest, envelope(invalidStatus.Error())
	}

	var roeInvalidStatus *roedomain.InvalidStatusError
	if errors.As(err, &roeInvalidStatus) {
		return http.StatusBadRequest, envelope(roeInvalidStatus.Error())
	}

	switch {
	case errors.Is(err, errUnauthorized),
		errors.Is(err, identitydomain.ErrInvalidCredentials):
		return http.StatusUnauthorized, envelope("Invalid username or password")

	case errors.Is(err, errForbidden),
		errors.Is(err, identitydomain.ErrAdminInactive):
		return http.StatusForbidden, envelope("Access denied")

	case errors.Is(err, errInvalidRequest),
		errors.Is(err, errNoFile),
		errors.Is(err, errFileTooLarge),
		errors.Is(err, errInvalidFileType),
		errors.Is(err, identitydomain.ErrInvalidIDNumber),
		errors.Is(err, orgdomain.ErrTypeRequired),
		errors.Is(err, orgdomain.ErrInvalidType),
		errors.Is(err, orgdomain.ErrRegistrationNumberRequired),
		errors.Is(err, orgdomain.ErrIdentityNumberRequired),
		errors.Is(err, orgdomain.ErrTaxNumberRequired),
		errors.Is(err, orgdomain.ErrAlreadyApproved),
		errors.Is(err, orgdomain.ErrNotRejected),
		errors.Is(err, orgdomain.ErrInvalidCFNumber),
		errors.Is(err, orgdomain.ErrLinkLimitReached),
		errors.Is(err, orgdomain.ErrRejectionReasonRequired),
		errors.Is(err, identitydomain.ErrUserExists),
		errors.Is(err, roedomain.ErrFieldsRequired),
		errors.Is(err, roedomain.ErrAlreadySubmitted):
		return http.StatusBadRequest, envelopeFromErr(err)

	// Malformed verification identifiers report not-found, matching
	// the portal's published behaviour.
	case errors.Is(err, orgdomain.ErrInvalidRegistrationNumber),
		errors.Is(err, orgdomain.ErrInvalidIdentityNumber),
		errors.Is(err, orgdomain.ErrInvalidTaxNumber),
		errors.Is(err, orgdomain.ErrNoRegisteredOrganisation),
		errors.Is(err, orgdomain.ErrIdentityNumberMismatch),
		errors.Is(err, orgdomain.ErrTaxNumberMismatch),
		errors.Is(err, orgdomain.ErrIdentityDataMissing),
		errors.Is(err, orgdomain.ErrTaxDataMissing),
		errors.Is(err, orgdomain.ErrOrganisationNotFound),
		errors.Is(err, orgdomain.ErrAccessDenied),
		errors.Is(err, orgdomain.ErrDocumentNotFound),
		errors.Is(err, orgdomain.ErrNoDraftToSubmit),
		errors.Is(err, orgdomain.ErrLinkNotFound),
		errors.Is(err, identitydomain.ErrUserNotFound),
		errors.Is(err, roedomain.ErrROENotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, envelopeFromErr(err)

	case errors.Is(err, orgdomain.ErrDocumentExists),
		errors.Is(err, orgdomain.ErrAlreadyLinked),
		errors.Is(err, roedomain.ErrDocumentExists):
		return http.StatusConflict, envelopeFromErr(err)

	default:
		return http.StatusInternalServerError, envelope("Internal server error")
	}
}

func envelope(message string) gin.H {
	return gin.H{"success": false, "message": message}
}

func envelopeFromErr(err error) gin.H {
	return envelope(err.Error())
}
