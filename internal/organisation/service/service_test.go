package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/compfund/cfportal/internal/docgen"
	identitydomain "github.com/compfund/cfportal/internal/identity/domain"
	identityrepo "github.com/compfund/cfportal/internal/identity/repository"
	"github.com/compfund/cfportal/internal/notify"
	"github.com/compfund/cfportal/internal/organisation/domain"
	"github.com/compfund/cfportal/internal/organisation/repository"
)

type capturingProvider struct {
	mu       sync.Mutex
	messages []notify.Message
}

func (p *capturingProvider) Send(_ context.Context, msg notify.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
	return nil
}

func (p *capturingProvider) sent() []notify.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]notify.Message(nil), p.messages...)
}

type testEnv struct {
	svc  domain.Service
	db   *gorm.DB
	node *snowflake.Node
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithProvider(t, &notify.NoOpProvider{})
}

func newTestEnvWithProvider(t *testing.T, provider notify.Provider) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&identitydomain.User{},
		&domain.Organisation{},
		&domain.Document{},
		&domain.LinkedUser{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	logger := zap.NewNop()
	notifier := notify.NewNotifier(provider, logger)

	svc := New(repository.New(db), identityrepo.New(db), notifier, docgen.New(), node, logger)
	return &testEnv{svc: svc, db: db, node: node}
}

func (e *testEnv) seedDraft(t *testing.T) *domain.Organisation {
	t.Helper()
	org := &domain.Organisation{
		ID:                 e.node.Generate(),
		OrganisationType:   domain.TypeCompanyRegistration,
		RegistrationNumber: "2013 / 058921 / 07",
		IdentityNumbers:    datatypes.NewJSONSlice([]string{"9607055592088"}),
		TaxNumber:          "1234567801",
		Status:             domain.StatusDraft,
		VerificationStatus: domain.VerificationPending,
		Details:            datatypes.JSONMap{"tradingName": "Atisa Software Solutions"},
		Contact:            datatypes.JSONMap{"email": "owner@atisa.example"},
		MaxLinkedUsers:     domain.DefaultMaxLinkedUsers,
	}
	require.NoError(t, e.db.Create(org).Error)
	return org
}

func (e *testEnv) seedUser(t *testing.T) *identitydomain.User {
	t.Helper()
	user := &identitydomain.User{
		ID:           e.node.Generate(),
		IDNumber:     "9001015009087",
		Name:         "Thabo",
		Surname:      "Nkosi",
		Email:        "thabo@example.com",
		PasswordHash: "x",
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *testEnv) addDocument(t *testing.T, orgID snowflake.ID, docType string) {
	t.Helper()
	require.NoError(t, e.db.Create(&domain.Document{
		ID:             e.node.Generate(),
		OrganisationID: orgID,
		DocumentType:   docType,
		Filename:       "f.pdf",
	}).Error)
}

func TestVerifyDetailsMissingFields(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.VerifyDetails(context.Background(), domain.VerifyDetailsRequest{
		OrganisationType:   domain.TypeCompanyRegistration,
		RegistrationNumber: "2013 / 058921 / 07",
	})

	var missing *domain.MissingFieldsError
	require.ErrorAs(t, err, &missing)
	assert.ElementsMatch(t, []string{"identityNumber", "taxNumber"}, missing.Fields)
}

func TestVerifyDetailsUnknownType(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.VerifyDetails(context.Background(), domain.VerifyDetailsRequest{
		OrganisationType: "Partnership",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidType)
}

func TestVerifyDetailsMalformedRegistrationNumber(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.VerifyDetails(context.Background(), domain.VerifyDetailsRequest{
		OrganisationType:   domain.TypeCompanyRegistration,
		RegistrationNumber: "2013/058921/07",
		IdentityNumber:     "9607055592088",
		TaxNumber:          "1234567801",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidRegistrationNumber)
}

func TestVerifyDetailsSuccess(t *testing.T) {
	env := newTestEnv(t)
	org := env.seedDraft(t)

	result, err := env.svc.VerifyDetails(context.Background(), domain.VerifyDetailsRequest{
		OrganisationType:   domain.TypeCompanyRegistration,
		RegistrationNumber: org.RegistrationNumber,
		IdentityNumber:     "9607055592088",
		TaxNumber:          "1234567801",
	})
	require.NoError(t, err)
	assert.Equal(t, org.ID, result.Organisation.ID)
}

func TestVerifyDetailsIdentityMismatch(t *testing.T) {
	env := newTestEnv(t)
	org := env.seedDraft(t)

	_, err := env.svc.VerifyDetails(context.Background(), domain.VerifyDetailsRequest{
		OrganisationType:   domain.TypeCompanyRegistration,
		RegistrationNumber: org.RegistrationNumber,
		IdentityNumber:     "9999999999999",
		TaxNumber:          "1234567801",
	})
	assert.ErrorIs(t, err, domain.ErrIdentityNumberMismatch)
}

func TestVerifyDetailsAlreadyApproved(t *testing.T) {
	env := newTestEnv(t)
	org := env.seedDraft(t)
	cf, bp := "991234567890", "2000123456"
	require.NoError(t, env.db.Model(org).Updates(map[string]any{
		"status":                 domain.StatusApproved,
		"cf_registration_number": cf,
		"bp_number":              bp,
	}).Error)

	_, err := env.svc.VerifyDetails(context.Background(), domain.VerifyDetailsRequest{
		OrganisationType:   domain.TypeCompanyRegistration,
		RegistrationNumber: org.RegistrationNumber,
		IdentityNumber:     "9607055592088",
		TaxNumber:          "1234567801",
	})
	assert.ErrorIs(t, err, domain.ErrAlreadyApproved)
}

func TestUploadDocumentRejectsInvalidType(t *testing.T) {
	env := newTestEnv(t)
	org := env.seedDraft(t)

	_, err := env.svc.UploadDocument(context.Background(), domain.UploadDocumentRequest{
		RegistrationNumber: org.RegistrationNumber,
		DocumentType:       "Letter_of_Authority",
		File:               domain.StoredFile{Filename: "f.pdf"},
	})

	var invalid *domain.InvalidDocumentTypeError
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Allowed, domain.DocCIPCCertificate)
}

func TestUploadDocumentRejectsDuplicateType(t *testing.T) {
	env := newTestEnv(t)
	org := env.seedDraft(t)

	req := domain.UploadDocumentRequest{
		RegistrationNumber: org.RegistrationNumber,
		DocumentType:       domain.DocIDCopy,
		File:               domain.StoredFile{Filename: "f.pdf"},
	}
	_, err := env.svc.UploadDocument(context.Background(), req)
	require.NoError(t, err)

	_, err = env.svc.UploadDocument(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrDocumentExists)
}

func TestSubmitForApprovalRequiresDocuments(t *testing.T) {
	env := newTestEnv(t)
	org := env.seedDraft(t)
	user := env.seedUser(t)
	env.addDocument(t, org.ID, domain.DocIDCopy)

	_, err := env.svc.SubmitForApproval(context.Background(), user.ID, domain.SubmissionKey{
		OrganisationType:   org.OrganisationType,
		RegistrationNumber: org.RegistrationNumber,
		IdentityNumber:     "9607055592088",
		TaxNumber:          org.TaxNumber,
	})

	var missing *domain.MissingDocumentsError
	require.ErrorAs(t, err, &missing)
	assert.ElementsMatch(t, []string{domain.DocCIPCCertificate, domain.DocBusinessAddress}, missing.Documents)
}

func (e *testEnv) seedSoleProprietorDraft(t *testing.T) *domain.Organisation {
	t.Helper()
	org := &domain.Organisation{
		ID:                 e.node.Generate(),
		OrganisationType:   domain.TypeSoleProprietor,
		IdentityNumbers:    datatypes.NewJSONSlice([]string{"8203155014085"}),
		Status:             domain.StatusDraft,
		VerificationStatus: domain.VerificationPending,
		Details:            datatypes.JSONMap{"tradingName": "Nkosi Plumbing"},
		MaxLinkedUsers:     domain.DefaultMaxLinkedUsers,
	}
	require.NoError(t, e.db.Create(org).Error)
	return org
}

func TestSubmitForApprovalUsesPerTypeDocumentSet(t *testing.T) {
	env := newTestEnv(t)
	org := env.seedSoleProprietorDraft(t)
	user := env.seedUser(t)
	env.addDocument(t, org.ID, domain.DocIDCopy)
	env.addDocument(t, org.ID, domain.DocBusinessAddress)

	// A sole proprietor never uploads a CIPC certificate; its own
	// document set is what the gate checks.
	submitted, err := env.svc.SubmitForApproval(context.Background(), user.ID, domain.SubmissionKey{
		OrganisationType: org.OrganisationType,
		IdentityNumber:   "8203155014085",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSubmitted, submitted.Status)
}

func TestSubmitForApprovalMissingDocumentsMatchType(t *testing.T) {
	env := newTestEnv(t)
	org := env.seedSoleProprietorDraft(t)
	user := env.seedUser(t)
	env.addDocument(t, org.ID, domain.DocBusinessAddress)

	_, err := env.svc.SubmitForApproval(context.Background(), user.ID, domain.SubmissionKey{
		OrganisationType: org.OrganisationType,
		IdentityNumber:   "8203155014085",
	})

	var missing *domain.MissingDocumentsError
	require.ErrorAs(t, err, &missing)
	assert.ElementsMatch(t, []string{domain.DocIDCopy}, missing.Documents)
}

func TestSubmitForApprovalAddsOwnerLink(t *testing.T) {
	env := newTestEnv(t)
	org := env.seedDraft(t)
	user := env.seedUser(t)
	for _, docType := range domain.ValidDocumentTypes(org.OrganisationType) {
		env.addDocument(t, org.ID, docType)
	}

	submitted, err := env.svc.SubmitForApproval(context.Background(), user.ID, domain.SubmissionKey{
		OrganisationType:   org.OrganisationType,
		RegistrationNumber: org.RegistrationNumber,
		IdentityNumber:     "9607055592088",
		TaxNumber:          org.TaxNumber,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSubmitted, submitted.Status)
	assert.NotNil(t, submitted.SubmittedAt)

	var link domain.LinkedUser
	require.NoError(t, env.db.Where("organisation_id = ? AND user_id = ?", org.ID, user.ID).First(&link).Error)
	assert.Equal(t, domain.LinkStatusApproved, link.Status)
}

func TestApproveIssuesIdentifiers(t *testing.T) {
	env := newTestEnv(t)
	org := env.seedDraft(t)
	require.NoError(t, env.db.Model(org).Update("status", domain.StatusSubmitted).Error)

	approved, err := env.svc.Approve(context.Background(), domain.ApproveRequest{
		OrganisationID: org.ID,
		ApprovedBy:     "admin",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusApproved, approved.Status)
	assert.Equal(t, domain.VerificationVerified, approved.VerificationStatus)
	assert.Equal(t, "Approved", approved.ApprovalNotes)

	require.NotNil(t, approved.CFRegistrationNumber)
	assert.Len(t, *approved.CFRegistrationNumber, 12)
	assert.True(t, strings.HasPrefix(*approved.CFRegistrationNumber, "99"))

	require.NotNil(t, approved.BPNumber)
	assert.Len(t, *approved.BPNumber, 10)
	assert.True(t, strings.HasPrefix(*approved.BPNumber, "2000"))
}

func TestApproveStoresSuppliedCFNumberVerbatim(t *testing.T) {
	env := newTestEnv(t)
	org := env.seedDraft(t)
	require.NoError(t, env.db.Model(org).Update("status", domain.StatusSubmitted).Error)

	approved, err := env.svc.Approve(context.Background(), domain.ApproveRequest{
		OrganisationID: org.ID,
		ApprovedBy:     "admin",
		CFOverride:     "CF-CUSTOM-01",
	})
	require.NoError(t, err)
	require.NotNil(t, approved.CFRegistrationNumber)
	assert.Equal(t, "CF-CUSTOM-01", *approved.CFRegistrationNumber)
}

func TestApproveRequiresSubmittedStatus(t *testing.T) {
	env := newTestEnv(t)
	org := env.seedDraft(t)

	_, err := env.svc.Approve(context.Background(), domain.ApproveRequest{
		OrganisationID: org.ID,
		ApprovedBy:     "admin",
	})

	var status *domain.InvalidStatusError
	require.ErrorAs(t, err, &status)
	assert.Equal(t, domain.StatusDraft, status.Current)
}

func TestRejectRequiresReason(t *testing.T) {
	env := newTestEnv(t)
	org := env.seedDraft(t)

	_, err := env.svc.Reject(context.Background(), domain.RejectRequest{
		OrganisationID: org.ID,
		RejectedBy:     "admin",
	})
	assert.ErrorIs(t, err, domain.ErrRejectionReasonRequired)
}

func TestRejectThenResubmit(t *testing.T) {
	env := newTestEnv(t)
	org := env.seedDraft(t)
	user := env.seedUser(t)
	require.NoError(t, env.db.Model(org).Updates(map[string]any{
		"status":   domain.StatusSubmitted,
		"owner_id": user.ID,
	}).Error)

	rejected, err := env.svc.Reject(context.Background(), domain.RejectRequest{
		OrganisationID: org.ID,
		RejectedBy:     "admin",
		Reason:         "Missing banking details",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, rejected.Status)
	assert.Equal(t, domain.VerificationFailed, rejected.VerificationStatus)
	assert.Equal(t, "Rejected", rejected.RejectionNotes)

	resubmitted, err := env.svc.Resubmit(context.Background(), user.ID, org.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSubmitted, resubmitted.Status)
	assert.Nil(t, resubmitted.RejectedAt)
}

func TestLinkByCFRejectsMalformedNumber(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t)

	_, err := env.svc.LinkByCF(context.Background(), user.ID, "123456789012")
	assert.ErrorIs(t, err, domain.ErrInvalidCFNumber)

	_, err = env.svc.LinkByCF(context.Background(), user.ID, "9912345")
	assert.ErrorIs(t, err, domain.ErrInvalidCFNumber)
}

func (e *testEnv) seedApproved(t *testing.T, cf string) *domain.Organisation {
	t.Helper()
	org := e.seedDraft(t)
	require.NoError(t, e.db.Model(org).Updates(map[string]any{
		"status":                 domain.StatusApproved,
		"cf_registration_number": cf,
		"bp_number":              "2000123456",
	}).Error)
	org.Status = domain.StatusApproved
	org.CFRegistrationNumber = &cf
	return org
}

func TestLinkByCFCreatesPendingLink(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t)
	org := env.seedApproved(t, "991234567890")

	linked, err := env.svc.LinkByCF(context.Background(), user.ID, "991234567890")
	require.NoError(t, err)
	assert.Equal(t, org.ID, linked.ID)

	var link domain.LinkedUser
	require.NoError(t, env.db.Where("organisation_id = ? AND user_id = ?", org.ID, user.ID).First(&link).Error)
	assert.Equal(t, domain.LinkStatusPending, link.Status)
}

func TestLinkByCFRejectsDuplicateLink(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t)
	env.seedApproved(t, "991234567890")

	_, err := env.svc.LinkByCF(context.Background(), user.ID, "991234567890")
	require.NoError(t, err)

	_, err = env.svc.LinkByCF(context.Background(), user.ID, "991234567890")
	assert.ErrorIs(t, err, domain.ErrAlreadyLinked)
}

func TestLinkByCFEnforcesCap(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t)
	org := env.seedApproved(t, "991234567890")
	require.NoError(t, env.db.Model(org).Update("max_linked_users", 1).Error)
	require.NoError(t, env.db.Create(&domain.LinkedUser{
		ID:             env.node.Generate(),
		OrganisationID: org.ID,
		UserID:         env.node.Generate(),
		Status:         domain.LinkStatusApproved,
	}).Error)

	_, err := env.svc.LinkByCF(context.Background(), user.ID, "991234567890")
	assert.ErrorIs(t, err, domain.ErrLinkLimitReached)
}

func TestUploadSignedFormApprovesLink(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t)
	org := env.seedApproved(t, "991234567890")

	_, err := env.svc.LinkByCF(context.Background(), user.ID, "991234567890")
	require.NoError(t, err)

	_, err = env.svc.UploadSignedForm(context.Background(), user.ID, org.ID, "uploads/documents/signed.pdf")
	require.NoError(t, err)

	var link domain.LinkedUser
	require.NoError(t, env.db.Where("organisation_id = ? AND user_id = ?", org.ID, user.ID).First(&link).Error)
	assert.Equal(t, domain.LinkStatusApproved, link.Status)
	assert.Equal(t, "uploads/documents/signed.pdf", link.SignedFormPath)
}

func TestUploadSignedFormNotifiesUserAndContact(t *testing.T) {
	provider := &capturingProvider{}
	env := newTestEnvWithProvider(t, provider)
	user := env.seedUser(t)
	org := env.seedApproved(t, "991234567890")

	_, err := env.svc.LinkByCF(context.Background(), user.ID, "991234567890")
	require.NoError(t, err)

	_, err = env.svc.UploadSignedForm(context.Background(), user.ID, org.ID, "uploads/documents/signed.pdf")
	require.NoError(t, err)

	confirmation := func() *notify.Message {
		for _, msg := range provider.sent() {
			if strings.HasPrefix(msg.Subject, "Linked to") {
				return &msg
			}
		}
		return nil
	}
	require.Eventually(t, func() bool { return confirmation() != nil }, time.Second, 10*time.Millisecond)
	assert.ElementsMatch(t,
		[]string{"thabo@example.com", "owner@atisa.example"},
		confirmation().To,
	)
}

func TestUpdateDetailsAutoSubmitsCompleteProfile(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t)
	org := env.seedDraft(t)
	require.NoError(t, env.db.Model(org).Update("owner_id", user.ID).Error)

	update := domain.ProfileUpdate{
		Details: map[string]any{
			"ownershipType":     "PTY/LTD",
			"tradingName":       "Atisa Software Solutions",
			"firstEmployeeDate": "2025-11-18",
		},
		Address: map[string]any{
			"number": "1", "name": "Main Rd", "suburb": "CBD",
			"city": "Pretoria", "province": "Gauteng", "postalCode": "0181",
		},
		Contact: map[string]any{
			"person": "Kenny", "telephone": "0719080400",
			"cellphone": "0719080400", "email": "kenny@example.com",
		},
		Banking: map[string]any{
			"bankName": "FNB", "accountHolder": "Kenny",
			"accountNumber": "123", "branchCode": "00101",
		},
		BusinessInfo: map[string]any{
			"numberOfEmployees": 10,
			"industries":        []any{"Construction"},
		},
	}

	updated, submitted, err := env.svc.UpdateDetails(context.Background(), user.ID, org.ID, update)
	require.NoError(t, err)
	assert.True(t, submitted)
	assert.Equal(t, domain.StatusSubmitted, updated.Status)
}

func TestUpdateDetailsPartialStaysDraft(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t)
	org := env.seedDraft(t)
	require.NoError(t, env.db.Model(org).Update("owner_id", user.ID).Error)

	updated, submitted, err := env.svc.UpdateDetails(context.Background(), user.ID, org.ID, domain.ProfileUpdate{
		Contact: map[string]any{"person": "Kenny"},
	})
	require.NoError(t, err)
	assert.False(t, submitted)
	assert.Equal(t, domain.StatusDraft, updated.Status)
	assert.Equal(t, "Kenny", updated.Contact["person"])
	// Existing keys survive the merge.
	assert.Equal(t, "owner@atisa.example", updated.Contact["email"])
}

func TestUpdateDetailsRejectsNonOwner(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t)
	org := env.seedDraft(t)

	_, _, err := env.svc.UpdateDetails(context.Background(), user.ID, org.ID, domain.ProfileUpdate{
		Contact: map[string]any{"person": "Kenny"},
	})
	assert.ErrorIs(t, err, domain.ErrOrganisationNotFound)
}
