package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	orgdomain "github.com/compfund/cfportal/internal/organisation/domain"
	orgrepo "github.com/compfund/cfportal/internal/organisation/repository"
	"github.com/compfund/cfportal/internal/roe/domain"
	"github.com/compfund/cfportal/internal/roe/repository"
)

const testCFNumber = "991234567890"

type testEnv struct {
	svc    domain.Service
	db     *gorm.DB
	node   *snowflake.Node
	userID snowflake.ID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&orgdomain.Organisation{},
		&orgdomain.Document{},
		&orgdomain.LinkedUser{},
		&domain.ROE{},
		&domain.Document{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(repository.New(db), orgrepo.New(db), node, zap.NewNop())
	env := &testEnv{svc: svc, db: db, node: node, userID: node.Generate()}

	cf := testCFNumber
	bp := "2000123456"
	require.NoError(t, db.Create(&orgdomain.Organisation{
		ID:                   node.Generate(),
		OrganisationType:     orgdomain.TypeCompanyRegistration,
		RegistrationNumber:   "2013 / 058921 / 07",
		Status:               orgdomain.StatusApproved,
		CFRegistrationNumber: &cf,
		BPNumber:             &bp,
		Details:              datatypes.JSONMap{"tradingName": "Atisa Software Solutions"},
		BusinessInfo:         datatypes.JSONMap{"industries": []string{"Construction"}},
	}).Error)

	return env
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func allRequiredDocuments() []domain.DocumentMeta {
	docs := make([]domain.DocumentMeta, 0, len(domain.SubmissionRequiredDocuments))
	for _, docType := range domain.SubmissionRequiredDocuments {
		docs = append(docs, domain.DocumentMeta{
			DocumentType: docType,
			Filename:     docType + ".pdf",
		})
	}
	return docs
}

func TestCreateRequiresIdentifyingFields(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.svc.Create(context.Background(), env.userID, domain.CreateRequest{})
	assert.ErrorIs(t, err, domain.ErrFieldsRequired)

	_, _, err = env.svc.Create(context.Background(), env.userID, domain.CreateRequest{
		CFRegistrationNumber: testCFNumber,
	})
	assert.ErrorIs(t, err, domain.ErrFieldsRequired)
}

func TestCreateNewDraft(t *testing.T) {
	env := newTestEnv(t)

	roe, created, err := env.svc.Create(context.Background(), env.userID, domain.CreateRequest{
		CFRegistrationNumber: testCFNumber,
		AssessmentYear:       2025,
		EmployeesEarnings:    floatPtr(100000),
		DirectorsEarnings:    floatPtr(20000),
		NumberOfEmployees:    intPtr(10),
	})
	require.NoError(t, err)

	assert.True(t, created)
	assert.Equal(t, domain.StatusDraft, roe.Status)
	assert.Equal(t, 120000.0, roe.TotalEarnings)
	assert.Equal(t, env.userID, roe.ProcessedBy)
}

func TestCreateMergesIntoExistingYear(t *testing.T) {
	env := newTestEnv(t)

	first, created, err := env.svc.Create(context.Background(), env.userID, domain.CreateRequest{
		CFRegistrationNumber: testCFNumber,
		AssessmentYear:       2025,
		EmployeesEarnings:    floatPtr(100000),
	})
	require.NoError(t, err)
	require.True(t, created)

	merged, created, err := env.svc.Create(context.Background(), env.userID, domain.CreateRequest{
		CFRegistrationNumber: testCFNumber,
		AssessmentYear:       2025,
		DirectorsEarnings:    floatPtr(50000),
	})
	require.NoError(t, err)

	assert.False(t, created)
	assert.Equal(t, first.ID, merged.ID)
	assert.Equal(t, 100000.0, merged.EmployeesEarnings)
	assert.Equal(t, 150000.0, merged.TotalEarnings)
}

func TestCreateRejectsDuplicateDocumentType(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.svc.Create(context.Background(), env.userID, domain.CreateRequest{
		CFRegistrationNumber: testCFNumber,
		AssessmentYear:       2025,
		Document:             &domain.DocumentMeta{DocumentType: "Affidavit", Filename: "a.pdf"},
	})
	require.NoError(t, err)

	_, _, err = env.svc.Create(context.Background(), env.userID, domain.CreateRequest{
		CFRegistrationNumber: testCFNumber,
		AssessmentYear:       2025,
		Document:             &domain.DocumentMeta{DocumentType: "Affidavit", Filename: "b.pdf"},
	})
	assert.ErrorIs(t, err, domain.ErrDocumentExists)
}

func TestSubmitRequiresAllDocuments(t *testing.T) {
	env := newTestEnv(t)

	// With no existing record the incoming payload alone must carry
	// every required document type.
	_, _, _, err := env.svc.Submit(context.Background(), env.userID, domain.SubmitRequest{
		CFRegistrationNumber: testCFNumber,
		AssessmentYear:       2025,
		Documents: []domain.DocumentMeta{
			{DocumentType: "Affidavit", Filename: "a.pdf"},
		},
		EmployeesEarnings: floatPtr(100000),
	})

	var missing *domain.MissingDocumentsError
	require.ErrorAs(t, err, &missing)
	assert.ElementsMatch(t, []string{
		"DetailPayrollReport",
		"NatureOfBusiness",
		"SARSEMP501",
		"SignedAnnualFinancialStatements",
	}, missing.Documents)

	_, _, created, err := env.svc.Submit(context.Background(), env.userID, domain.SubmitRequest{
		CFRegistrationNumber: testCFNumber,
		AssessmentYear:       2025,
		Documents:            allRequiredDocuments(),
		EmployeesEarnings:    floatPtr(100000),
	})
	require.NoError(t, err)
	assert.True(t, created)

	_, _, _, err = env.svc.Submit(context.Background(), env.userID, domain.SubmitRequest{
		CFRegistrationNumber: testCFNumber,
		AssessmentYear:       2025,
		Documents:            allRequiredDocuments(),
	})
	assert.ErrorIs(t, err, domain.ErrAlreadySubmitted)
}

func TestSubmitMergeChecksDocumentUnion(t *testing.T) {
	env := newTestEnv(t)

	_, created, err := env.svc.Create(context.Background(), env.userID, domain.CreateRequest{
		CFRegistrationNumber: testCFNumber,
		AssessmentYear:       2025,
		Document:             &domain.DocumentMeta{DocumentType: "affidavit", Filename: "a.pdf"},
	})
	require.NoError(t, err)
	require.True(t, created)

	_, _, _, err = env.svc.Submit(context.Background(), env.userID, domain.SubmitRequest{
		CFRegistrationNumber: testCFNumber,
		AssessmentYear:       2025,
		Documents: []domain.DocumentMeta{
			{DocumentType: "DetailPayrollReport", Filename: "d.pdf"},
		},
	})

	var missing *domain.MissingDocumentsError
	require.ErrorAs(t, err, &missing)
	// Stored document types count case-insensitively toward the union.
	assert.NotContains(t, missing.Documents, "Affidavit")
	assert.ElementsMatch(t, []string{
		"NatureOfBusiness",
		"SARSEMP501",
		"SignedAnnualFinancialStatements",
	}, missing.Documents)
}

func TestSubmitMergeRecalculatesTotalAndPayment(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.svc.Create(context.Background(), env.userID, domain.CreateRequest{
		CFRegistrationNumber: testCFNumber,
		AssessmentYear:       2025,
		EmployeesEarnings:    floatPtr(80000),
	})
	require.NoError(t, err)

	roe, payment, created, err := env.svc.Submit(context.Background(), env.userID, domain.SubmitRequest{
		CFRegistrationNumber: testCFNumber,
		AssessmentYear:       2025,
		Documents:            allRequiredDocuments(),
		DirectorsEarnings:    floatPtr(20000),
		TotalEarnings:        floatPtr(999999),
	})
	require.NoError(t, err)

	assert.False(t, created)
	assert.Equal(t, domain.StatusSubmitted, roe.Status)
	// The merge derives the total from its parts, ignoring the
	// caller-supplied figure.
	assert.Equal(t, 100000.0, roe.TotalEarnings)
	assert.Equal(t, 2000.0, payment)
	assert.Equal(t, payment, roe.PaymentAmount)
}

func TestSubmitRecomputesTotalOnFreshSubmission(t *testing.T) {
	env := newTestEnv(t)

	roe, payment, created, err := env.svc.Submit(context.Background(), env.userID, domain.SubmitRequest{
		CFRegistrationNumber: testCFNumber,
		AssessmentYear:       2025,
		Documents:            allRequiredDocuments(),
		EmployeesEarnings:    floatPtr(100000),
		TotalEarnings:        floatPtr(500000),
	})
	require.NoError(t, err)

	assert.True(t, created)
	// The caller-supplied total is ignored on a fresh submission too.
	assert.Equal(t, 100000.0, roe.TotalEarnings)
	assert.Equal(t, 2000.0, payment)
}

func TestSubmitSkipsDuplicateIncomingDocuments(t *testing.T) {
	env := newTestEnv(t)

	docs := allRequiredDocuments()
	docs = append(docs, domain.DocumentMeta{DocumentType: "affidavit", Filename: "dup.pdf"})

	roe, _, _, err := env.svc.Submit(context.Background(), env.userID, domain.SubmitRequest{
		CFRegistrationNumber: testCFNumber,
		AssessmentYear:       2025,
		Documents:            docs,
		EmployeesEarnings:    floatPtr(100000),
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, env.db.Model(&domain.Document{}).Where("roe_id = ?", roe.ID).Count(&count).Error)
	assert.Equal(t, int64(len(domain.SubmissionRequiredDocuments)), count)
}

func TestSubmitUsesFinalAssessmentForPayment(t *testing.T) {
	env := newTestEnv(t)

	_, payment, _, err := env.svc.Submit(context.Background(), env.userID, domain.SubmitRequest{
		CFRegistrationNumber: testCFNumber,
		AssessmentYear:       2025,
		Documents:            allRequiredDocuments(),
		EmployeesEarnings:    floatPtr(999999),
		FinalAssessment: &domain.Assessment{
			EmployeesEarnings: 50000,
			TotalEarnings:     50000,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1000.0, payment)
}

func TestFlagForAuditRequiresSubmitted(t *testing.T) {
	env := newTestEnv(t)

	roe, _, err := env.svc.Create(context.Background(), env.userID, domain.CreateRequest{
		CFRegistrationNumber: testCFNumber,
		AssessmentYear:       2025,
	})
	require.NoError(t, err)

	_, err = env.svc.FlagForAudit(context.Background(), roe.ID, "auditor")

	var status *domain.InvalidStatusError
	require.ErrorAs(t, err, &status)
	assert.Equal(t, domain.StatusDraft, status.Current)
}

func TestFlagForAuditRecordsActor(t *testing.T) {
	env := newTestEnv(t)

	submitted, _, _, err := env.svc.Submit(context.Background(), env.userID, domain.SubmitRequest{
		CFRegistrationNumber: testCFNumber,
		AssessmentYear:       2025,
		Documents:            allRequiredDocuments(),
		EmployeesEarnings:    floatPtr(100000),
	})
	require.NoError(t, err)

	flagged, err := env.svc.FlagForAudit(context.Background(), submitted.ID, "auditor")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusFlagged, flagged.Status)
	assert.Equal(t, "auditor", flagged.FlaggedBy)
	assert.NotNil(t, flagged.FlaggedAt)

	// A flagged declaration cannot also be accepted.
	_, err = env.svc.AcceptSubmission(context.Background(), submitted.ID, "reviewer")
	var status *domain.InvalidStatusError
	require.ErrorAs(t, err, &status)
	assert.Equal(t, domain.StatusFlagged, status.Current)
}

func TestAcceptSubmissionRecordsActor(t *testing.T) {
	env := newTestEnv(t)

	submitted, _, _, err := env.svc.Submit(context.Background(), env.userID, domain.SubmitRequest{
		CFRegistrationNumber: testCFNumber,
		AssessmentYear:       2025,
		Documents:            allRequiredDocuments(),
		EmployeesEarnings:    floatPtr(100000),
	})
	require.NoError(t, err)

	accepted, err := env.svc.AcceptSubmission(context.Background(), submitted.ID, "reviewer")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusAccepted, accepted.Status)
	assert.Equal(t, "reviewer", accepted.AcceptedBy)
	assert.NotNil(t, accepted.AcceptedAt)
}
