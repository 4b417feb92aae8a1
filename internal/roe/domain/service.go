package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	// Create records a declaration or merges into the existing one
	// for the same organisation and year. Returns true when a new
	// record was created.
	Create(ctx context.Context, userID snowflake.ID, req CreateRequest) (*ROE, bool, error)
	ListByOrganisation(ctx context.Context, cfNumber string) ([]ROE, error)
	Get(ctx context.Context, id snowflake.ID) (*ROE, error)
	Update(ctx context.Context, id snowflake.ID, req UpdateRequest) (*ROE, error)
	// Submit finalises the declaration for assessment. Returns the
	// payment amount due and whether a new record was created.
	Submit(ctx context.Context, userID snowflake.ID, req SubmitRequest) (*ROE, float64, bool, error)
	FlagForAudit(ctx context.Context, id snowflake.ID, flaggedBy string) (*ROE, error)
	AcceptSubmission(ctx context.Context, id snowflake.ID, acceptedBy string) (*ROE, error)
}

// CreateRequest uses pointers for optional numerics so absent fields
// leave existing values untouched during a merge.
type CreateRequest struct {
	CFRegistrationNumber string
	AssessmentYear       int
	EmployeesEarnings    *float64
	DirectorsEarnings    *float64
	AccommodationMeals   *float64
	NumberOfEmployees    *int
	NumberOfDirectors    *int
	Comments             *string
	Document             *DocumentMeta
}

type UpdateRequest struct {
	EmployeesEarnings  *float64
	DirectorsEarnings  *float64
	AccommodationMeals *float64
	NumberOfEmployees  *int
	NumberOfDirectors  *int
	Status             *string
	Comments           *string
	AssessmentYear     *int
	Document           *DocumentMeta
}

type SubmitRequest struct {
	CFRegistrationNumber  string
	AssessmentYear        int
	Documents             []DocumentMeta
	FinalAssessment       *Assessment
	ProvisionalAssessment *Assessment
	Comment               string
	EmployeesEarnings     *float64
	DirectorsEarnings     *float64
	AccommodationMeals    *float64
	// TotalEarnings is accepted on the wire but never stored; the
	// total is always recomputed from the component fields.
	TotalEarnings     *float64
	NumberOfEmployees *int
	NumberOfDirectors *int
}

// SubmissionRequiredDocuments must all be present, counting both
// stored and newly supplied documents, before a submission succeeds.
var SubmissionRequiredDocuments = []string{
	"Affidavit",
	"DetailPayrollReport",
	"NatureOfBusiness",
	"SARSEMP501",
	"SignedAnnualFinancialStatements",
}
