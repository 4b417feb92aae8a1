package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	orgdomain "github.com/compfund/cfportal/internal/organisation/domain"
	"github.com/compfund/cfportal/internal/roe/domain"
)

type service struct {
	repo   domain.Repository
	orgs   orgdomain.Repository
	node   *snowflake.Node
	logger *zap.Logger
}

func New(repo domain.Repository, orgs orgdomain.Repository, node *snowflake.Node, logger *zap.Logger) domain.Service {
	return &service{repo: repo, orgs: orgs, node: node, logger: logger}
}

// Create records a new declaration, or merges fields and an optional
// document into the existing one for the same organisation and year.
func (s *service) Create(ctx context.Context, userID snowflake.ID, req domain.CreateRequest) (*domain.ROE, bool, error) {
	if req.CFRegistrationNumber == "" || req.AssessmentYear == 0 {
		return nil, false, domain.ErrFieldsRequired
	}

	org, err := s.orgs.FindByCFNumber(ctx, req.CFRegistrationNumber)
	if err != nil {
		return nil, false, err
	}
	cfNumber := *org.CFRegistrationNumber

	existing, err := s.repo.FindByCFAndYear(ctx, cfNumber, req.AssessmentYear)
	if err != nil && err != domain.ErrROENotFound {
		return nil, false, err
	}

	if existing != nil {
		if req.Document != nil {
			docType := documentTypeOrDefault(req.Document.DocumentType)
			for _, d := range existing.Documents {
				if d.DocumentType == docType {
					return nil, false, domain.ErrDocumentExists
				}
			}
			if err := s.attachDocument(ctx, existing, *req.Document); err != nil {
				return nil, false, err
			}
		}

		applyFieldUpdates(existing, req.EmployeesEarnings, req.DirectorsEarnings, req.AccommodationMeals, req.NumberOfEmployees, req.NumberOfDirectors, req.Comments)
		existing.RecalculateTotal()

		if err := s.repo.UpdateFields(ctx, existing.ID, map[string]any{
			"employees_earnings":  existing.EmployeesEarnings,
			"directors_earnings":  existing.DirectorsEarnings,
			"accommodation_meals": existing.AccommodationMeals,
			"total_earnings":      existing.TotalEarnings,
			"number_of_employees": existing.NumberOfEmployees,
			"number_of_directors": existing.NumberOfDirectors,
			"comments":            existing.Comments,
		}); err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}

	roe := &domain.ROE{
		ID:                   s.node.Generate(),
		CFRegistrationNumber: cfNumber,
		AssessmentYear:       req.AssessmentYear,
		ProcessedBy:          userID,
		Status:               domain.StatusDraft,
	}
	applyFieldUpdates(roe, req.EmployeesEarnings, req.DirectorsEarnings, req.AccommodationMeals, req.NumberOfEmployees, req.NumberOfDirectors, req.Comments)
	roe.RecalculateTotal()

	if err := s.repo.Create(ctx, roe); err != nil {
		return nil, false, err
	}
	if req.Document != nil {
		if err := s.attachDocument(ctx, roe, *req.Document); err != nil {
			return nil, false, err
		}
	}

	s.logger.Info("roe created",
		zap.String("roe_id", roe.ID.String()),
		zap.String("cf_registration_number", cfNumber),
		zap.Int("assessment_year", req.AssessmentYear),
	)
	return roe, true, nil
}

func (s *service) ListByOrganisation(ctx context.Context, cfNumber string) ([]domain.ROE, error) {
	return s.repo.ListByCF(ctx, cfNumber)
}

func (s *service) Get(ctx context.Context, id snowflake.ID) (*domain.ROE, error) {
	return s.repo.FindByID(ctx, id)
}

// Update applies the allowed field updates, recalculates the total
// and attaches an optional document.
func (s *service) Update(ctx context.Context, id snowflake.ID, req domain.UpdateRequest) (*domain.ROE, error) {
	roe, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	applyFieldUpdates(roe, req.EmployeesEarnings, req.DirectorsEarnings, req.AccommodationMeals, req.NumberOfEmployees, req.NumberOfDirectors, req.Comments)
	if req.Status != nil {
		roe.Status = *req.Status
	}
	if req.AssessmentYear != nil {
		roe.AssessmentYear = *req.AssessmentYear
	}
	roe.RecalculateTotal()

	if err := s.repo.UpdateFields(ctx, roe.ID, map[string]any{
		"employees_earnings":  roe.EmployeesEarnings,
		"directors_earnings":  roe.DirectorsEarnings,
		"accommodation_meals": roe.AccommodationMeals,
		"total_earnings":      roe.TotalEarnings,
		"number_of_employees": roe.NumberOfEmployees,
		"number_of_directors": roe.NumberOfDirectors,
		"status":              roe.Status,
		"comments":            roe.Comments,
		"assessment_year":     roe.AssessmentYear,
	}); err != nil {
		return nil, err
	}

	if req.Document != nil {
		if err := s.attachDocument(ctx, roe, *req.Document); err != nil {
			return nil, err
		}
	}
	return roe, nil
}

// Submit finalises a declaration. Fresh and merged submissions run
// the same gate: stored and incoming document types together must
// cover every required type, incoming duplicates are skipped, and the
// total always derives from the top-level earnings fields even when
// the payload carried its own figure.
func (s *service) Submit(ctx context.Context, userID snowflake.ID, req domain.SubmitRequest) (*domain.ROE, float64, bool, error) {
	if req.CFRegistrationNumber == "" || req.AssessmentYear == 0 {
		return nil, 0, false, domain.ErrFieldsRequired
	}

	org, err := s.orgs.FindByCFNumber(ctx, req.CFRegistrationNumber)
	if err != nil {
		return nil, 0, false, err
	}
	cfNumber := *org.CFRegistrationNumber
	industries := orgIndustries(org)

	roe, err := s.repo.FindByCFAndYear(ctx, cfNumber, req.AssessmentYear)
	if err != nil && err != domain.ErrROENotFound {
		return nil, 0, false, err
	}
	if roe != nil && roe.Status == domain.StatusSubmitted {
		return nil, 0, false, domain.ErrAlreadySubmitted
	}

	created := roe == nil
	if created {
		roe = &domain.ROE{
			ID:                   s.node.Generate(),
			CFRegistrationNumber: cfNumber,
			AssessmentYear:       req.AssessmentYear,
			ProcessedBy:          userID,
			Status:               domain.StatusDraft,
			Comments:             req.Comment,
		}
	}

	stored := make(map[string]bool, len(roe.Documents))
	for _, d := range roe.Documents {
		stored[strings.ToLower(d.DocumentType)] = true
	}
	present := make(map[string]bool, len(stored)+len(req.Documents))
	for docType := range stored {
		present[docType] = true
	}
	for _, d := range req.Documents {
		if d.DocumentType != "" {
			present[strings.ToLower(d.DocumentType)] = true
		}
	}
	var missing []string
	for _, required := range domain.SubmissionRequiredDocuments {
		if !present[strings.ToLower(required)] {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, 0, false, &domain.MissingDocumentsError{Documents: missing}
	}

	if created {
		if err := s.repo.Create(ctx, roe); err != nil {
			return nil, 0, false, err
		}
	}

	for _, meta := range req.Documents {
		if meta.DocumentType == "" {
			continue
		}
		if stored[strings.ToLower(meta.DocumentType)] {
			continue
		}
		if err := s.attachDocument(ctx, roe, meta); err != nil {
			return nil, 0, false, err
		}
		stored[strings.ToLower(meta.DocumentType)] = true
	}

	if req.FinalAssessment != nil && !req.FinalAssessment.IsZero() {
		roe.FinalAssessment = datatypes.NewJSONType(*req.FinalAssessment)
	}
	if req.ProvisionalAssessment != nil && !req.ProvisionalAssessment.IsZero() {
		roe.ProvisionalAssessment = datatypes.NewJSONType(*req.ProvisionalAssessment)
	}

	applyFieldUpdates(roe, req.EmployeesEarnings, req.DirectorsEarnings, req.AccommodationMeals, req.NumberOfEmployees, req.NumberOfDirectors, nil)
	roe.RecalculateTotal()

	payment := domain.CalculatePayment(industries, roe, roe.NumberOfEmployees, roe.NumberOfDirectors)
	roe.PaymentAmount = payment
	roe.Status = domain.StatusSubmitted

	if err := s.repo.UpdateFields(ctx, roe.ID, map[string]any{
		"status":                 domain.StatusSubmitted,
		"employees_earnings":     roe.EmployeesEarnings,
		"directors_earnings":     roe.DirectorsEarnings,
		"accommodation_meals":    roe.AccommodationMeals,
		"total_earnings":         roe.TotalEarnings,
		"number_of_employees":    roe.NumberOfEmployees,
		"number_of_directors":    roe.NumberOfDirectors,
		"final_assessment":       roe.FinalAssessment,
		"provisional_assessment": roe.ProvisionalAssessment,
		"payment_amount":         payment,
	}); err != nil {
		return nil, 0, false, err
	}

	s.logger.Info("roe submitted",
		zap.String("roe_id", roe.ID.String()),
		zap.String("cf_registration_number", cfNumber),
		zap.Bool("created", created),
		zap.Float64("payment_amount", payment),
	)
	return roe, payment, created, nil
}

// FlagForAudit marks a submitted declaration for audit.
func (s *service) FlagForAudit(ctx context.Context, id snowflake.ID, flaggedBy string) (*domain.ROE, error) {
	return s.audit(ctx, id, domain.StatusFlagged, flaggedBy)
}

// AcceptSubmission accepts a submitted declaration.
func (s *service) AcceptSubmission(ctx context.Context, id snowflake.ID, acceptedBy string) (*domain.ROE, error) {
	return s.audit(ctx, id, domain.StatusAccepted, acceptedBy)
}

func (s *service) audit(ctx context.Context, id snowflake.ID, to, actor string) (*domain.ROE, error) {
	roe, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if roe.Status != domain.StatusSubmitted {
		return nil, &domain.InvalidStatusError{Required: domain.StatusSubmitted, Current: roe.Status}
	}

	now := time.Now().UTC()
	fields := map[string]any{"status": to}
	switch to {
	case domain.StatusFlagged:
		fields["flagged_at"] = now
		fields["flagged_by"] = actor
	case domain.StatusAccepted:
		fields["accepted_at"] = now
		fields["accepted_by"] = actor
	}

	ok, err := s.repo.TransitionStatus(ctx, roe.ID, domain.StatusSubmitted, fields)
	if err != nil {
		return nil, err
	}
	if !ok {
		current, findErr := s.repo.FindByID(ctx, roe.ID)
		if findErr != nil {
			return nil, findErr
		}
		return nil, &domain.InvalidStatusError{Required: domain.StatusSubmitted, Current: current.Status}
	}

	roe.Status = to
	switch to {
	case domain.StatusFlagged:
		roe.FlaggedAt = &now
		roe.FlaggedBy = actor
	case domain.StatusAccepted:
		roe.AcceptedAt = &now
		roe.AcceptedBy = actor
	}

	s.logger.Info("roe audit action",
		zap.String("roe_id", roe.ID.String()),
		zap.String("status", to),
		zap.String("actor", actor),
	)
	return roe, nil
}

func (s *service) attachDocument(ctx context.Context, roe *domain.ROE, meta domain.DocumentMeta) error {
	doc := &domain.Document{
		ID:           s.node.Generate(),
		ROEID:        roe.ID,
		DocumentType: documentTypeOrDefault(meta.DocumentType),
		Filename:     meta.Filename,
		OriginalName: meta.OriginalName,
		FileSize:     meta.FileSize,
		MimeType:     meta.MimeType,
		UploadedAt:   time.Now().UTC(),
	}
	if err := s.repo.AddDocument(ctx, doc); err != nil {
		return err
	}
	roe.Documents = append(roe.Documents, *doc)
	return nil
}

func applyFieldUpdates(roe *domain.ROE, employees, directors, accommodation *float64, numEmployees, numDirectors *int, comments *string) {
	if employees != nil {
		roe.EmployeesEarnings = *employees
	}
	if directors != nil {
		roe.DirectorsEarnings = *directors
	}
	if accommodation != nil {
		roe.AccommodationMeals = *accommodation
	}
	if numEmployees != nil {
		roe.NumberOfEmployees = *numEmployees
	}
	if numDirectors != nil {
		roe.NumberOfDirectors = *numDirectors
	}
	if comments != nil {
		roe.Comments = *comments
	}
}

func documentTypeOrDefault(docType string) string {
	if docType == "" {
		return domain.DefaultDocumentType
	}
	return docType
}

func orgIndustries(org *orgdomain.Organisation) []string {
	raw, _ := org.BusinessInfo["industries"].([]any)
	industries := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			industries = append(industries, s)
		}
	}
	return industries
}
