package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"

	"github.com/compfund/cfportal/internal/organisation/domain"
	"github.com/compfund/cfportal/internal/organisation/idgen"
	"github.com/compfund/cfportal/pkg/db"
)

// identifierAttempts bounds how many times approval retries freshly
// generated CF/BP numbers after a uniqueness collision.
const identifierAttempts = 5

// SubmitForApproval moves the draft matching every verified
// identifier into submitted status and records the submitting user as
// an approved linked user.
func (s *service) SubmitForApproval(ctx context.Context, userID snowflake.ID, key domain.SubmissionKey) (*domain.Organisation, error) {
	org, err := s.repo.FindBySubmissionKey(ctx, key)
	if err != nil {
		if err == domain.ErrOrganisationNotFound {
			return nil, domain.ErrNoDraftToSubmit
		}
		return nil, err
	}

	uploaded := make(map[string]bool, len(org.Documents))
	for _, doc := range org.Documents {
		uploaded[doc.DocumentType] = true
	}
	var missing []string
	for _, required := range domain.ValidDocumentTypes(org.OrganisationType) {
		if !uploaded[required] {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, &domain.MissingDocumentsError{Documents: missing}
	}

	now := time.Now().UTC()
	ok, err := s.repo.TransitionStatus(ctx, org.ID, org.Status, map[string]any{
		"status":       domain.StatusSubmitted,
		"submitted_at": now,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		current, findErr := s.repo.FindByID(ctx, org.ID)
		if findErr != nil {
			return nil, findErr
		}
		return nil, &domain.InvalidStatusError{Required: org.Status, Current: current.Status}
	}
	org.Status = domain.StatusSubmitted
	org.SubmittedAt = &now

	if _, err := s.repo.FindLink(ctx, org.ID, userID); err == domain.ErrLinkNotFound {
		link := &domain.LinkedUser{
			ID:             s.node.Generate(),
			OrganisationID: org.ID,
			UserID:         userID,
			Status:         domain.LinkStatusApproved,
			LinkedAt:       now,
		}
		if err := s.repo.AddLink(ctx, link); err != nil && !db.IsDuplicateKeyErr(err) {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	s.logger.Info("organisation submitted for approval",
		zap.String("organisation_id", org.ID.String()),
		zap.String("user_id", userID.String()),
	)
	return org, nil
}

// Resubmit returns a rejected organisation to submitted status and
// clears the rejection details.
func (s *service) Resubmit(ctx context.Context, userID, orgID snowflake.ID) (*domain.Organisation, error) {
	org, err := s.repo.FindAccessible(ctx, orgID, userID)
	if err != nil {
		return nil, err
	}
	if org.Status != domain.StatusRejected {
		return nil, domain.ErrNotRejected
	}

	now := time.Now().UTC()
	ok, err := s.repo.TransitionStatus(ctx, org.ID, domain.StatusRejected, map[string]any{
		"status":          domain.StatusSubmitted,
		"submitted_at":    now,
		"rejected_at":     nil,
		"rejection_notes": "",
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotRejected
	}

	org.Status = domain.StatusSubmitted
	org.SubmittedAt = &now
	org.RejectedAt = nil
	org.RejectionNotes = ""
	return org, nil
}

// Approve transitions a submitted organisation to approved and issues
// its CF and BP numbers. Generated identifiers are retried on
// uniqueness collisions; a reviewer-supplied CF number is stored
// verbatim and never regenerated.
func (s *service) Approve(ctx context.Context, req domain.ApproveRequest) (*domain.Organisation, error) {
	org, err := s.repo.FindByID(ctx, req.OrganisationID)
	if err != nil {
		return nil, err
	}
	if org.Status != domain.StatusSubmitted {
		return nil, &domain.InvalidStatusError{Required: domain.StatusSubmitted, Current: org.Status}
	}

	notes := req.Notes
	if notes == "" {
		notes = "Approved"
	}
	now := time.Now().UTC()

	var cfNumber, bpNumber string
	for attempt := 0; attempt < identifierAttempts; attempt++ {
		if req.CFOverride != "" {
			cfNumber = req.CFOverride
		} else {
			cfNumber, err = idgen.NewCFNumber()
			if err != nil {
				return nil, err
			}
		}
		bpNumber, err = idgen.NewBPNumber()
		if err != nil {
			return nil, err
		}

		ok, err := s.repo.TransitionStatus(ctx, org.ID, domain.StatusSubmitted, map[string]any{
			"status":                 domain.StatusApproved,
			"verification_status":    domain.VerificationVerified,
			"approved_at":            now,
			"cf_registration_number": cfNumber,
			"bp_number":              bpNumber,
			"approved_by":            req.ApprovedBy,
			"approval_notes":         notes,
		})
		if err != nil {
			if db.IsDuplicateKeyErr(err) {
				s.logger.Warn("identifier collision during approval, retrying",
					zap.String("organisation_id", org.ID.String()),
					zap.Int("attempt", attempt+1),
				)
				continue
			}
			return nil, err
		}
		if !ok {
			// Re-read to report the status that beat us.
			current, findErr := s.repo.FindByID(ctx, org.ID)
			if findErr != nil {
				return nil, findErr
			}
			return nil, &domain.InvalidStatusError{Required: domain.StatusSubmitted, Current: current.Status}
		}

		org.Status = domain.StatusApproved
		org.VerificationStatus = domain.VerificationVerified
		org.ApprovedAt = &now
		org.CFRegistrationNumber = &cfNumber
		org.BPNumber = &bpNumber
		org.ApprovedBy = req.ApprovedBy
		org.ApprovalNotes = notes

		s.notifyApproval(org, cfNumber, bpNumber)

		s.logger.Info("organisation approved",
			zap.String("organisation_id", org.ID.String()),
			zap.String("approved_by", req.ApprovedBy),
			zap.String("cf_registration_number", cfNumber),
		)
		return org, nil
	}

	return nil, domain.ErrIdentifierExhausted
}

func (s *service) notifyApproval(org *domain.Organisation, cfNumber, bpNumber string) {
	email, _ := org.Contact["email"].(string)
	if email == "" {
		s.logger.Warn("no contact email for approval notice",
			zap.String("organisation_id", org.ID.String()),
		)
		return
	}
	tradingName, _ := org.Details["tradingName"].(string)
	if tradingName == "" {
		tradingName = org.RegistrationNumber
	}
	s.notifier.OrganisationApproved(email, tradingName, cfNumber, bpNumber)
}

// Reject transitions a submitted organisation to rejected with the
// reviewer's reason.
func (s *service) Reject(ctx context.Context, req domain.RejectRequest) (*domain.Organisation, error) {
	if req.Reason == "" {
		return nil, domain.ErrRejectionReasonRequired
	}

	org, err := s.repo.FindByID(ctx, req.OrganisationID)
	if err != nil {
		return nil, err
	}
	if org.Status != domain.StatusSubmitted {
		return nil, &domain.InvalidStatusError{Required: domain.StatusSubmitted, Current: org.Status}
	}

	notes := req.Notes
	if notes == "" {
		notes = "Rejected"
	}
	now := time.Now().UTC()
	ok, err := s.repo.TransitionStatus(ctx, org.ID, domain.StatusSubmitted, map[string]any{
		"status":              domain.StatusRejected,
		"verification_status": domain.VerificationFailed,
		"rejected_at":         now,
		"rejected_by":         req.RejectedBy,
		"rejection_reason":    req.Reason,
		"rejection_notes":     notes,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		current, findErr := s.repo.FindByID(ctx, org.ID)
		if findErr != nil {
			return nil, findErr
		}
		return nil, &domain.InvalidStatusError{Required: domain.StatusSubmitted, Current: current.Status}
	}

	org.Status = domain.StatusRejected
	org.VerificationStatus = domain.VerificationFailed
	org.RejectedAt = &now
	org.RejectedBy = req.RejectedBy
	org.RejectionReason = req.Reason
	org.RejectionNotes = notes

	s.logger.Info("organisation rejected",
		zap.String("organisation_id", org.ID.String()),
		zap.String("rejected_by", req.RejectedBy),
	)
	return org, nil
}
