package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"

	"github.com/compfund/cfportal/internal/docgen"
	"github.com/compfund/cfportal/internal/organisation/domain"
	"github.com/compfund/cfportal/pkg/db"
)

// LinkByCF starts a linking request: validates the CF number, checks
// the cap, renders the authorisation form and mails it to the
// requesting user. The link is recorded as pending until the signed
// form comes back.
func (s *service) LinkByCF(ctx context.Context, userID snowflake.ID, cfNumber string) (*domain.Organisation, error) {
	if !strings.HasPrefix(cfNumber, "99") || len(cfNumber) != 12 {
		return nil, domain.ErrInvalidCFNumber
	}

	org, err := s.repo.FindByCFNumber(ctx, cfNumber)
	if err != nil {
		return nil, err
	}

	for _, link := range org.LinkedUsers {
		if link.UserID == userID {
			return nil, domain.ErrAlreadyLinked
		}
	}

	count, err := s.repo.CountLinks(ctx, org.ID)
	if err != nil {
		return nil, err
	}
	max := org.MaxLinkedUsers
	if max == 0 {
		max = domain.DefaultMaxLinkedUsers
	}
	if count >= int64(max) {
		return nil, domain.ErrLinkLimitReached
	}

	user, err := s.users.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	tradingName, _ := org.Details["tradingName"].(string)
	form, filename, err := s.forms.LinkingForm(ctx, docgen.LinkingFormData{
		TradingName:          tradingName,
		RegistrationNumber:   org.RegistrationNumber,
		CFRegistrationNumber: cfNumber,
		UserName:             user.Name,
		UserSurname:          user.Surname,
		UserIDNumber:         user.IDNumber,
		UserEmail:            user.Email,
		RequestedAt:          time.Now().UTC(),
	})
	if err != nil {
		// The form is the whole point of the request; without it the
		// linking flow cannot proceed.
		return nil, err
	}

	s.notifier.LinkingRequested(user.Email, tradingName, filename, form)

	link := &domain.LinkedUser{
		ID:             s.node.Generate(),
		OrganisationID: org.ID,
		UserID:         userID,
		Status:         domain.LinkStatusPending,
		LinkedAt:       time.Now().UTC(),
	}
	if err := s.repo.AddLink(ctx, link); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrAlreadyLinked
		}
		return nil, err
	}

	s.logger.Info("linking requested",
		zap.String("organisation_id", org.ID.String()),
		zap.String("user_id", userID.String()),
	)
	return org, nil
}

// UploadSignedForm records the signed authorisation form against the
// pending link and activates it.
func (s *service) UploadSignedForm(ctx context.Context, userID, orgID snowflake.ID, formPath string) (*domain.Organisation, error) {
	org, err := s.repo.FindByID(ctx, orgID)
	if err != nil {
		return nil, err
	}

	link, err := s.repo.FindLink(ctx, org.ID, userID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateLinkFields(ctx, link.ID, map[string]any{
		"signed_form_path": formPath,
		"status":           domain.LinkStatusApproved,
	}); err != nil {
		return nil, err
	}

	user, err := s.users.FindUserByID(ctx, userID)
	if err == nil {
		tradingName, _ := org.Details["tradingName"].(string)
		recipients := []string{user.Email}
		if contact, _ := org.Contact["email"].(string); contact != "" && !strings.EqualFold(contact, user.Email) {
			recipients = append(recipients, contact)
		}
		s.notifier.LinkingConfirmed(recipients, tradingName)
	}

	s.logger.Info("signed linking form received",
		zap.String("organisation_id", org.ID.String()),
		zap.String("user_id", userID.String()),
	)
	return org, nil
}
