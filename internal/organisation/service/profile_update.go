package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/compfund/cfportal/internal/organisation/domain"
)

// UpdateDetails merges the supplied sections into the owner's
// organisation. A draft whose profile becomes complete is submitted
// for approval in the same call.
func (s *service) UpdateDetails(ctx context.Context, userID, orgID snowflake.ID, update domain.ProfileUpdate) (*domain.Organisation, bool, error) {
	org, err := s.repo.FindByID(ctx, orgID)
	if err != nil {
		return nil, false, err
	}
	if org.OwnerID != userID {
		return nil, false, domain.ErrOrganisationNotFound
	}

	org.Details = mergeSection(org.Details, update.Details)
	org.Address = mergeSection(org.Address, update.Address)
	org.Contact = mergeSection(org.Contact, update.Contact)
	org.Banking = mergeSection(org.Banking, update.Banking)
	org.BusinessInfo = mergeSection(org.BusinessInfo, update.BusinessInfo)

	fields := map[string]any{
		"details":       org.Details,
		"address":       org.Address,
		"contact":       org.Contact,
		"banking":       org.Banking,
		"business_info": org.BusinessInfo,
	}

	submitted := false
	if org.DetailsComplete() && org.Status == domain.StatusDraft {
		now := time.Now().UTC()
		fields["status"] = domain.StatusSubmitted
		fields["submitted_at"] = now

		ok, err := s.repo.TransitionStatus(ctx, org.ID, domain.StatusDraft, fields)
		if err != nil {
			return nil, false, err
		}
		if ok {
			org.Status = domain.StatusSubmitted
			org.SubmittedAt = &now
			submitted = true
			s.logger.Info("organisation auto-submitted",
				zap.String("organisation_id", org.ID.String()),
			)
		} else {
			// Lost the race against another transition; persist the
			// profile merge alone.
			delete(fields, "status")
			delete(fields, "submitted_at")
			if err := s.repo.UpdateFields(ctx, org.ID, fields); err != nil {
				return nil, false, err
			}
		}
	} else {
		if err := s.repo.UpdateFields(ctx, org.ID, fields); err != nil {
			return nil, false, err
		}
	}

	return org, submitted, nil
}

// UpdateSection merges values into one profile section. Owners and
// approved linked users may update sections.
func (s *service) UpdateSection(ctx context.Context, userID, orgID snowflake.ID, section string, values map[string]any) (*domain.Organisation, error) {
	org, err := s.repo.FindAccessible(ctx, orgID, userID)
	if err != nil {
		return nil, err
	}

	var column string
	var merged datatypes.JSONMap
	switch section {
	case domain.SectionDetails:
		org.Details = mergeSection(org.Details, values)
		column, merged = "details", org.Details
	case domain.SectionContact:
		org.Contact = mergeSection(org.Contact, values)
		column, merged = "contact", org.Contact
	case domain.SectionAddress:
		org.Address = mergeSection(org.Address, values)
		column, merged = "address", org.Address
	case domain.SectionBanking:
		org.Banking = mergeSection(org.Banking, values)
		column, merged = "banking", org.Banking
	case domain.SectionBusinessInfo:
		org.BusinessInfo = mergeSection(org.BusinessInfo, values)
		column, merged = "business_info", org.BusinessInfo
	default:
		return nil, domain.ErrOrganisationNotFound
	}

	if err := s.repo.UpdateFields(ctx, org.ID, map[string]any{column: merged}); err != nil {
		return nil, err
	}
	return org, nil
}

// mergeSection overlays incoming keys onto the stored section, the
// incoming value winning per key.
func mergeSection(current datatypes.JSONMap, incoming map[string]any) datatypes.JSONMap {
	if incoming == nil {
		return current
	}
	merged := datatypes.JSONMap{}
	for k, v := range current {
		merged[k] = v
	}
	for k, v := range incoming {
		merged[k] = v
	}
	return merged
}
