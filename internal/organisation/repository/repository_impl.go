package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/compfund/cfportal/internal/organisation/domain"
)

type repository struct {
	db *gorm.DB
}

func New(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, org *domain.Organisation) error {
	return r.db.WithContext(ctx).Create(org).Error
}

func (r *repository) FindByID(ctx context.Context, id snowflake.ID) (*domain.Organisation, error) {
	var org domain.Organisation
	err := r.db.WithContext(ctx).
		Preload("Documents").
		Preload("LinkedUsers").
		First(&org, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &org, nil
}

func (r *repository) FindByTypeAndRegistration(ctx context.Context, orgType, registrationNumber string) (*domain.Organisation, error) {
	var org domain.Organisation
	err := r.db.WithContext(ctx).
		Preload("Documents").
		Where("organisation_type = ? AND registration_number = ?", orgType, registrationNumber).
		First(&org).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &org, nil
}

func (r *repository) FindByRegistrationNumber(ctx context.Context, registrationNumber string) (*domain.Organisation, error) {
	var org domain.Organisation
	err := r.db.WithContext(ctx).
		Preload("Documents").
		Where("registration_number = ?", registrationNumber).
		First(&org).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &org, nil
}

func (r *repository) FindByCFNumber(ctx context.Context, cfNumber string) (*domain.Organisation, error) {
	var org domain.Organisation
	err := r.db.WithContext(ctx).
		Preload("LinkedUsers").
		Where("cf_registration_number = ?", cfNumber).
		First(&org).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &org, nil
}

func (r *repository) FindBySubmissionKey(ctx context.Context, key domain.SubmissionKey) (*domain.Organisation, error) {
	var org domain.Organisation
	err := r.db.WithContext(ctx).
		Preload("Documents").
		Preload("LinkedUsers").
		Where("organisation_type = ? AND registration_number = ? AND tax_number = ?",
			key.OrganisationType, key.RegistrationNumber, key.TaxNumber).
		First(&org).Error
	if err != nil {
		return nil, notFound(err)
	}
	// Membership in the identity number set cannot be expressed
	// portably in the WHERE clause, so it is checked here.
	found := false
	for _, idNum := range org.IdentityNumbers {
		if idNum == key.IdentityNumber {
			found = true
			break
		}
	}
	if !found {
		return nil, domain.ErrOrganisationNotFound
	}
	return &org, nil
}

func (r *repository) FindFirstOwnedBy(ctx context.Context, ownerID snowflake.ID) (*domain.Organisation, error) {
	var org domain.Organisation
	err := r.db.WithContext(ctx).
		Preload("Documents").
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		First(&org).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &org, nil
}

func (r *repository) ListOwnedBy(ctx context.Context, ownerID snowflake.ID) ([]domain.Organisation, error) {
	var orgs []domain.Organisation
	err := r.db.WithContext(ctx).
		Preload("Documents").
		Preload("LinkedUsers").
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&orgs).Error
	if err != nil {
		return nil, err
	}
	return orgs, nil
}

func (r *repository) ListLinkedTo(ctx context.Context, userID snowflake.ID) ([]domain.Organisation, error) {
	var orgs []domain.Organisation
	err := r.db.WithContext(ctx).
		Preload("Documents").
		Preload("LinkedUsers").
		Joins("JOIN organisation_links ON organisation_links.organisation_id = organisations.id").
		Where("organisation_links.user_id = ? AND organisation_links.status = ?", userID, domain.LinkStatusApproved).
		Order("organisations.created_at DESC").
		Find(&orgs).Error
	if err != nil {
		return nil, err
	}
	return orgs, nil
}

func (r *repository) ListAll(ctx context.Context) ([]domain.Organisation, error) {
	var orgs []domain.Organisation
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&orgs).Error
	if err != nil {
		return nil, err
	}
	return orgs, nil
}

func (r *repository) FindAccessible(ctx context.Context, id, userID snowflake.ID) (*domain.Organisation, error) {
	var org domain.Organisation
	err := r.db.WithContext(ctx).
		Preload("Documents").
		Preload("LinkedUsers").
		Where("id = ?", id).
		Where("owner_id = ? OR EXISTS (SELECT 1 FROM organisation_links WHERE organisation_links.organisation_id = organisations.id AND organisation_links.user_id = ? AND organisation_links.status = ?)",
			userID, userID, domain.LinkStatusApproved).
		First(&org).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAccessDenied
		}
		return nil, err
	}
	return &org, nil
}

func (r *repository) UpdateFields(ctx context.Context, id snowflake.ID, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&domain.Organisation{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *repository) TransitionStatus(ctx context.Context, id snowflake.ID, from string, fields map[string]any) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Organisation{}).
		Where("id = ? AND status = ?", id, from).
		Updates(fields)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) AddDocument(ctx context.Context, doc *domain.Document) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

func (r *repository) FindDocument(ctx context.Context, orgID, docID snowflake.ID) (*domain.Document, error) {
	var doc domain.Document
	err := r.db.WithContext(ctx).
		Where("organisation_id = ? AND id = ?", orgID, docID).
		First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, err
	}
	return &doc, nil
}

func (r *repository) ListDocuments(ctx context.Context, orgID snowflake.ID) ([]domain.Document, error) {
	var docs []domain.Document
	err := r.db.WithContext(ctx).
		Where("organisation_id = ?", orgID).
		Order("uploaded_at").
		Find(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *repository) UpdateDocumentFields(ctx context.Context, docID snowflake.ID, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&domain.Document{}).
		Where("id = ?", docID).
		Updates(fields).Error
}

func (r *repository) AddLink(ctx context.Context, link *domain.LinkedUser) error {
	return r.db.WithContext(ctx).Create(link).Error
}

func (r *repository) FindLink(ctx context.Context, orgID, userID snowflake.ID) (*domain.LinkedUser, error) {
	var link domain.LinkedUser
	err := r.db.WithContext(ctx).
		Where("organisation_id = ? AND user_id = ?", orgID, userID).
		First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrLinkNotFound
		}
		return nil, err
	}
	return &link, nil
}

func (r *repository) CountLinks(ctx context.Context, orgID snowflake.ID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.LinkedUser{}).
		Where("organisation_id = ?", orgID).
		Count(&count).Error
	return count, err
}

func (r *repository) ListLinks(ctx context.Context, orgID snowflake.ID) ([]domain.LinkedUser, error) {
	var links []domain.LinkedUser
	err := r.db.WithContext(ctx).
		Where("organisation_id = ?", orgID).
		Order("linked_at").
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	return links, nil
}

func (r *repository) UpdateLinkFields(ctx context.Context, linkID snowflake.ID, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&domain.LinkedUser{}).
		Where("id = ?", linkID).
		Updates(fields).Error
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrOrganisationNotFound
	}
	return err
}
