package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/compfund/cfportal/internal/roe/domain"
)

type repository struct {
	db *gorm.DB
}

func New(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, roe *domain.ROE) error {
	return r.db.WithContext(ctx).Create(roe).Error
}

func (r *repository) FindByID(ctx context.Context, id snowflake.ID) (*domain.ROE, error) {
	var roe domain.ROE
	err := r.db.WithContext(ctx).
		Preload("Documents").
		First(&roe, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrROENotFound
		}
		return nil, err
	}
	return &roe, nil
}

func (r *repository) FindByCFAndYear(ctx context.Context, cfNumber string, year int) (*domain.ROE, error) {
	var roe domain.ROE
	err := r.db.WithContext(ctx).
		Preload("Documents").
		Where("cf_registration_number = ? AND assessment_year = ?", cfNumber, year).
		First(&roe).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrROENotFound
		}
		return nil, err
	}
	return &roe, nil
}

func (r *repository) ListByCF(ctx context.Context, cfNumber string) ([]domain.ROE, error) {
	var roes []domain.ROE
	err := r.db.WithContext(ctx).
		Preload("Documents").
		Where("cf_registration_number = ?", cfNumber).
		Order("assessment_year DESC").
		Find(&roes).Error
	if err != nil {
		return nil, err
	}
	return roes, nil
}

func (r *repository) UpdateFields(ctx context.Context, id snowflake.ID, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&domain.ROE{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *repository) TransitionStatus(ctx context.Context, id snowflake.ID, from string, fields map[string]any) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.ROE{}).
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

func (r *repository) ListDocuments(ctx context.Context, roeID snowflake.ID) ([]domain.Document, error) {
	var docs []domain.Document
	err := r.db.WithContext(ctx).
		Where("roe_id = ?", roeID).
		Order("uploaded_at").
		Find(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}
