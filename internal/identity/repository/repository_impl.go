package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/compfund/cfportal/internal/identity/domain"
)

type repository struct {
	db *gorm.DB
}

func New(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) CreateUser(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *repository) FindUserByID(ctx context.Context, id snowflake.ID) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *repository) FindUserByIDNumber(ctx context.Context, idNumber string) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).First(&user, "id_number = ?", idNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *repository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *repository) FindUserByIdentity(ctx context.Context, idNumber, name, surname string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).
		Where("id_number = ? AND LOWER(name) = LOWER(?) AND LOWER(surname) = LOWER(?)", idNumber, name, surname).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *repository) UserExists(ctx context.Context, idNumber, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("id_number = ? OR email = ?", idNumber, email).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) UpdateUserFields(ctx context.Context, id snowflake.ID, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *repository) ListUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *repository) FindAdminByLogin(ctx context.Context, login string) (*domain.AdminUser, error) {
	var admin domain.AdminUser
	err := r.db.WithContext(ctx).
		Where("username = ? OR email = ?", login, login).
		First(&admin).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &admin, nil
}

func (r *repository) FindAdminByID(ctx context.Context, id snowflake.ID) (*domain.AdminUser, error) {
	var admin domain.AdminUser
	if err := r.db.WithContext(ctx).First(&admin, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &admin, nil
}

func (r *repository) UpdateAdminFields(ctx context.Context, id snowflake.ID, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&domain.AdminUser{}).
		Where("id = ?", id).
		Updates(fields).Error
}
