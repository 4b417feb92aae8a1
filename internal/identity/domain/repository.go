package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	CreateUser(ctx context.Context, user *User) error
	FindUserByID(ctx context.Context, id snowflake.ID) (*User, error)
	FindUserByIDNumber(ctx context.Context, idNumber string) (*User, error)
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	// FindUserByIdentity matches idNumber exactly and name/surname
	// case-insensitively.
	FindUserByIdentity(ctx context.Context, idNumber, name, surname string) (*User, error)
	UserExists(ctx context.Context, idNumber, email string) (bool, error)
	UpdateUserFields(ctx context.Context, id snowflake.ID, fields map[string]any) error
	ListUsers(ctx context.Context) ([]User, error)

	FindAdminByLogin(ctx context.Context, login string) (*AdminUser, error)
	FindAdminByID(ctx context.Context, id snowflake.ID) (*AdminUser, error)
	UpdateAdminFields(ctx context.Context, id snowflake.ID, fields map[string]any) error
}
