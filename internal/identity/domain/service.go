package domain

import (
	"context"
)

type Service interface {
	// CheckUserInfo validates the id number format and that no account
	// exists for it yet.
	CheckUserInfo(ctx context.Context, req CheckUserRequest) error
	// VerifyUserIdentity confirms an existing account matches the
	// supplied personal details.
	VerifyUserIdentity(ctx context.Context, req CheckUserRequest) (*User, error)
	Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	AdminLogin(ctx context.Context, req LoginRequest) (*LoginResult, error)
	ResetPassword(ctx context.Context, email, newPassword string) error
	// ForgotPassword regenerates the account password and emails it;
	// returns the destination address.
	ForgotPassword(ctx context.Context, req CheckUserRequest) (string, error)
	ListUsers(ctx context.Context) ([]User, error)
}

type CheckUserRequest struct {
	IDNumber string
	Name     string
	Surname  string
}

type RegisterRequest struct {
	IDNumber        string
	Name            string
	Surname         string
	Email           string
	PhoneNumber     string
	TelephoneNumber string
}

type RegisterResult struct {
	User  *User
	Token string
}

type LoginRequest struct {
	Username string
	Password string
}

// LoginResult carries either a User or an AdminUser, never both.
type LoginResult struct {
	User        *User
	Admin       *AdminUser
	Permissions []string
	Token       string
}
