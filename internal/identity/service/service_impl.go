package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"

	"github.com/compfund/cfportal/internal/identity/domain"
	"github.com/compfund/cfportal/internal/identity/password"
	"github.com/compfund/cfportal/internal/identity/token"
	"github.com/compfund/cfportal/internal/notify"
)

// South African identity numbers are exactly 13 digits.
var idNumberPattern = regexp.MustCompile(`^\d{13}$`)

type service struct {
	repo     domain.Repository
	tokens   *token.Issuer
	notifier *notify.Notifier
	node     *snowflake.Node
	logger   *zap.Logger
}

func New(repo domain.Repository, tokens *token.Issuer, notifier *notify.Notifier, node *snowflake.Node, logger *zap.Logger) domain.Service {
	return &service{
		repo:     repo,
		tokens:   tokens,
		notifier: notifier,
		node:     node,
		logger:   logger,
	}
}

func (s *service) CheckUserInfo(ctx context.Context, req domain.CheckUserRequest) error {
	if !idNumberPattern.MatchString(req.IDNumber) {
		return domain.ErrInvalidIDNumber
	}

	_, err := s.repo.FindUserByIDNumber(ctx, req.IDNumber)
	if err == nil {
		return domain.ErrUserExists
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return err
	}
	return nil
}

func (s *service) VerifyUserIdentity(ctx context.Context, req domain.CheckUserRequest) (*domain.User, error) {
	if !idNumberPattern.MatchString(req.IDNumber) {
		return nil, domain.ErrInvalidIDNumber
	}
	return s.repo.FindUserByIdentity(ctx, req.IDNumber, req.Name, req.Surname)
}

func (s *service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.RegisterResult, error) {
	if !idNumberPattern.MatchString(req.IDNumber) {
		return nil, domain.ErrInvalidIDNumber
	}

	exists, err := s.repo.UserExists(ctx, req.IDNumber, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrUserExists
	}

	plain, err := generatePassword()
	if err != nil {
		return nil, err
	}
	hash, err := password.Hash(plain)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:              s.node.Generate(),
		IDNumber:        req.IDNumber,
		Name:            req.Name,
		Surname:         req.Surname,
		Email:           strings.ToLower(strings.TrimSpace(req.Email)),
		PhoneNumber:     req.PhoneNumber,
		TelephoneNumber: req.TelephoneNumber,
		PasswordHash:    hash,
		IsVerified:      true,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.notifier.RegistrationCredentials(user.Email, user.Name, user.IDNumber, plain)

	tok, err := s.tokens.Issue(user.ID.String(), false)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		zap.String("user_id", user.ID.String()),
		zap.String("id_number", user.IDNumber),
	)
	return &domain.RegisterResult{User: user, Token: tok}, nil
}

// Login authenticates against the users table by id number, falling
// back to the admin table so staff can use the same form.
func (s *service) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResult, error) {
	user, err := s.repo.FindUserByIDNumber(ctx, req.Username)
	if err == nil {
		if !password.Verify(req.Password, user.PasswordHash) {
			return nil, domain.ErrInvalidCredentials
		}
		now := time.Now().UTC()
		if err := s.repo.UpdateUserFields(ctx, user.ID, map[string]any{"last_login": now}); err != nil {
			s.logger.Warn("failed to record last login", zap.Error(err))
		}
		user.LastLogin = &now

		tok, err := s.tokens.Issue(user.ID.String(), false)
		if err != nil {
			return nil, err
		}
		return &domain.LoginResult{User: user, Token: tok}, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	return s.AdminLogin(ctx, req)
}

func (s *service) AdminLogin(ctx context.Context, req domain.LoginRequest) (*domain.LoginResult, error) {
	admin, err := s.repo.FindAdminByLogin(ctx, req.Username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !password.Verify(req.Password, admin.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	if !admin.IsActive {
		return nil, domain.ErrAdminInactive
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateAdminFields(ctx, admin.ID, map[string]any{"last_login": now}); err != nil {
		s.logger.Warn("failed to record admin last login", zap.Error(err))
	}
	admin.LastLogin = &now

	tok, err := s.tokens.Issue(admin.ID.String(), true)
	if err != nil {
		return nil, err
	}

	return &domain.LoginResult{
		Admin:       admin,
		Permissions: flattenPermissions(admin),
		Token:       tok,
	}, nil
}

func (s *service) ResetPassword(ctx context.Context, email, newPassword string) error {
	user, err := s.repo.FindUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return err
	}
	hash, err := password.Hash(newPassword)
	if err != nil {
		return err
	}
	return s.repo.UpdateUserFields(ctx, user.ID, map[string]any{"password_hash": hash})
}

func (s *service) ForgotPassword(ctx context.Context, req domain.CheckUserRequest) (string, error) {
	user, err := s.repo.FindUserByIdentity(ctx, req.IDNumber, req.Name, req.Surname)
	if err != nil {
		return "", err
	}

	plain, err := generatePassword()
	if err != nil {
		return "", err
	}
	hash, err := password.Hash(plain)
	if err != nil {
		return "", err
	}
	if err := s.repo.UpdateUserFields(ctx, user.ID, map[string]any{"password_hash": hash}); err != nil {
		return "", err
	}

	s.notifier.PasswordReset(user.Email, user.Name, plain)
	return user.Email, nil
}

func (s *service) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.repo.ListUsers(ctx)
}

// generatePassword returns a 6 character hex password for new and
// reset accounts.
func generatePassword() (string, error) {
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// flattenPermissions turns the stored permission map into the list of
// granted permission names. Super admins implicitly hold everything.
func flattenPermissions(admin *domain.AdminUser) []string {
	if admin.Role == domain.RoleSuperAdmin {
		return []string{"all"}
	}
	granted := make([]string, 0, len(admin.Permissions))
	for name, v := range admin.Permissions {
		if enabled, ok := v.(bool); ok && enabled {
			granted = append(granted, name)
		}
	}
	sort.Strings(granted)
	return granted
}
