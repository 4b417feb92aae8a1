package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"

	"github.com/compfund/cfportal/internal/docgen"
	identitydomain "github.com/compfund/cfportal/internal/identity/domain"
	"github.com/compfund/cfportal/internal/notify"
	"github.com/compfund/cfportal/internal/organisation/domain"
)

type service struct {
	repo     domain.Repository
	users    identitydomain.Repository
	notifier *notify.Notifier
	forms    *docgen.Generator
	node     *snowflake.Node
	logger   *zap.Logger
}

func New(
	repo domain.Repository,
	users identitydomain.Repository,
	notifier *notify.Notifier,
	forms *docgen.Generator,
	node *snowflake.Node,
	logger *zap.Logger,
) domain.Service {
	return &service{
		repo:     repo,
		users:    users,
		notifier: notifier,
		forms:    forms,
		node:     node,
		logger:   logger,
	}
}

func (s *service) GetProfile(ctx context.Context, userID snowflake.ID) (*domain.Organisation, error) {
	return s.repo.FindFirstOwnedBy(ctx, userID)
}

func (s *service) GetByID(ctx context.Context, id snowflake.ID) (*domain.Organisation, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) ListAll(ctx context.Context) ([]domain.Organisation, error) {
	return s.repo.ListAll(ctx)
}

func (s *service) ListForUser(ctx context.Context, userID snowflake.ID) ([]domain.OrganisationAccess, error) {
	owned, err := s.repo.ListOwnedBy(ctx, userID)
	if err != nil {
		return nil, err
	}
	linked, err := s.repo.ListLinkedTo(ctx, userID)
	if err != nil {
		return nil, err
	}

	seen := make(map[snowflake.ID]struct{}, len(owned))
	result := make([]domain.OrganisationAccess, 0, len(owned)+len(linked))
	for _, org := range owned {
		seen[org.ID] = struct{}{}
		result = append(result, domain.OrganisationAccess{
			Organisation: org,
			Role:         "owner",
			LinkStatus:   "owner",
		})
	}
	for _, org := range linked {
		if _, ok := seen[org.ID]; ok {
			continue
		}
		access := domain.OrganisationAccess{
			Organisation: org,
			Role:         "linked_user",
		}
		for _, link := range org.LinkedUsers {
			if link.UserID == userID {
				access.LinkStatus = link.Status
				access.LinkedAt = link.LinkedAt.Format("2006-01-02T15:04:05Z07:00")
				access.HasSigned = link.SignedFormPath != ""
				break
			}
		}
		result = append(result, access)
	}
	return result, nil
}
