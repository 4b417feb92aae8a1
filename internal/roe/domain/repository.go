package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	Create(ctx context.Context, roe *ROE) error
	FindByID(ctx context.Context, id snowflake.ID) (*ROE, error)
	FindByCFAndYear(ctx context.Context, cfNumber string, year int) (*ROE, error)
	ListByCF(ctx context.Context, cfNumber string) ([]ROE, error)
	UpdateFields(ctx context.Context, id snowflake.ID, fields map[string]any) error
	// TransitionStatus applies fields only while the declaration is
	// still in the expected status.
	TransitionStatus(ctx context.Context, id snowflake.ID, from string, fields map[string]any) (bool, error)

	AddDocument(ctx context.Context, doc *Document) error
	ListDocuments(ctx context.Context, roeID snowflake.ID) ([]Document, error)
}
