package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/compfund/cfportal/internal/organisation/domain"
	"github.com/compfund/cfportal/pkg/db"
)

// UploadDocument attaches a registration document to the organisation
// identified by registration number. One document per type; a second
// upload of the same type conflicts.
func (s *service) UploadDocument(ctx context.Context, req domain.UploadDocumentRequest) (*domain.Document, error) {
	org, err := s.repo.FindByRegistrationNumber(ctx, req.RegistrationNumber)
	if err != nil {
		return nil, err
	}

	allowed := domain.ValidDocumentTypes(org.OrganisationType)
	if !containsString(allowed, req.DocumentType) {
		return nil, &domain.InvalidDocumentTypeError{
			OrganisationType: org.OrganisationType,
			Allowed:          allowed,
		}
	}

	for _, existing := range org.Documents {
		if existing.DocumentType == req.DocumentType {
			return nil, domain.ErrDocumentExists
		}
	}

	doc := &domain.Document{
		ID:             s.node.Generate(),
		OrganisationID: org.ID,
		DocumentType:   req.DocumentType,
		Filename:       req.File.Filename,
		OriginalName:   req.File.OriginalName,
		FilePath:       req.File.Path,
		FileSize:       req.File.Size,
		MimeType:       req.File.MimeType,
		UploadedAt:     time.Now().UTC(),
	}
	if err := s.repo.AddDocument(ctx, doc); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDocumentExists
		}
		return nil, err
	}

	s.logger.Info("document uploaded",
		zap.String("organisation_id", org.ID.String()),
		zap.String("document_type", req.DocumentType),
	)
	return doc, nil
}

// ReplaceDocument overwrites an existing document's file and type in
// place. Owners and approved linked users may replace documents.
func (s *service) ReplaceDocument(ctx context.Context, req domain.ReplaceDocumentRequest) (*domain.Document, error) {
	if _, err := s.repo.FindAccessible(ctx, req.OrganisationID, req.UserID); err != nil {
		return nil, err
	}

	doc, err := s.repo.FindDocument(ctx, req.OrganisationID, req.DocumentID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	fields := map[string]any{
		"filename":      req.File.Filename,
		"original_name": req.File.OriginalName,
		"file_path":     req.File.Path,
		"file_size":     req.File.Size,
		"mime_type":     req.File.MimeType,
		"document_type": req.DocumentType,
		"uploaded_at":   now,
	}
	if err := s.repo.UpdateDocumentFields(ctx, doc.ID, fields); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDocumentExists
		}
		return nil, err
	}

	doc.Filename = req.File.Filename
	doc.OriginalName = req.File.OriginalName
	doc.FilePath = req.File.Path
	doc.FileSize = req.File.Size
	doc.MimeType = req.File.MimeType
	doc.DocumentType = req.DocumentType
	doc.UploadedAt = now
	return doc, nil
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
