package server

import (
	"errors"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	orgdomain "github.com/compfund/cfportal/internal/organisation/domain"
)

// maxUploadSize bounds a single uploaded document.
const maxUploadSize = 10 << 20

// allowedUploadMimes lists the content types the portal accepts for
// document uploads.
var allowedUploadMimes = map[string]bool{
	"application/pdf":        true,
	"font/ttf":               true,
	"application/x-font-tif": true,
	"font/otf":               true,
	"application/x-font-otf": true,
}

var (
	errNoFile          = errors.New("no file uploaded")
	errFileTooLarge    = errors.New("file exceeds the 10MB limit")
	errInvalidFileType = errors.New("invalid file type, only pdf and ttf files are allowed")
)

// saveUpload persists the "file" form field under the uploads
// directory with a generated name and returns its stored metadata.
func (s *Server) saveUpload(c *gin.Context) (orgdomain.StoredFile, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return orgdomain.StoredFile{}, errNoFile
	}
	return s.storeFile(c, header)
}

func (s *Server) storeFile(c *gin.Context, header *multipart.FileHeader) (orgdomain.StoredFile, error) {
	if header.Size > maxUploadSize {
		return orgdomain.StoredFile{}, errFileTooLarge
	}
	mimeType := header.Header.Get("Content-Type")
	if !allowedUploadMimes[mimeType] {
		return orgdomain.StoredFile{}, errInvalidFileType
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return orgdomain.StoredFile{}, err
	}

	filename := uuid.NewString() + filepath.Ext(header.Filename)
	path := filepath.Join(s.uploadDir, filename)
	if err := c.SaveUploadedFile(header, path); err != nil {
		return orgdomain.StoredFile{}, err
	}

	return orgdomain.StoredFile{
		Filename:     filename,
		OriginalName: header.Filename,
		Path:         path,
		Size:         header.Size,
		MimeType:     mimeType,
	}, nil
}
