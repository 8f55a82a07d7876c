package photos

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"marineworks/internal/domain"
	"marineworks/internal/storage"
)

const MaxFileSize = 50 * 1024 * 1024 // 50 MB

// AllowedMimeTypes defines which photo types are accepted.
var AllowedMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

type WorkOrderRepository interface {
	Get(ctx context.Context, id string) (*domain.WorkOrder, error)
	PutPhoto(ctx context.Context, id string, p domain.Photo) error
	RemovePhoto(ctx context.Context, id, photoID string) error
}

// Service keeps photo blobs and their metadata in sync: blob first on
// upload, blob first on delete, so metadata never references a binary
// that was never stored.
type Service struct {
	workOrders WorkOrderRepository
	objects    storage.ObjectStorage
	tenant     string
	log        *logrus.Logger
}

func NewService(workOrders WorkOrderRepository, objects storage.ObjectStorage, tenant string, log *logrus.Logger) *Service {
	if tenant == "" {
		tenant = "default"
	}
	return &Service{workOrders: workOrders, objects: objects, tenant: tenant, log: log}
}

// Upload stores the binary, resolves its URL, then writes the metadata
// under the work order's photo sub-collection. A metadata failure
// triggers a best-effort blob cleanup; if that also fails the orphaned
// blob is logged and left behind (no metadata ever references it).
func (s *Service) Upload(ctx context.Context, workOrderID string, fileHeader *multipart.FileHeader, uploader string) (*domain.Photo, error) {
	if _, err := s.workOrders.Get(ctx, workOrderID); err != nil {
		return nil, err
	}
	if fileHeader.Size == 0 {
		return nil, fmt.Errorf("empty file: %w", domain.ErrValidation)
	}
	if fileHeader.Size > MaxFileSize {
		return nil, fmt.Errorf("file too large: %w", domain.ErrValidation)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	buf := make([]byte, 512)
	n, _ := file.Read(buf)
	mimeType := strings.Split(http.DetectContentType(buf[:n]), ";")[0]
	if !AllowedMimeTypes[mimeType] {
		return nil, fmt.Errorf("unsupported type %s: %w", mimeType, domain.ErrValidation)
	}
	if seeker, ok := file.(io.Seeker); ok {
		_, _ = seeker.Seek(0, io.SeekStart)
	}

	photoID := uuid.NewString()
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if ext == "" {
		ext = mimeToExt(mimeType)
	}
	objPath := fmt.Sprintf("tenants/%s/workOrders/%s/%s%s", s.tenant, workOrderID, photoID, ext)

	if err := s.objects.PutObject(ctx, objPath, file, mimeType); err != nil {
		return nil, fmt.Errorf("store photo binary: %w", err)
	}

	photo := domain.Photo{
		ID:        photoID,
		URL:       s.objects.PublicURL(objPath),
		Path:      objPath,
		Name:      fileHeader.Filename,
		CreatedAt: time.Now().UnixMilli(),
		CreatedBy: uploader,
	}
	if err := s.workOrders.PutPhoto(ctx, workOrderID, photo); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"work_order": workOrderID,
			"path":       objPath,
		}).Error("photo metadata write failed, removing blob")
		if cleanupErr := s.objects.DeleteObject(ctx, objPath); cleanupErr != nil {
			s.log.WithError(cleanupErr).WithField("path", objPath).
				Error("orphaned photo blob left in storage")
		}
		return nil, fmt.Errorf("save photo metadata: %w", err)
	}
	return &photo, nil
}

// UploadAll processes files sequentially; a failure partway through
// leaves the earlier photos committed and reports which file broke.
func (s *Service) UploadAll(ctx context.Context, workOrderID string, files []*multipart.FileHeader, uploader string) ([]domain.Photo, error) {
	var uploaded []domain.Photo
	for _, fh := range files {
		p, err := s.Upload(ctx, workOrderID, fh, uploader)
		if err != nil {
			return uploaded, fmt.Errorf("upload %s: %w", fh.Filename, err)
		}
		uploaded = append(uploaded, *p)
	}
	return uploaded, nil
}

// Delete removes the binary first, then the metadata. A metadata
// failure after a successful blob delete is a partial failure: the
// dangling reference must be retried, and the whole operation is safe
// to repeat because both deletes are idempotent.
func (s *Service) Delete(ctx context.Context, workOrderID string, photo domain.Photo) error {
	if err := s.objects.DeleteObject(ctx, photo.Path); err != nil {
		return fmt.Errorf("delete photo binary: %w", err)
	}
	if err := s.workOrders.RemovePhoto(ctx, workOrderID, photo.ID); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"work_order": workOrderID,
			"photo":      photo.ID,
		}).Error("photo blob deleted but metadata removal failed, retry needed")
		return fmt.Errorf("photo metadata removal: %w: %w", domain.ErrPartialFailure, err)
	}
	return nil
}

func mimeToExt(mime string) string {
	switch mime {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".bin"
	}
}
