package photos

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"marineworks/internal/domain"
)

type MockWorkOrderRepository struct {
	mock.Mock
}

func (m *MockWorkOrderRepository) Get(ctx context.Context, id string) (*domain.WorkOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WorkOrder), args.Error(1)
}

func (m *MockWorkOrderRepository) PutPhoto(ctx context.Context, id string, p domain.Photo) error {
	args := m.Called(ctx, id, p)
	return args.Error(0)
}

func (m *MockWorkOrderRepository) RemovePhoto(ctx context.Context, id, photoID string) error {
	args := m.Called(ctx, id, photoID)
	return args.Error(0)
}

// fakeStorage records object operations in memory.
type fakeStorage struct {
	objects   map[string][]byte
	putErr    error
	deleteErr error
	deleted   []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (f *fakeStorage) PutObject(_ context.Context, path string, r io.Reader, _ string) error {
	if f.putErr != nil {
		return f.putErr
	}
	data, _ := io.ReadAll(r)
	f.objects[path] = data
	return nil
}

func (f *fakeStorage) PublicURL(path string) string { return "/static/uploads/" + path }

func (f *fakeStorage) DeleteObject(_ context.Context, path string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.objects, path)
	f.deleted = append(f.deleted, path)
	return nil
}

var jpegBytes = append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, bytes.Repeat([]byte{0x11}, 64)...)

func makeFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("photos", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	reader := multipart.NewReader(&buf, w.Boundary())
	form, err := reader.ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["photos"][0]
}

func newTestService(repo *MockWorkOrderRepository, objects *fakeStorage) *Service {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewService(repo, objects, "default", log)
}

func TestUploadStoresBlobThenMetadata(t *testing.T) {
	repo := new(MockWorkOrderRepository)
	objects := newFakeStorage()
	svc := newTestService(repo, objects)

	repo.On("Get", mock.Anything, "wo1").Return(&domain.WorkOrder{ID: "wo1"}, nil)
	repo.On("PutPhoto", mock.Anything, "wo1", mock.MatchedBy(func(p domain.Photo) bool {
		return p.Name == "leak.jpg" && p.CreatedBy == "u1" && p.URL != "" && p.Path != ""
	})).Return(nil)

	photo, err := svc.Upload(context.Background(), "wo1", makeFileHeader(t, "leak.jpg", jpegBytes), "u1")
	require.NoError(t, err)
	assert.Contains(t, photo.Path, "tenants/default/workOrders/wo1/")
	assert.Contains(t, objects.objects, photo.Path)
	repo.AssertExpectations(t)
}

func TestUploadRejectsUnknownWorkOrder(t *testing.T) {
	repo := new(MockWorkOrderRepository)
	objects := newFakeStorage()
	svc := newTestService(repo, objects)

	repo.On("Get", mock.Anything, "nope").Return(nil, domain.ErrNotFound)

	_, err := svc.Upload(context.Background(), "nope", makeFileHeader(t, "leak.jpg", jpegBytes), "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, objects.objects)
}

func TestUploadRejectsNonImage(t *testing.T) {
	repo := new(MockWorkOrderRepository)
	objects := newFakeStorage()
	svc := newTestService(repo, objects)

	repo.On("Get", mock.Anything, "wo1").Return(&domain.WorkOrder{ID: "wo1"}, nil)

	_, err := svc.Upload(context.Background(), "wo1", makeFileHeader(t, "report.txt", []byte("plain text, not a photo")), "")
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, objects.objects)
}

func TestUploadCleansBlobWhenMetadataFails(t *testing.T) {
	repo := new(MockWorkOrderRepository)
	objects := newFakeStorage()
	svc := newTestService(repo, objects)

	repo.On("Get", mock.Anything, "wo1").Return(&domain.WorkOrder{ID: "wo1"}, nil)
	repo.On("PutPhoto", mock.Anything, "wo1", mock.Anything).Return(errors.New("store down"))

	_, err := svc.Upload(context.Background(), "wo1", makeFileHeader(t, "leak.jpg", jpegBytes), "")
	require.Error(t, err)
	assert.Empty(t, objects.objects)
	assert.Len(t, objects.deleted, 1)
}

func TestUploadAllStopsAtFirstFailureKeepingEarlier(t *testing.T) {
	repo := new(MockWorkOrderRepository)
	objects := newFakeStorage()
	svc := newTestService(repo, objects)

	repo.On("Get", mock.Anything, "wo1").Return(&domain.WorkOrder{ID: "wo1"}, nil)
	repo.On("PutPhoto", mock.Anything, "wo1", mock.Anything).Return(nil)

	files := []*multipart.FileHeader{
		makeFileHeader(t, "one.jpg", jpegBytes),
		makeFileHeader(t, "two.txt", []byte("not an image at all")),
		makeFileHeader(t, "three.jpg", jpegBytes),
	}
	uploaded, err := svc.UploadAll(context.Background(), "wo1", files, "")
	require.Error(t, err)
	assert.Len(t, uploaded, 1) // first file stays committed
	assert.Len(t, objects.objects, 1)
}

func TestDeleteRemovesBlobThenMetadata(t *testing.T) {
	repo := new(MockWorkOrderRepository)
	objects := newFakeStorage()
	svc := newTestService(repo, objects)

	photo := domain.Photo{ID: "p1", Path: "tenants/default/workOrders/wo1/p1.jpg"}
	objects.objects[photo.Path] = jpegBytes
	repo.On("RemovePhoto", mock.Anything, "wo1", "p1").Return(nil)

	require.NoError(t, svc.Delete(context.Background(), "wo1", photo))
	assert.NotContains(t, objects.objects, photo.Path)
	repo.AssertExpectations(t)
}

func TestDeleteBlobFailureLeavesMetadata(t *testing.T) {
	repo := new(MockWorkOrderRepository)
	objects := newFakeStorage()
	objects.deleteErr = errors.New("storage down")
	svc := newTestService(repo, objects)

	err := svc.Delete(context.Background(), "wo1", domain.Photo{ID: "p1", Path: "x"})
	require.Error(t, err)
	repo.AssertNotCalled(t, "RemovePhoto", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteMetadataFailureIsPartial(t *testing.T) {
	repo := new(MockWorkOrderRepository)
	objects := newFakeStorage()
	svc := newTestService(repo, objects)

	repo.On("RemovePhoto", mock.Anything, "wo1", "p1").Return(errors.New("store down"))

	err := svc.Delete(context.Background(), "wo1", domain.Photo{ID: "p1", Path: "x"})
	assert.ErrorIs(t, err, domain.ErrPartialFailure)
}
