package workorder

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"marineworks/internal/domain"
	"marineworks/internal/store"
)

type MockWorkOrderRepository struct {
	mock.Mock
}

func (m *MockWorkOrderRepository) Create(ctx context.Context, wo *domain.WorkOrder) (string, error) {
	args := m.Called(ctx, wo)
	if id := args.String(0); id != "" {
		wo.ID = id
		wo.Code = "PENDING"
		wo.CreatedAt = 1000
		wo.UpdatedAt = 1000
		wo.StatusUpdatedAt = 1000
	}
	return args.String(0), args.Error(1)
}

func (m *MockWorkOrderRepository) Update(ctx context.Context, id string, partial map[string]any) error {
	args := m.Called(ctx, id, partial)
	return args.Error(0)
}

func (m *MockWorkOrderRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockWorkOrderRepository) Get(ctx context.Context, id string) (*domain.WorkOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WorkOrder), args.Error(1)
}

func (m *MockWorkOrderRepository) List(ctx context.Context) ([]domain.WorkOrder, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.WorkOrder), args.Error(1)
}

func (m *MockWorkOrderRepository) ApplyStatusChange(ctx context.Context, id string, to domain.WorkOrderStatus, at int64) error {
	args := m.Called(ctx, id, to, at)
	return args.Error(0)
}

func (m *MockWorkOrderRepository) SubscribeAll(fn func([]domain.WorkOrder)) store.UnsubscribeFunc {
	m.Called(fn)
	return func() {}
}

func (m *MockWorkOrderRepository) SubscribeByID(id string, fn func(*domain.WorkOrder)) store.UnsubscribeFunc {
	m.Called(id, fn)
	return func() {}
}

type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) Append(ctx context.Context, workOrderID string, ev domain.StatusEvent) (string, error) {
	args := m.Called(ctx, workOrderID, ev)
	return args.String(0), args.Error(1)
}

func (m *MockHistoryRepository) List(ctx context.Context, workOrderID string, descending bool) ([]domain.StatusEvent, error) {
	args := m.Called(ctx, workOrderID, descending)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StatusEvent), args.Error(1)
}

func (m *MockHistoryRepository) Subscribe(workOrderID string, fn func([]domain.StatusEvent)) store.UnsubscribeFunc {
	m.Called(workOrderID, fn)
	return func() {}
}

func newTestService() (*Service, *MockWorkOrderRepository, *MockHistoryRepository) {
	repo := new(MockWorkOrderRepository)
	history := new(MockHistoryRepository)
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewService(repo, history, log), repo, history
}

func TestTransitionAppendsEventThenStatus(t *testing.T) {
	svc, repo, history := newTestService()
	ctx := context.Background()

	repo.On("Get", ctx, "wo1").Return(&domain.WorkOrder{
		ID:     "wo1",
		Status: domain.StatusUnderReview,
	}, nil)
	history.On("Append", ctx, "wo1", mock.MatchedBy(func(ev domain.StatusEvent) bool {
		return ev.From == domain.StatusUnderReview &&
			ev.To == domain.StatusAwaitingPart &&
			ev.Note == "waiting on seal kit" &&
			ev.ChangedBy == "u1"
	})).Return("ev1", nil)
	repo.On("ApplyStatusChange", ctx, "wo1", domain.StatusAwaitingPart, mock.AnythingOfType("int64")).Return(nil)

	ev, err := svc.Transition(ctx, "wo1", domain.StatusAwaitingPart, "waiting on seal kit", "u1")
	require.NoError(t, err)
	assert.Equal(t, "ev1", ev.ID)
	assert.Equal(t, domain.StatusUnderReview, ev.From)
	assert.Equal(t, domain.StatusAwaitingPart, ev.To)

	repo.AssertExpectations(t)
	history.AssertExpectations(t)
}

func TestTransitionSameStatusIsNoOp(t *testing.T) {
	svc, repo, history := newTestService()
	ctx := context.Background()

	repo.On("Get", ctx, "wo1").Return(&domain.WorkOrder{
		ID:     "wo1",
		Status: domain.StatusInProgress,
	}, nil)

	_, err := svc.Transition(ctx, "wo1", domain.StatusInProgress, "", "")
	assert.ErrorIs(t, err, domain.ErrNoOp)

	history.AssertNotCalled(t, "Append", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "ApplyStatusChange", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTransitionMissingWorkOrder(t *testing.T) {
	svc, repo, history := newTestService()
	ctx := context.Background()

	repo.On("Get", ctx, "nope").Return(nil, domain.ErrNotFound)

	_, err := svc.Transition(ctx, "nope", domain.StatusDone, "", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	history.AssertNotCalled(t, "Append", mock.Anything, mock.Anything, mock.Anything)
}

func TestTransitionUnknownStatus(t *testing.T) {
	svc, repo, _ := newTestService()

	_, err := svc.Transition(context.Background(), "wo1", "SOMETHING_ELSE", "", "")
	assert.ErrorIs(t, err, domain.ErrValidation)
	repo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestTransitionFailedEventAppendAbortsStatusWrite(t *testing.T) {
	svc, repo, history := newTestService()
	ctx := context.Background()

	repo.On("Get", ctx, "wo1").Return(&domain.WorkOrder{
		ID:     "wo1",
		Status: domain.StatusUnderReview,
	}, nil)
	history.On("Append", ctx, "wo1", mock.Anything).Return("", errors.New("store down"))

	_, err := svc.Transition(ctx, "wo1", domain.StatusCanceled, "", "")
	require.Error(t, err)
	repo.AssertNotCalled(t, "ApplyStatusChange", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTransitionStatusWriteFailureIsPartialAfterRetry(t *testing.T) {
	svc, repo, history := newTestService()
	ctx := context.Background()

	repo.On("Get", ctx, "wo1").Return(&domain.WorkOrder{
		ID:     "wo1",
		Status: domain.StatusUnderReview,
	}, nil)
	history.On("Append", ctx, "wo1", mock.Anything).Return("ev1", nil)
	repo.On("ApplyStatusChange", ctx, "wo1", domain.StatusCanceled, mock.AnythingOfType("int64")).
		Return(errors.New("store down")).Twice()

	_, err := svc.Transition(ctx, "wo1", domain.StatusCanceled, "", "")
	assert.ErrorIs(t, err, domain.ErrPartialFailure)
	repo.AssertNumberOfCalls(t, "ApplyStatusChange", 2)
	history.AssertNumberOfCalls(t, "Append", 1)
}

func TestTransitionStatusWriteRetrySucceeds(t *testing.T) {
	svc, repo, history := newTestService()
	ctx := context.Background()

	repo.On("Get", ctx, "wo1").Return(&domain.WorkOrder{
		ID:     "wo1",
		Status: domain.StatusUnderReview,
	}, nil)
	history.On("Append", ctx, "wo1", mock.Anything).Return("ev1", nil)
	repo.On("ApplyStatusChange", ctx, "wo1", domain.StatusCanceled, mock.AnythingOfType("int64")).
		Return(errors.New("flaky")).Once()
	repo.On("ApplyStatusChange", ctx, "wo1", domain.StatusCanceled, mock.AnythingOfType("int64")).
		Return(nil).Once()

	ev, err := svc.Transition(ctx, "wo1", domain.StatusCanceled, "", "")
	require.NoError(t, err)
	assert.Equal(t, "ev1", ev.ID)
	history.AssertNumberOfCalls(t, "Append", 1)
}

func TestCreateAppendsInitialEvent(t *testing.T) {
	svc, repo, history := newTestService()
	ctx := context.Background()

	wo := &domain.WorkOrder{
		ClientID:       "c1",
		ReportedDefect: "pump leak",
		Priority:       domain.PriorityHigh,
		Status:         domain.StatusUnderReview,
	}
	repo.On("Create", ctx, wo).Return("wo1", nil)
	history.On("Append", ctx, "wo1", mock.MatchedBy(func(ev domain.StatusEvent) bool {
		return ev.From == domain.WorkOrderStatus("") && ev.To == domain.StatusUnderReview
	})).Return("ev0", nil)

	id, err := svc.Create(ctx, wo)
	require.NoError(t, err)
	assert.Equal(t, "wo1", id)
	assert.Equal(t, "PENDING", wo.Code)
	history.AssertExpectations(t)
}

func TestCreateDefaultsPriority(t *testing.T) {
	svc, repo, history := newTestService()
	ctx := context.Background()

	wo := &domain.WorkOrder{ClientID: "c1", ReportedDefect: "x", Status: domain.StatusUnderReview}
	repo.On("Create", ctx, wo).Return("wo1", nil)
	history.On("Append", ctx, "wo1", mock.Anything).Return("ev0", nil)

	_, err := svc.Create(ctx, wo)
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityMedium, wo.Priority)
}
